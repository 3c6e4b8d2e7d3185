package flags

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/repos/internal/filter"
)

const (
	fleetFlagNameConstant         = "fleet"
	fleetFlagShorthandConstant    = "f"
	fleetFlagUsageConstant        = "Path to the fleet configuration file"
	tagFlagNameConstant           = "tag"
	tagFlagShorthandConstant      = "t"
	tagFlagUsageConstant          = "Select repositories carrying every listed tag (repeatable)"
	excludeTagFlagNameConstant    = "exclude-tag"
	excludeTagFlagShorthand       = "e"
	excludeTagFlagUsageConstant   = "Skip repositories carrying any listed tag (repeatable)"
	repositoriesFlagNameConstant  = "repos"
	repositoriesFlagShorthand     = "r"
	repositoriesFlagUsageConstant = "Comma-separated repository names to select"
	parallelFlagNameConstant      = "parallel"
	parallelFlagShorthandConstant = "p"
	parallelFlagUsageConstant     = "Process repositories concurrently"
)

// SelectionFlags holds the fleet selection flags shared by every fleet command.
type SelectionFlags struct {
	FleetFile    string
	Tags         []string
	ExcludeTags  []string
	Repositories []string
	Parallel     bool
	flagSet      *pflag.FlagSet
}

// BindSelectionFlags registers --fleet, --tag, --exclude-tag, --repos and --parallel on flagSet.
func BindSelectionFlags(flagSet *pflag.FlagSet) *SelectionFlags {
	selection := &SelectionFlags{flagSet: flagSet}
	flagSet.StringVarP(&selection.FleetFile, fleetFlagNameConstant, fleetFlagShorthandConstant, "", fleetFlagUsageConstant)
	flagSet.StringSliceVarP(&selection.Tags, tagFlagNameConstant, tagFlagShorthandConstant, nil, tagFlagUsageConstant)
	flagSet.StringSliceVarP(&selection.ExcludeTags, excludeTagFlagNameConstant, excludeTagFlagShorthand, nil, excludeTagFlagUsageConstant)
	flagSet.StringSliceVarP(&selection.Repositories, repositoriesFlagNameConstant, repositoriesFlagShorthand, nil, repositoriesFlagUsageConstant)
	AddToggleFlag(flagSet, &selection.Parallel, parallelFlagNameConstant, parallelFlagShorthandConstant, false, parallelFlagUsageConstant)
	return selection
}

// Criteria converts the parsed flags into filter criteria. Positional names are merged with
// --repos, and names count as provided whenever either source was given, even when empty.
func (selection *SelectionFlags) Criteria(positionalNames ...string) filter.Criteria {
	criteria := filter.Criteria{
		IncludeTags: selection.Tags,
		ExcludeTags: selection.ExcludeTags,
	}
	repositoriesChanged := selection.flagSet != nil && selection.flagSet.Changed(repositoriesFlagNameConstant)
	if repositoriesChanged || len(positionalNames) > 0 {
		names := append(trimmedNonEmpty(positionalNames), trimmedNonEmpty(selection.Repositories)...)
		criteria = criteria.WithNames(names)
	}
	return criteria
}

// FilterRequested reports whether any tag, exclude-tag or repository filter was passed.
func (selection *SelectionFlags) FilterRequested() bool {
	repositoriesChanged := selection.flagSet != nil && selection.flagSet.Changed(repositoriesFlagNameConstant)
	return len(selection.Tags) > 0 || len(selection.ExcludeTags) > 0 || repositoriesChanged
}

// ResolveFleetFile returns --fleet when set and configuredPath otherwise.
func (selection *SelectionFlags) ResolveFleetFile(configuredPath string) string {
	if trimmed := strings.TrimSpace(selection.FleetFile); len(trimmed) > 0 {
		return trimmed
	}
	return configuredPath
}

// ResolveParallel returns --parallel when it was passed and configuredParallel otherwise.
func (selection *SelectionFlags) ResolveParallel(configuredParallel bool) bool {
	if selection.flagSet != nil && selection.flagSet.Changed(parallelFlagNameConstant) {
		return selection.Parallel
	}
	return configuredParallel
}

func trimmedNonEmpty(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if candidate := strings.TrimSpace(value); len(candidate) > 0 {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}
