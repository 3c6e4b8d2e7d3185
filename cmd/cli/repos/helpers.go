package repos

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
	pathutils "github.com/temirov/repos/internal/utils/path"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider yields the tools.repos settings loaded at startup.
type ConfigurationProvider func() ToolsConfiguration

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveConfiguration(provider ConfigurationProvider) ToolsConfiguration {
	if provider == nil {
		return DefaultToolsConfiguration().sanitize()
	}
	return provider().sanitize()
}

func commandReporter(command *cobra.Command) shared.Reporter {
	return shared.NewWriterReporter(command.OutOrStdout())
}

// buildRequest validates the selection flags, loads the fleet file and assembles the orchestration request.
// Configured exclude tags apply only when no --exclude-tag was passed.
func buildRequest(selection *flags.SelectionFlags, configuration ToolsConfiguration, positionalNames []string) (orchestration.Request, error) {
	if validationError := validateTagFilters(selection.Tags); validationError != nil {
		return orchestration.Request{}, validationError
	}
	if validationError := validateTagFilters(selection.ExcludeTags); validationError != nil {
		return orchestration.Request{}, validationError
	}
	if validationError := validateRepositoryNames(append(append([]string{}, positionalNames...), selection.Repositories...)); validationError != nil {
		return orchestration.Request{}, validationError
	}

	fleetFilePath := repositoryHomeDirectoryExpander.Expand(selection.ResolveFleetFile(configuration.FleetFile))
	fleetConfiguration, loadError := fleet.LoadConfiguration(fleetFilePath)
	if loadError != nil {
		return orchestration.Request{}, loadError
	}

	criteria := selection.Criteria(positionalNames...)
	if len(criteria.ExcludeTags) == 0 {
		criteria.ExcludeTags = configuration.ExcludeTags
	}

	return orchestration.Request{
		Configuration: fleetConfiguration,
		Criteria:      criteria,
		Parallel:      selection.ResolveParallel(configuration.Parallel),
	}, nil
}
