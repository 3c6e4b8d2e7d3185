package repos

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/filter"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	listUseConstant              = "ls [repository ...]"
	listShortDescriptionConstant = "List the selected repositories"
	listLongDescriptionConstant  = "ls prints the fleet repositories matching the selection as a table or, with --json, as a JSON array. With --tags it prints the distinct tags of the selection instead."
	jsonFlagNameConstant         = "json"
	jsonFlagUsageConstant        = "Print the selection as JSON"
	listEmptyTemplateConstant    = "No repositories found with %s\n"
	tagsFlagNameConstant         = "tags"
	tagsFlagUsageConstant        = "Print the distinct tags of the selection"
	tagsEmptyTemplateConstant    = "No tags found with %s\n"
	tagLineTemplateConstant      = "%s\n"
	tagsJSONIndentConstant       = "  "
)

// ListCommandBuilder assembles the ls command.
type ListCommandBuilder struct {
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the ls command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listUseConstant,
		Short: listShortDescriptionConstant,
		Long:  listLongDescriptionConstant,
	}
	selection := flags.BindSelectionFlags(command.Flags())
	var jsonOutput bool
	var tagsOutput bool
	flags.AddToggleFlag(command.Flags(), &jsonOutput, jsonFlagNameConstant, "", false, jsonFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &tagsOutput, tagsFlagNameConstant, "", false, tagsFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		request, requestError := buildRequest(selection, resolveConfiguration(builder.ConfigurationProvider), arguments)
		if requestError != nil {
			return requestError
		}

		records := orchestration.Select(request)
		if tagsOutput {
			return renderTags(command, fleet.Configuration{Repositories: records}.AllTags(), jsonOutput, request.Criteria)
		}
		if jsonOutput {
			return orchestration.RenderInventoryJSON(command.OutOrStdout(), records)
		}
		if len(records) == 0 {
			commandReporter(command).Printf(listEmptyTemplateConstant, filter.DescribeCriteria(request.Criteria))
			return nil
		}
		orchestration.RenderInventoryTable(command.OutOrStdout(), records)
		return nil
	}
	return command, nil
}

func renderTags(command *cobra.Command, tags []string, jsonOutput bool, criteria filter.Criteria) error {
	if jsonOutput {
		encoder := json.NewEncoder(command.OutOrStdout())
		encoder.SetIndent("", tagsJSONIndentConstant)
		return encoder.Encode(tags)
	}
	if len(tags) == 0 {
		commandReporter(command).Printf(tagsEmptyTemplateConstant, filter.DescribeCriteria(criteria))
		return nil
	}
	for _, tag := range tags {
		if _, writeError := fmt.Fprintf(command.OutOrStdout(), tagLineTemplateConstant, tag); writeError != nil {
			return writeError
		}
	}
	return nil
}
