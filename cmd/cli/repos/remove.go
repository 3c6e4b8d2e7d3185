package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/repos/dependencies"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	removeUseConstant              = "rm [repository ...]"
	removeShortDescriptionConstant = "Remove local checkouts of the selected repositories"
	removeLongDescriptionConstant  = "rm deletes the target directory of every selected fleet repository. The fleet file is left untouched."
)

// RemoveCommandBuilder assembles the rm command.
type RemoveCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
}

// Build constructs the rm command.
func (builder *RemoveCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   removeUseConstant,
		Short: removeShortDescriptionConstant,
		Long:  removeLongDescriptionConstant,
	}
	selection := flags.BindSelectionFlags(command.Flags())
	command.RunE = func(command *cobra.Command, arguments []string) error {
		configuration := resolveConfiguration(builder.ConfigurationProvider)
		request, requestError := buildRequest(selection, configuration, arguments)
		if requestError != nil {
			return requestError
		}

		logger := resolveLogger(builder.LoggerProvider)
		repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitExecutor, builder.FileSystem, logger)
		if managerError != nil {
			return managerError
		}

		service := orchestration.NewService(orchestration.Dependencies{
			Repositories: repositoryManager,
			Reporter:     commandReporter(command),
			Logger:       logger,
		})
		_, removeError := service.Remove(command.Context(), request)
		return removeError
	}
	return command, nil
}
