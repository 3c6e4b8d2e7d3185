package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/repos/dependencies"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	cloneUseConstant              = "clone [repository ...]"
	cloneShortDescriptionConstant = "Clone the selected repositories"
	cloneLongDescriptionConstant  = "clone checks out every selected fleet repository into its target directory, skipping checkouts that already exist."
)

// CloneCommandBuilder assembles the clone command.
type CloneCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
}

// Build constructs the clone command.
func (builder *CloneCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   cloneUseConstant,
		Short: cloneShortDescriptionConstant,
		Long:  cloneLongDescriptionConstant,
	}
	selection := flags.BindSelectionFlags(command.Flags())
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, selection, arguments)
	}
	return command, nil
}

func (builder *CloneCommandBuilder) run(command *cobra.Command, selection *flags.SelectionFlags, arguments []string) error {
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
	_, cloneError := service.Clone(command.Context(), request)
	return cloneError
}
