package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/repos/dependencies"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/runner"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	runUseConstant              = "run [command] [repository ...]"
	runShortDescriptionConstant = "Run a shell command or recipe in the selected repositories"
	runLongDescriptionConstant  = "run executes a shell command line, or a recipe from the fleet file, inside every selected checkout. Output is saved under <output>/runs/<timestamp>_<label>/<repository>/ unless --no-save is set."
	recipeFlagNameConstant      = "recipe"
	recipeFlagUsageConstant     = "Name of a recipe defined in the fleet file"
	outputFlagNameConstant      = "output"
	outputFlagShorthandConstant = "o"
	outputFlagUsageConstant     = "Directory that receives run logs"
	noSaveFlagNameConstant      = "no-save"
	noSaveFlagUsageConstant     = "Stream output to the terminal instead of saving logs"
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            shared.FileSystem
	Clock                 shared.Clock
}

type runFlags struct {
	recipeName      string
	outputDirectory string
	noSave          bool
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runUseConstant,
		Short: runShortDescriptionConstant,
		Long:  runLongDescriptionConstant,
	}
	selection := flags.BindSelectionFlags(command.Flags())
	options := &runFlags{}
	command.Flags().StringVar(&options.recipeName, recipeFlagNameConstant, "", recipeFlagUsageConstant)
	command.Flags().StringVarP(&options.outputDirectory, outputFlagNameConstant, outputFlagShorthandConstant, "", outputFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &options.noSave, noSaveFlagNameConstant, "", false, noSaveFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, selection, options, arguments)
	}
	return command, nil
}

func (builder *RunCommandBuilder) run(command *cobra.Command, selection *flags.SelectionFlags, options *runFlags, arguments []string) error {
	// The first positional argument is always the command line; recipes select repositories through --repos.
	recipeProvided := command.Flags().Changed(recipeFlagNameConstant)
	commandLine := ""
	repositoryNames := arguments
	if len(arguments) > 0 {
		commandLine = arguments[0]
		repositoryNames = arguments[1:]
	}

	if validationError := validateRunArguments(commandLine, options.recipeName, recipeProvided); validationError != nil {
		return validationError
	}
	outputProvided := command.Flags().Changed(outputFlagNameConstant)
	if validationError := validateOutputDirectory(options.outputDirectory, outputProvided); validationError != nil {
		return validationError
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	request, requestError := buildRequest(selection, configuration, repositoryNames)
	if requestError != nil {
		return requestError
	}

	outputDirectory := configuration.OutputDirectory
	if outputProvided {
		outputDirectory = repositoryHomeDirectoryExpander.Expand(options.outputDirectory)
	}

	logger := resolveLogger(builder.LoggerProvider)
	reporter := commandReporter(command)
	engine, engineError := runner.NewEngine(
		dependencies.ResolveFileSystem(builder.FileSystem),
		builder.Clock,
		logger,
		runner.WithOutputReporter(reporter),
	)
	if engineError != nil {
		return engineError
	}

	service := orchestration.NewService(orchestration.Dependencies{
		Engine:   engine,
		Reporter: reporter,
		Logger:   logger,
	})
	_, runError := service.Run(command.Context(), request, orchestration.RunOptions{
		CommandLine:     commandLine,
		RecipeName:      options.recipeName,
		OutputDirectory: outputDirectory,
		NoSave:          options.noSave,
	})
	return runError
}
