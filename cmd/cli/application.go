package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/repos/cmd/cli/repos"
	"github.com/temirov/repos/internal/utils"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	applicationNameConstant                 = "repos"
	applicationShortDescriptionConstant     = "Manage a fleet of Git repositories"
	applicationLongDescriptionConstant      = "repos clones, removes, runs commands in and opens pull requests for the repositories listed in a fleet file, selected by name and tag."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level (debug, info, warn or error)."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	environmentPrefixConstant               = "REPOS"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	commandStartedMessageConstant           = "command started"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	listPluginsFlagNameConstant             = "list-plugins"
	listPluginsFlagUsageConstant            = "List the repos-<name> plugins found on PATH"
	helpCommandNameConstant                 = "help"
	completionCommandNameConstant           = "completion"
	hiddenCommandPrefixConstant             = "__"
	flagPrefixConstant                      = "-"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-tool settings.
type ApplicationToolsConfiguration struct {
	Repos repos.ToolsConfiguration `mapstructure:"repos"`
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	listPlugins           bool
	buildError            error
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	application := &Application{
		configurationLoader: utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
			Name:                  configurationNameConstant,
			Type:                  configurationTypeConstant,
			EnvironmentPrefix:     environmentPrefixConstant,
			SearchPaths:           []string{defaultConfigurationSearchPathConstant},
			EmbeddedConfiguration: EmbeddedDefaultConfiguration(),
		}),
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
	}

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if application.listPlugins {
				repos.ListPlugins(command.OutOrStdout())
				return nil
			}
			return command.Help()
		},
	}
	rootCommand.SetContext(context.Background())
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flags.FormatChoiceUsage(string(utils.LogFormatConsole), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant),
	)
	flags.AddToggleFlag(rootCommand.Flags(), &application.listPlugins, listPluginsFlagNameConstant, "", false, listPluginsFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	configurationProvider := func() repos.ToolsConfiguration {
		return application.configuration.Tools.Repos
	}

	builders := []commandBuilder{
		&repos.CloneCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&repos.RemoveCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&repos.RunCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&repos.PullRequestCommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider, Version: ResolveVersion()},
		&repos.ListCommandBuilder{ConfigurationProvider: configurationProvider},
		&repos.InitCommandBuilder{LoggerProvider: loggerProvider},
	}
	for _, builder := range builders {
		subcommand, buildError := builder.Build()
		if buildError != nil {
			application.buildError = errors.Join(application.buildError, fmt.Errorf(commandBuildErrorTemplateConstant, fmt.Sprintf("%T", builder), buildError))
			continue
		}
		rootCommand.AddCommand(subcommand)
	}
	rootCommand.AddCommand(newVersionCommand())

	application.rootCommand = rootCommand
	return application
}

// SetOutput redirects command output and error text.
func (application *Application) SetOutput(writer io.Writer) {
	application.rootCommand.SetOut(writer)
	application.rootCommand.SetErr(writer)
}

// Configuration returns the configuration resolved by the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// ExecuteWithArguments runs the command tree against arguments and flushes the logger.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if application.buildError != nil {
		return application.buildError
	}
	var executionError error
	if application.isPluginInvocation(arguments) {
		executionError = application.executePlugin(arguments[0], arguments[1:])
	} else {
		application.rootCommand.SetArgs(flags.NormalizeToggleArguments(application.rootCommand, arguments))
		executionError = application.rootCommand.Execute()
	}
	if syncError := application.flushLogger(); syncError != nil {
		return errors.Join(executionError, fmt.Errorf(loggerSyncErrorTemplateConstant, syncError))
	}
	return executionError
}

// Execute runs the command tree against the process arguments.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

// isPluginInvocation reports whether the first argument names no built-in command and should run repos-<name>.
func (application *Application) isPluginInvocation(arguments []string) bool {
	if len(arguments) == 0 {
		return false
	}
	candidate := arguments[0]
	if len(candidate) == 0 || strings.HasPrefix(candidate, flagPrefixConstant) || strings.HasPrefix(candidate, hiddenCommandPrefixConstant) {
		return false
	}
	if candidate == helpCommandNameConstant || candidate == completionCommandNameConstant {
		return false
	}
	for _, subcommand := range application.rootCommand.Commands() {
		if subcommand.Name() == candidate || subcommand.HasAlias(candidate) {
			return false
		}
	}
	return true
}

func (application *Application) executePlugin(pluginName string, arguments []string) error {
	if configurationError := application.initializeConfiguration(application.rootCommand); configurationError != nil {
		return configurationError
	}
	runner := &repos.PluginRunner{
		LoggerProvider:        func() *zap.Logger { return application.logger },
		ConfigurationProvider: func() repos.ToolsConfiguration { return application.configuration.Tools.Repos },
		Input:                 application.rootCommand.InOrStdin(),
		Output:                application.rootCommand.OutOrStdout(),
		ErrorOutput:           application.rootCommand.ErrOrStderr(),
	}
	return runner.Run(application.rootContext(), pluginName, arguments)
}

func (application *Application) rootContext() context.Context {
	if executionContext := application.rootCommand.Context(); executionContext != nil {
		return executionContext
	}
	return context.Background()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.Load(application.configurationFilePath, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logLevel, levelError := utils.ParseLogLevel(application.configuration.Common.LogLevel)
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	logFormat, formatError := utils.ParseLogFormat(application.configuration.Common.LogFormat)
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}
	logger, loggerError := application.loggerFactory.CreateLogger(logLevel, logFormat)
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(logLevel)),
		zap.String(configurationLogFormatFieldConstant, string(logFormat)),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)
	application.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, command.Flags().NArg()),
	)
	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	flagSetsToInspect := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}
	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}
