package repos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/plugins"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	pluginFlagSetNameConstant             = "plugin"
	debugFlagNameConstant                 = "debug"
	debugFlagShorthandConstant            = "d"
	debugFlagUsageConstant                = "Ask the plugin for debug output"
	argumentTerminatorConstant            = "--"
	longFlagPrefixConstant                = "--"
	shortFlagPrefixConstant               = "-"
	flagValueSeparatorConstant            = "="
	pluginPathEnvironmentVariable         = "PATH"
	noPluginsFoundMessageConstant         = "No external plugins found.\n"
	pluginCreationHintMessageConstant     = "To create a plugin, make an executable named 'repos-<name>' available in your PATH.\n"
	availablePluginsMessageConstant       = "Available external plugins:\n"
	pluginListEntryTemplateConstant       = "  %s\n"
	fleetFileInspectionTemplateConstant   = "unable to inspect fleet file %s: %w"
	fleetFileAbsolutePathTemplateConstant = "unable to resolve fleet file %s: %w"
)

// PluginRunner launches repos-<name> executables for subcommands the CLI does not define.
// Selection flags are consumed to filter the fleet and every other argument is forwarded.
type PluginRunner struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              plugins.CommandExecutor
	Input                 io.Reader
	Output                io.Writer
	ErrorOutput           io.Writer
}

// Run dispatches pluginName with arguments.
func (runner *PluginRunner) Run(executionContext context.Context, pluginName string, arguments []string) error {
	selectionArguments, pluginArguments := splitPluginArguments(arguments)

	flagSet := pflag.NewFlagSet(pluginName, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	selection := flags.BindSelectionFlags(flagSet)
	var debug bool
	flags.AddToggleFlag(flagSet, &debug, debugFlagNameConstant, debugFlagShorthandConstant, false, debugFlagUsageConstant)
	if parseError := flagSet.Parse(selectionArguments); parseError != nil {
		return parseError
	}

	pluginContext, contextError := runner.buildContext(selection)
	if contextError != nil {
		return contextError
	}
	pluginContext.Arguments = pluginArguments
	pluginContext.Debug = debug

	logger := resolveLogger(runner.LoggerProvider)
	executor := runner.Executor
	if executor == nil {
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewAttachedCommandRunner(runner.Input, runner.Output, runner.ErrorOutput))
		if executorError != nil {
			return executorError
		}
		executor = shellExecutor
	}
	dispatcher, dispatcherError := plugins.NewDispatcher(executor, logger)
	if dispatcherError != nil {
		return dispatcherError
	}
	return dispatcher.Dispatch(executionContext, pluginName, pluginContext)
}

// buildContext loads the fleet only when a filter was passed or the fleet file exists, so plugins
// also run outside a fleet directory.
func (runner *PluginRunner) buildContext(selection *flags.SelectionFlags) (plugins.Context, error) {
	configuration := resolveConfiguration(runner.ConfigurationProvider)
	fleetFilePath := repositoryHomeDirectoryExpander.Expand(selection.ResolveFleetFile(configuration.FleetFile))

	filterRequested := selection.FilterRequested()
	_, statError := os.Stat(fleetFilePath)
	switch {
	case statError == nil:
	case errors.Is(statError, fs.ErrNotExist) && !filterRequested:
		return plugins.Context{}, nil
	case !errors.Is(statError, fs.ErrNotExist):
		return plugins.Context{}, fmt.Errorf(fleetFileInspectionTemplateConstant, fleetFilePath, statError)
	}

	request, requestError := buildRequest(selection, configuration, nil)
	if requestError != nil {
		return plugins.Context{}, requestError
	}
	absoluteFleetFile, absoluteError := filepath.Abs(fleetFilePath)
	if absoluteError != nil {
		return plugins.Context{}, fmt.Errorf(fleetFileAbsolutePathTemplateConstant, fleetFilePath, absoluteError)
	}
	return plugins.Context{FleetFile: absoluteFleetFile, Repositories: orchestration.Select(request)}, nil
}

// ListPlugins prints the plugins found on PATH, or a hint on how to add one.
func ListPlugins(writer io.Writer) {
	pluginNames := plugins.Discover(os.Getenv(pluginPathEnvironmentVariable))
	reporter := shared.NewWriterReporter(writer)
	if len(pluginNames) == 0 {
		reporter.Printf(noPluginsFoundMessageConstant)
		reporter.Printf(pluginCreationHintMessageConstant)
		return
	}
	reporter.Printf(availablePluginsMessageConstant)
	for _, pluginName := range pluginNames {
		reporter.Printf(pluginListEntryTemplateConstant, pluginName)
	}
}

// splitPluginArguments separates the selection and debug flags, with their values, from the
// arguments forwarded to the plugin. Everything after "--" is forwarded untouched.
func splitPluginArguments(arguments []string) ([]string, []string) {
	referenceFlags := pflag.NewFlagSet(pluginFlagSetNameConstant, pflag.ContinueOnError)
	flags.BindSelectionFlags(referenceFlags)
	var debug bool
	flags.AddToggleFlag(referenceFlags, &debug, debugFlagNameConstant, debugFlagShorthandConstant, false, debugFlagUsageConstant)

	selectionArguments := []string{}
	pluginArguments := []string{}
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminatorConstant {
			pluginArguments = append(pluginArguments, arguments[index+1:]...)
			break
		}
		flag, valueAttached := lookupFlag(referenceFlags, argument)
		if flag == nil {
			pluginArguments = append(pluginArguments, argument)
			continue
		}
		selectionArguments = append(selectionArguments, argument)
		if !valueAttached && len(flag.NoOptDefVal) == 0 && index+1 < len(arguments) {
			index++
			selectionArguments = append(selectionArguments, arguments[index])
		}
	}
	return selectionArguments, pluginArguments
}

// lookupFlag resolves --name, --name=value and -n forms against flagSet.
func lookupFlag(flagSet *pflag.FlagSet, argument string) (*pflag.Flag, bool) {
	switch {
	case strings.HasPrefix(argument, longFlagPrefixConstant):
		name, _, hasValue := strings.Cut(strings.TrimPrefix(argument, longFlagPrefixConstant), flagValueSeparatorConstant)
		return flagSet.Lookup(name), hasValue
	case strings.HasPrefix(argument, shortFlagPrefixConstant) && len(argument) == 2:
		return flagSet.ShorthandLookup(argument[1:]), false
	default:
		return nil, false
	}
}
