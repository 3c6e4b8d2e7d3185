package plugins

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/fleet"
)

const (
	// ConfigFileEnvironmentVariableConstant carries the absolute fleet file path.
	ConfigFileEnvironmentVariableConstant = "REPOS_CONFIG_FILE"
	// RepositoriesEnvironmentVariableConstant carries the comma-separated names of the selected repositories.
	RepositoriesEnvironmentVariableConstant = "REPOS_REPOSITORIES"
	// DebugEnvironmentVariableConstant is set to 1 when --debug was passed.
	DebugEnvironmentVariableConstant = "REPOS_DEBUG"

	repositoryNameSeparatorConstant = ","
	debugEnabledValueConstant       = "1"
	logFieldPluginConstant          = "plugin"
	logFieldExecutableConstant      = "executable"
	logFieldRepositoryCountConstant = "repository_count"
	pluginStartedMessageConstant    = "plugin started"
)

// CommandExecutor runs a resolved plugin executable.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Context is the fleet state handed to a plugin.
type Context struct {
	FleetFile    string
	Repositories []fleet.RepositoryRecord
	Arguments    []string
	Debug        bool
}

// Environment renders the context as REPOS_* variables. An empty fleet file is omitted.
func (pluginContext Context) Environment() map[string]string {
	repositoryNames := make([]string, 0, len(pluginContext.Repositories))
	for _, record := range pluginContext.Repositories {
		repositoryNames = append(repositoryNames, record.Name)
	}

	environment := map[string]string{
		RepositoriesEnvironmentVariableConstant: strings.Join(repositoryNames, repositoryNameSeparatorConstant),
	}
	if len(pluginContext.FleetFile) > 0 {
		environment[ConfigFileEnvironmentVariableConstant] = pluginContext.FleetFile
	}
	if pluginContext.Debug {
		environment[DebugEnvironmentVariableConstant] = debugEnabledValueConstant
	}
	return environment
}

// Dispatcher launches plugin executables found on PATH.
type Dispatcher struct {
	executor CommandExecutor
	lookPath func(string) (string, error)
	logger   *zap.Logger
}

// NewDispatcher validates collaborators and constructs a Dispatcher.
func NewDispatcher(executor CommandExecutor, logger *zap.Logger) (*Dispatcher, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{executor: executor, lookPath: exec.LookPath, logger: logger}, nil
}

// Dispatch runs repos-<pluginName> with the context arguments and environment.
func (dispatcher *Dispatcher) Dispatch(executionContext context.Context, pluginName string, pluginContext Context) error {
	if len(strings.TrimSpace(pluginName)) == 0 {
		return ErrPluginNameRequired
	}

	executableName := ExecutableName(pluginName)
	executablePath, lookupError := dispatcher.lookPath(executableName)
	if lookupError != nil {
		return LaunchError{Executable: executableName, Cause: lookupError}
	}

	dispatcher.logger.Debug(
		pluginStartedMessageConstant,
		zap.String(logFieldPluginConstant, pluginName),
		zap.String(logFieldExecutableConstant, executablePath),
		zap.Int(logFieldRepositoryCountConstant, len(pluginContext.Repositories)),
	)

	_, executionError := dispatcher.executor.Execute(executionContext, execshell.ShellCommand{
		Name: execshell.CommandName(executablePath),
		Details: execshell.CommandDetails{
			Arguments:            pluginContext.Arguments,
			EnvironmentVariables: pluginContext.Environment(),
		},
	})
	if executionError == nil {
		return nil
	}

	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return ExitError{Executable: executableName, ExitCode: failedError.Result.ExitCode}
	}
	return LaunchError{Executable: executableName, Cause: executionError}
}
