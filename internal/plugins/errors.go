package plugins

import (
	"errors"
	"fmt"
)

const (
	launchErrorTemplateConstant          = "Plugin '%s' not found or failed to execute: %v"
	exitErrorTemplateConstant            = "Plugin '%s' exited with status: %d"
	executorNotConfiguredMessageConstant = "plugin command executor not configured"
	pluginNameRequiredMessageConstant    = "External command provided but no arguments given"
)

var (
	// ErrExecutorNotConfigured indicates a Dispatcher was built without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrPluginNameRequired indicates dispatch was requested without a plugin name.
	ErrPluginNameRequired = errors.New(pluginNameRequiredMessageConstant)
)

// LaunchError reports a plugin executable that could not be found or started.
type LaunchError struct {
	Executable string
	Cause      error
}

// Error describes the launch failure.
func (launchError LaunchError) Error() string {
	return fmt.Sprintf(launchErrorTemplateConstant, launchError.Executable, launchError.Cause)
}

// Unwrap exposes the lookup or start failure.
func (launchError LaunchError) Unwrap() error {
	return launchError.Cause
}

// ExitError reports a plugin that finished with a non-zero exit code.
type ExitError struct {
	Executable string
	ExitCode   int
}

// Error renders the exit status.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Executable, exitError.ExitCode)
}
