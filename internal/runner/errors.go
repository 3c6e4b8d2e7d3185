package runner

import (
	"errors"
	"fmt"
)

const (
	commandExitTemplateConstant            = "Command failed with exit code: %d"
	fileSystemNotConfiguredMessageConstant = "runner filesystem not configured"
	invocationNotConfiguredMessageConstant = "runner invocation not provided"
	artifactWriteTemplateConstant          = "unable to write %s: %v"
)

var (
	// ErrFileSystemNotConfigured indicates the engine was built without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrInvocationNotConfigured indicates a nil Invocation reached the engine.
	ErrInvocationNotConfigured = errors.New(invocationNotConfiguredMessageConstant)
)

// CommandExitError reports a command that finished with a non-zero exit code.
type CommandExitError struct {
	ExitCode int
}

// Error renders the exit code.
func (exitError CommandExitError) Error() string {
	return fmt.Sprintf(commandExitTemplateConstant, exitError.ExitCode)
}

// ArtifactWriteError reports a log artifact that could not be persisted.
type ArtifactWriteError struct {
	Path  string
	Cause error
}

// Error describes the failed write.
func (writeError ArtifactWriteError) Error() string {
	return fmt.Sprintf(artifactWriteTemplateConstant, writeError.Path, writeError.Cause)
}

// Unwrap exposes the underlying filesystem error.
func (writeError ArtifactWriteError) Unwrap() error {
	return writeError.Cause
}
