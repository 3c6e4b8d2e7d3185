package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// AttachedCommandRunner executes commands with the caller's standard streams attached, so
// interactive programs can prompt and print directly. Output is not captured.
type AttachedCommandRunner struct {
	standardInput  io.Reader
	standardOutput io.Writer
	standardError  io.Writer
}

// NewAttachedCommandRunner constructs a runner bound to the provided streams. Nil streams are left unattached.
func NewAttachedCommandRunner(standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) *AttachedCommandRunner {
	return &AttachedCommandRunner{
		standardInput:  standardInput,
		standardOutput: standardOutput,
		standardError:  standardError,
	}
}

// Run executes the command and reports a non-zero exit through ExecutionResult.ExitCode.
func (runner *AttachedCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(command.Details.EnvironmentVariables)
	executable.Stdin = runner.standardInput
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	executable.Stdout = runner.standardOutput
	executable.Stderr = runner.standardError

	runError := executable.Run()
	if runError == nil {
		return ExecutionResult{}, nil
	}

	exitError := &exec.ExitError{}
	if errors.As(runError, &exitError) {
		return ExecutionResult{ExitCode: exitError.ExitCode()}, nil
	}
	return ExecutionResult{}, runError
}
