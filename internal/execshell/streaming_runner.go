package execshell

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const (
	lineTerminatorConstant    = "\n"
	carriageReturnConstant    = "\r"
	lineDelimiterByteConstant = '\n'
	missingExitCodeConstant   = -1
)

// LineHandler receives one line of process output including its trailing newline.
type LineHandler func(line string)

// StreamingCommandRunner executes commands and drains both output streams line by line while the process runs.
type StreamingCommandRunner struct {
	standardOutputHandler LineHandler
	standardErrorHandler  LineHandler
}

// NewStreamingCommandRunner constructs a runner that forwards each drained line to the handlers. Nil handlers are ignored.
func NewStreamingCommandRunner(standardOutputHandler LineHandler, standardErrorHandler LineHandler) *StreamingCommandRunner {
	return &StreamingCommandRunner{
		standardOutputHandler: standardOutputHandler,
		standardErrorHandler:  standardErrorHandler,
	}
}

// Run starts the command, drains stdout and stderr concurrently and waits for both drains before reaping the process.
func (runner *StreamingCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	executable.Env = mergeEnvironment(command.Details.EnvironmentVariables)
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = strings.NewReader(string(command.Details.StandardInput))
	}

	standardOutputPipe, standardOutputError := executable.StdoutPipe()
	if standardOutputError != nil {
		return ExecutionResult{}, standardOutputError
	}
	standardErrorPipe, standardErrorError := executable.StderrPipe()
	if standardErrorError != nil {
		return ExecutionResult{}, standardErrorError
	}

	if startError := executable.Start(); startError != nil {
		return ExecutionResult{}, startError
	}

	var standardOutputBuilder strings.Builder
	var standardErrorBuilder strings.Builder

	var drainGroup sync.WaitGroup
	drainGroup.Add(2)
	go func() {
		defer drainGroup.Done()
		drainLines(standardOutputPipe, &standardOutputBuilder, runner.standardOutputHandler)
	}()
	go func() {
		defer drainGroup.Done()
		drainLines(standardErrorPipe, &standardErrorBuilder, runner.standardErrorHandler)
	}()
	drainGroup.Wait()

	waitError := executable.Wait()
	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuilder.String(),
		StandardError:  standardErrorBuilder.String(),
		ExitCode:       0,
	}
	if waitError == nil {
		return executionResult, nil
	}

	exitError := &exec.ExitError{}
	if errors.As(waitError, &exitError) {
		executionResult.ExitCode = exitError.ExitCode()
		return executionResult, nil
	}

	executionResult.ExitCode = missingExitCodeConstant
	return executionResult, waitError
}

// drainLines reads until EOF. Every line, including a final unterminated one, is normalised to end with a single newline.
func drainLines(reader io.Reader, collector *strings.Builder, handler LineHandler) {
	bufferedReader := bufio.NewReader(reader)
	for {
		rawLine, readError := bufferedReader.ReadString(lineDelimiterByteConstant)
		if len(rawLine) > 0 {
			line := strings.TrimSuffix(strings.TrimSuffix(rawLine, lineTerminatorConstant), carriageReturnConstant) + lineTerminatorConstant
			collector.WriteString(line)
			if handler != nil {
				handler(line)
			}
		}
		if readError != nil {
			return
		}
	}
}
