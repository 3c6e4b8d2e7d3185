package runner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/shared"
)

const (
	// DefaultOutputDirectoryConstant is used when no output directory is configured.
	DefaultOutputDirectoryConstant = "output"
	// StandardOutputLogNameConstant names the captured stdout artifact.
	StandardOutputLogNameConstant = "stdout.log"
	// StandardErrorLogNameConstant names the captured stderr artifact.
	StandardErrorLogNameConstant = "stderr.log"
	// MetadataFileNameConstant names the run metadata artifact.
	MetadataFileNameConstant = "metadata.json"

	runsDirectoryNameConstant    = "runs"
	runTimestampLayoutConstant   = "20060102-150405"
	runDirectoryTemplateConstant = "%s_%s"
	streamedLineTemplateConstant = "[%s] %s"
	metadataIndentConstant       = "  "
	logMessageRunningConstant    = "running command"
	logMessageFinishedConstant   = "command finished"
	logFieldRepositoryConstant   = "repository"
	logFieldCommandConstant      = "command"
	logFieldDirectoryConstant    = "directory"
	logFieldExitCodeConstant     = "exit_code"
	logFieldDescriptionConstant  = "exit_code_description"
)

const (
	artifactDirectoryPermissionsConstant fs.FileMode = 0o755
	artifactFilePermissionsConstant      fs.FileMode = 0o644
)

// Result is the captured outcome of one execution.
type Result struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// ExitCodeDescription classifies the exit code.
func (result Result) ExitCodeDescription() string {
	return ClassifyExitCode(result.ExitCode)
}

// RunnerFactory builds the process runner for one execution from a pair of line handlers.
type RunnerFactory func(standardOutputHandler execshell.LineHandler, standardErrorHandler execshell.LineHandler) execshell.CommandRunner

// Engine executes invocations inside repository checkouts.
type Engine struct {
	fileSystem    shared.FileSystem
	clock         shared.Clock
	logger        *zap.Logger
	output        shared.Reporter
	runnerFactory RunnerFactory
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithOutputReporter streams process output of Engine.Run through reporter.
func WithOutputReporter(reporter shared.Reporter) EngineOption {
	return func(engine *Engine) {
		engine.output = reporter
	}
}

// WithRunnerFactory replaces the process runner, mainly for tests.
func WithRunnerFactory(factory RunnerFactory) EngineOption {
	return func(engine *Engine) {
		if factory != nil {
			engine.runnerFactory = factory
		}
	}
}

// NewEngine validates collaborators and constructs an Engine.
func NewEngine(fileSystem shared.FileSystem, clock shared.Clock, logger *zap.Logger, options ...EngineOption) (*Engine, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		fileSystem:    fileSystem,
		clock:         clock,
		logger:        logger,
		runnerFactory: streamingRunnerFactory,
	}
	for _, option := range options {
		option(engine)
	}
	return engine, nil
}

func streamingRunnerFactory(standardOutputHandler execshell.LineHandler, standardErrorHandler execshell.LineHandler) execshell.CommandRunner {
	return execshell.NewStreamingCommandRunner(standardOutputHandler, standardErrorHandler)
}

// RunRootPath returns <output>/runs/<YYYYMMDD-HHMMSS>_<sanitized label> for the moment now.
func RunRootPath(outputDirectory string, label string, now time.Time) string {
	baseDirectory := strings.TrimSpace(outputDirectory)
	if len(baseDirectory) == 0 {
		baseDirectory = DefaultOutputDirectoryConstant
	}
	directoryName := fmt.Sprintf(runDirectoryTemplateConstant, now.Format(runTimestampLayoutConstant), SanitizeRunLabel(label))
	return filepath.Join(baseDirectory, runsDirectoryNameConstant, directoryName)
}

// PrepareRunRoot creates the run directory for invocation and returns its path.
func (engine *Engine) PrepareRunRoot(outputDirectory string, invocation Invocation) (string, error) {
	if invocation == nil {
		return "", ErrInvocationNotConfigured
	}
	runRoot := RunRootPath(outputDirectory, invocation.Label(), engine.clock.Now())
	if directoryError := engine.fileSystem.MkdirAll(runRoot, artifactDirectoryPermissionsConstant); directoryError != nil {
		return "", ArtifactWriteError{Path: runRoot, Cause: directoryError}
	}
	return runRoot, nil
}

// Capture runs invocation in the record's checkout and returns the captured output
// regardless of the exit code. When logRoot is set the artifacts are written to
// <logRoot>/<repository name>.
func (engine *Engine) Capture(executionContext context.Context, record fleet.RepositoryRecord, invocation Invocation, logRoot string) (Result, error) {
	result, metadata, executionError := engine.execute(executionContext, record, invocation, nil, nil)
	if executionError != nil {
		return result, executionError
	}
	if len(strings.TrimSpace(logRoot)) == 0 {
		return result, nil
	}
	return result, engine.persistArtifacts(filepath.Join(logRoot, record.Name), result, metadata)
}

// Run executes invocation and streams its output through the configured reporter.
// A non-zero exit becomes a CommandExitError.
func (engine *Engine) Run(executionContext context.Context, record fleet.RepositoryRecord, invocation Invocation) error {
	lineHandler := engine.streamTo(record)
	result, _, executionError := engine.execute(executionContext, record, invocation, lineHandler, lineHandler)
	if executionError != nil {
		return executionError
	}
	if result.ExitCode != 0 {
		return CommandExitError{ExitCode: result.ExitCode}
	}
	return nil
}

func (engine *Engine) streamTo(record fleet.RepositoryRecord) execshell.LineHandler {
	if engine.output == nil {
		return nil
	}
	return func(line string) {
		engine.output.Printf(streamedLineTemplateConstant, record.Name, line)
	}
}

func (engine *Engine) execute(executionContext context.Context, record fleet.RepositoryRecord, invocation Invocation, standardOutputHandler execshell.LineHandler, standardErrorHandler execshell.LineHandler) (Result, runMetadata, error) {
	repositoryDirectory := record.TargetDirectory()
	if _, statError := engine.fileSystem.Stat(repositoryDirectory); statError != nil {
		return Result{}, runMetadata{}, shared.RepositoryDirectoryMissingError{Directory: repositoryDirectory}
	}

	metadata := runMetadata{Repository: record.Name}
	var commandLine string
	switch typedInvocation := invocation.(type) {
	case CommandInvocation:
		commandLine = typedInvocation.CommandLine
		metadata.Command = typedInvocation.CommandLine
	case RecipeInvocation:
		scriptPath, materializeError := MaterializeRecipe(engine.fileSystem, repositoryDirectory, typedInvocation.Recipe)
		if materializeError != nil {
			return Result{}, runMetadata{}, materializeError
		}
		defer func() {
			_ = engine.fileSystem.Remove(scriptPath)
		}()
		commandLine = scriptCommandLine(repositoryDirectory, scriptPath)
		metadata.Recipe = typedInvocation.Recipe.Name
		metadata.RecipeSteps = append([]string{}, typedInvocation.Recipe.Steps...)
	default:
		return Result{}, runMetadata{}, ErrInvocationNotConfigured
	}

	engine.logger.Info(
		logMessageRunningConstant,
		zap.String(logFieldRepositoryConstant, record.Name),
		zap.String(logFieldCommandConstant, commandLine),
		zap.String(logFieldDirectoryConstant, repositoryDirectory),
	)

	commandRunner := engine.runnerFactory(standardOutputHandler, standardErrorHandler)
	executionResult, runError := commandRunner.Run(executionContext, execshell.NewShellCommand(commandLine, repositoryDirectory))
	result := Result{
		StandardOutput: executionResult.StandardOutput,
		StandardError:  executionResult.StandardError,
		ExitCode:       executionResult.ExitCode,
	}
	if runError != nil {
		return result, runMetadata{}, runError
	}

	metadata.Timestamp = engine.clock.Now().Format(time.RFC3339)
	metadata.ExitCode = result.ExitCode
	metadata.ExitCodeDescription = result.ExitCodeDescription()

	engine.logger.Debug(
		logMessageFinishedConstant,
		zap.String(logFieldRepositoryConstant, record.Name),
		zap.Int(logFieldExitCodeConstant, result.ExitCode),
		zap.String(logFieldDescriptionConstant, metadata.ExitCodeDescription),
	)
	return result, metadata, nil
}
