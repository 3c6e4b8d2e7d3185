package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/filesystem"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/runner"
)

const testRepositoryNameConstant = "api"

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

func testInstant() time.Time {
	return time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)
}

func requireShell(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh not available")
	}
}

func newTestEngine(testInstance *testing.T, options ...runner.EngineOption) *runner.Engine {
	testInstance.Helper()
	engine, creationError := runner.NewEngine(filesystem.OSFileSystem{}, fixedClock{instant: testInstant()}, nil, options...)
	require.NoError(testInstance, creationError)
	return engine
}

func newRepositoryRecord(testInstance *testing.T) fleet.RepositoryRecord {
	testInstance.Helper()
	baseDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(baseDirectory, testRepositoryNameConstant), 0o755))
	record := fleet.NewRepositoryRecord(testRepositoryNameConstant, "git@github.com:acme/api.git")
	record.SetBaseDirectory(baseDirectory)
	return record
}

func readMetadata(testInstance *testing.T, path string) map[string]any {
	testInstance.Helper()
	content, readError := os.ReadFile(path)
	require.NoError(testInstance, readError)
	decoded := map[string]any{}
	require.NoError(testInstance, json.Unmarshal(content, &decoded))
	return decoded
}

func TestNewEngineRequiresFileSystem(testInstance *testing.T) {
	_, creationError := runner.NewEngine(nil, nil, nil)
	require.ErrorIs(testInstance, creationError, runner.ErrFileSystemNotConfigured)
}

func TestRunRootPath(testInstance *testing.T) {
	require.Equal(testInstance, filepath.Join("output", "runs", "20240305-140709_npm_test"), runner.RunRootPath("", "npm test", testInstant()))
	require.Equal(testInstance, filepath.Join("logs", "runs", "20240305-140709_update-deps"), runner.RunRootPath("logs", "update-deps", testInstant()))
}

func TestCaptureWritesArtifacts(testInstance *testing.T) {
	requireShell(testInstance)
	engine := newTestEngine(testInstance)
	record := newRepositoryRecord(testInstance)
	logRoot := testInstance.TempDir()

	result, captureError := engine.Capture(context.Background(), record, runner.CommandInvocation{CommandLine: "echo line-1; echo line-2 1>&2"}, logRoot)

	require.NoError(testInstance, captureError)
	require.Equal(testInstance, "line-1\n", result.StandardOutput)
	require.Equal(testInstance, "line-2\n", result.StandardError)

	repositoryLogDirectory := filepath.Join(logRoot, testRepositoryNameConstant)
	standardOutput, readError := os.ReadFile(filepath.Join(repositoryLogDirectory, runner.StandardOutputLogNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "line-1\n", string(standardOutput))
	standardError, readError := os.ReadFile(filepath.Join(repositoryLogDirectory, runner.StandardErrorLogNameConstant))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "line-2\n", string(standardError))

	metadata := readMetadata(testInstance, filepath.Join(repositoryLogDirectory, runner.MetadataFileNameConstant))
	require.Equal(testInstance, float64(0), metadata["exit_code"])
	require.Equal(testInstance, "success", metadata["exit_code_description"])
	require.Equal(testInstance, "echo line-1; echo line-2 1>&2", metadata["command"])
	require.Equal(testInstance, testRepositoryNameConstant, metadata["repository"])
	require.Equal(testInstance, testInstant().Format(time.RFC3339), metadata["timestamp"])
	require.NotContains(testInstance, metadata, "recipe")
	require.NotContains(testInstance, metadata, "recipe_steps")

	rawMetadata, readError := os.ReadFile(filepath.Join(repositoryLogDirectory, runner.MetadataFileNameConstant))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(rawMetadata), `"command": "echo line-1; echo line-2 1>&2"`)
	require.NotContains(testInstance, string(rawMetadata), `\u003e`)
	require.NotContains(testInstance, string(rawMetadata), `\u0026`)
}

func TestCaptureReturnsNonZeroExitWithoutError(testInstance *testing.T) {
	requireShell(testInstance)
	engine := newTestEngine(testInstance)
	record := newRepositoryRecord(testInstance)
	logRoot := testInstance.TempDir()

	result, captureError := engine.Capture(context.Background(), record, runner.CommandInvocation{CommandLine: "exit 127"}, logRoot)

	require.NoError(testInstance, captureError)
	require.Equal(testInstance, 127, result.ExitCode)
	require.Equal(testInstance, "command not found", result.ExitCodeDescription())

	repositoryLogDirectory := filepath.Join(logRoot, testRepositoryNameConstant)
	for _, artifactName := range []string{runner.StandardOutputLogNameConstant, runner.StandardErrorLogNameConstant, runner.MetadataFileNameConstant} {
		require.FileExists(testInstance, filepath.Join(repositoryLogDirectory, artifactName))
	}
}

func TestCaptureFailsFastWhenDirectoryIsMissing(testInstance *testing.T) {
	engine := newTestEngine(testInstance)
	record := fleet.NewRepositoryRecord("ghost", "git@github.com:acme/ghost.git")
	record.SetBaseDirectory(testInstance.TempDir())
	logRoot := testInstance.TempDir()

	_, captureError := engine.Capture(context.Background(), record, runner.CommandInvocation{CommandLine: "true"}, logRoot)

	var missingError shared.RepositoryDirectoryMissingError
	require.ErrorAs(testInstance, captureError, &missingError)
	require.Contains(testInstance, captureError.Error(), "does not exist")
	require.NoDirExists(testInstance, filepath.Join(logRoot, "ghost"))
}

func TestCaptureRunsRecipeAndRemovesScript(testInstance *testing.T) {
	requireShell(testInstance)
	if runtime.GOOS == "windows" {
		testInstance.Skip("recipe scripts rely on the executable bit")
	}
	engine := newTestEngine(testInstance)
	record := newRepositoryRecord(testInstance)
	logRoot := testInstance.TempDir()
	recipe := fleet.Recipe{Name: "Show Files", Steps: []string{"echo first", "pwd"}}

	result, captureError := engine.Capture(context.Background(), record, runner.RecipeInvocation{Recipe: recipe}, logRoot)

	require.NoError(testInstance, captureError)
	require.Equal(testInstance, 0, result.ExitCode)
	require.Contains(testInstance, result.StandardOutput, "first\n")
	require.Contains(testInstance, result.StandardOutput, testRepositoryNameConstant)
	require.NoFileExists(testInstance, runner.RecipeScriptPath(record.TargetDirectory(), recipe.Name))

	metadata := readMetadata(testInstance, filepath.Join(logRoot, testRepositoryNameConstant, runner.MetadataFileNameConstant))
	require.Equal(testInstance, "Show Files", metadata["recipe"])
	require.Equal(testInstance, []any{"echo first", "pwd"}, metadata["recipe_steps"])
	require.NotContains(testInstance, metadata, "command")
}

func TestRunConvertsNonZeroExitAndStreamsOutput(testInstance *testing.T) {
	requireShell(testInstance)
	var streamed bytes.Buffer
	engine := newTestEngine(testInstance, runner.WithOutputReporter(shared.NewWriterReporter(&streamed)))
	record := newRepositoryRecord(testInstance)

	runError := engine.Run(context.Background(), record, runner.CommandInvocation{CommandLine: "echo hello; exit 42"})

	require.EqualError(testInstance, runError, "Command failed with exit code: 42")
	var exitError runner.CommandExitError
	require.ErrorAs(testInstance, runError, &exitError)
	require.Equal(testInstance, 42, exitError.ExitCode)
	require.Equal(testInstance, "[api] hello\n", streamed.String())

	require.NoError(testInstance, engine.Run(context.Background(), record, runner.CommandInvocation{CommandLine: ""}))
}

func TestPrepareRunRootCreatesDirectory(testInstance *testing.T) {
	engine := newTestEngine(testInstance)
	outputDirectory := testInstance.TempDir()

	runRoot, prepareError := engine.PrepareRunRoot(outputDirectory, runner.RecipeInvocation{Recipe: fleet.Recipe{Name: "lint all"}})

	require.NoError(testInstance, prepareError)
	require.Equal(testInstance, filepath.Join(outputDirectory, "runs", "20240305-140709_lint_all"), runRoot)
	require.DirExists(testInstance, runRoot)

	_, nilError := engine.PrepareRunRoot(outputDirectory, nil)
	require.ErrorIs(testInstance, nilError, runner.ErrInvocationNotConfigured)
}
