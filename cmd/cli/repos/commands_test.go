package repos_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/cmd/cli/repos"
	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/githubapi"
	"github.com/temirov/repos/internal/githubauth"
	"github.com/temirov/repos/internal/prworkflow"
)

const (
	testFleetContentConstant = `repositories:
  - name: api
    url: git@github.com:acme/api.git
    tags: [go, backend]
  - name: web
    url: https://github.com/acme/web
    tags: [javascript, frontend]
recipes:
  - name: greet
    steps:
      - echo recipe-step
`
	testFleetFileNameConstant = "repos.yaml"
)

type recordingGitExecutor struct {
	responses        map[string]execshell.ExecutionResult
	recordedCommands []string
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	joined := strings.Join(details.Arguments, " ")
	executor.recordedCommands = append(executor.recordedCommands, joined)
	return executor.responses[joined], nil
}

type staticDiscoverer struct {
	repositories []string
}

func (discoverer staticDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	return discoverer.repositories, nil
}

type recordingPullRequestCreator struct {
	parameters []githubapi.PullRequestParameters
	owners     []string
}

func (creator *recordingPullRequestCreator) CreatePullRequest(executionContext context.Context, owner string, repository string, parameters githubapi.PullRequestParameters) (githubapi.PullRequest, error) {
	creator.owners = append(creator.owners, owner+"/"+repository)
	creator.parameters = append(creator.parameters, parameters)
	return githubapi.PullRequest{Number: 7, HTMLURL: "https://github.com/" + owner + "/" + repository + "/pull/7"}, nil
}

type builder interface {
	Build() (*cobra.Command, error)
}

func writeFleet(testInstance *testing.T) string {
	testInstance.Helper()
	fleetPath := filepath.Join(testInstance.TempDir(), testFleetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(fleetPath, []byte(testFleetContentConstant), 0o644))
	return fleetPath
}

func executeCommand(testInstance *testing.T, commandBuilder builder, arguments ...string) (string, error) {
	testInstance.Helper()
	command, buildError := commandBuilder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true
	executionError := command.ExecuteContext(context.Background())
	return output.String(), executionError
}

func TestListCommandRendersJSONSelection(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	output, executionError := executeCommand(testInstance, &repos.ListCommandBuilder{}, "--fleet", fleetPath, "--tag", "go", "--json")
	require.NoError(testInstance, executionError)

	var records []fleet.RepositoryRecord
	require.NoError(testInstance, json.Unmarshal([]byte(output), &records))
	require.Len(testInstance, records, 1)
	require.Equal(testInstance, "api", records[0].Name)
	require.Equal(testInstance, []string{"go", "backend"}, records[0].Tags)
}

func TestListCommandReportsEmptySelection(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "unknown_tag",
			arguments:      []string{"--fleet", fleetPath, "-t", "rust"},
			expectedOutput: "No repositories found with tags [\"rust\"]\n",
		},
		{
			name:           "configured_exclusion",
			arguments:      []string{"--fleet", fleetPath, "web"},
			expectedOutput: "No repositories found with excluding tags [\"frontend\"] and repositories [\"web\"]\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commandBuilder := &repos.ListCommandBuilder{
				ConfigurationProvider: func() repos.ToolsConfiguration {
					return repos.ToolsConfiguration{ExcludeTags: []string{"frontend"}}
				},
			}
			output, executionError := executeCommand(testInstance, commandBuilder, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestListCommandPrintsSelectionTags(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "whole_fleet",
			arguments:      []string{"--fleet", fleetPath, "--tags"},
			expectedOutput: "backend\nfrontend\ngo\njavascript\n",
		},
		{
			name:           "selection_only",
			arguments:      []string{"--fleet", fleetPath, "--tags", "web"},
			expectedOutput: "frontend\njavascript\n",
		},
		{
			name:           "json",
			arguments:      []string{"--fleet", fleetPath, "--tags", "--json", "api"},
			expectedOutput: "[\n  \"backend\",\n  \"go\"\n]\n",
		},
		{
			name:           "empty_selection",
			arguments:      []string{"--fleet", fleetPath, "--tags", "-t", "rust"},
			expectedOutput: "No tags found with tags [\"rust\"]\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output, executionError := executeCommand(testInstance, &repos.ListCommandBuilder{}, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestListCommandRejectsBlankTag(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	_, executionError := executeCommand(testInstance, &repos.ListCommandBuilder{}, "--fleet", fleetPath, "--tag", " ")
	var validationError repos.CommandValidationError
	require.ErrorAs(testInstance, executionError, &validationError)
	require.Equal(testInstance, repos.ValidationKindInvalidValue, validationError.Kind)
}

func TestCloneCommandClonesSelectedRepositories(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	executor := &recordingGitExecutor{}

	output, executionError := executeCommand(testInstance, &repos.CloneCommandBuilder{GitExecutor: executor}, "--fleet", fleetPath, "api")
	require.NoError(testInstance, executionError)

	expectedTarget := filepath.Join(filepath.Dir(fleetPath), "api")
	require.Equal(testInstance, []string{"clone git@github.com:acme/api.git " + expectedTarget}, executor.recordedCommands)
	require.Contains(testInstance, output, "Cloning 1 repositories...")
	require.Contains(testInstance, output, "api | Successfully cloned")
	require.Contains(testInstance, output, "Done cloning repositories")
}

func TestRemoveCommandFailsForMissingCheckouts(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	output, executionError := executeCommand(testInstance, &repos.RemoveCommandBuilder{GitExecutor: &recordingGitExecutor{}}, "--fleet", fleetPath)
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "All removal operations failed")
	require.Contains(testInstance, output, "Removing 2 repositories...")
	require.Contains(testInstance, output, "Completed with 0 successful, 2 failed")
}

func TestRemoveCommandDeletesCheckout(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	checkoutDirectory := filepath.Join(filepath.Dir(fleetPath), "web")
	require.NoError(testInstance, os.MkdirAll(checkoutDirectory, 0o755))

	output, executionError := executeCommand(testInstance, &repos.RemoveCommandBuilder{GitExecutor: &recordingGitExecutor{}}, "--fleet", fleetPath, "--repos", "web")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "web | Removed")
	require.NoDirExists(testInstance, checkoutDirectory)
}

func TestRunCommandValidatesArguments(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)

	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "missing_command", arguments: []string{"--fleet", fleetPath}, expectedError: "Either --recipe or a command must be provided"},
		{name: "command_and_recipe", arguments: []string{"--fleet", fleetPath, "--recipe", "greet", "make"}, expectedError: "Cannot specify both command and --recipe"},
		{name: "blank_output", arguments: []string{"--fleet", fleetPath, "-o", " ", "make"}, expectedError: "Invalid value ' ' for output-dir: output directory cannot be empty or whitespace only"},
		{name: "unknown_recipe", arguments: []string{"--fleet", fleetPath, "--recipe", "missing"}, expectedError: "Recipe 'missing' not found"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, executionError := executeCommand(testInstance, &repos.RunCommandBuilder{}, testCase.arguments...)
			require.EqualError(testInstance, executionError, testCase.expectedError)
		})
	}
}

func TestRunCommandCapturesOutput(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(filepath.Dir(fleetPath), "api"), 0o755))
	outputDirectory := filepath.Join(testInstance.TempDir(), "logs")

	output, executionError := executeCommand(testInstance, &repos.RunCommandBuilder{}, "--fleet", fleetPath, "-o", outputDirectory, "echo captured", "api")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Running in 1 repositories...")
	require.Contains(testInstance, output, "Done running commands")

	logFiles, globError := filepath.Glob(filepath.Join(outputDirectory, "runs", "*", "api", "stdout.log"))
	require.NoError(testInstance, globError)
	require.Len(testInstance, logFiles, 1)
	logContent, readError := os.ReadFile(logFiles[0])
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(logContent), "captured")
}

func TestRunCommandStreamsRecipeWithoutSaving(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(filepath.Dir(fleetPath), "web"), 0o755))
	outputDirectory := filepath.Join(testInstance.TempDir(), "logs")

	output, executionError := executeCommand(testInstance, &repos.RunCommandBuilder{}, "--fleet", fleetPath, "--recipe", "greet", "--repos", "web", "--no-save", "-o", outputDirectory)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "recipe-step")
	require.NoDirExists(testInstance, outputDirectory)
}

func TestPullRequestCommandRequiresToken(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	for _, variable := range []string{githubauth.EnvGitHubToken, githubauth.EnvGitHubCLIToken, githubauth.EnvGitHubAPIToken} {
		testInstance.Setenv(variable, "")
	}
	environmentFile := filepath.Join(testInstance.TempDir(), "missing.env")

	_, executionError := executeCommand(testInstance, &repos.PullRequestCommandBuilder{GitExecutor: &recordingGitExecutor{}}, "--fleet", fleetPath, "--env-file", environmentFile)
	require.EqualError(testInstance, executionError, "Either --token, GITHUB_TOKEN environment variable or GitHub token must be provided")
}

func TestPullRequestCommandOpensPullRequest(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	checkoutDirectory := filepath.Join(filepath.Dir(fleetPath), "api")
	require.NoError(testInstance, os.MkdirAll(checkoutDirectory, 0o755))

	executor := &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
		"status --porcelain":                   {StandardOutput: " M main.go\n"},
		"symbolic-ref refs/remotes/origin/HEAD": {StandardOutput: "refs/remotes/origin/trunk\n"},
	}}
	creator := &recordingPullRequestCreator{}
	var factoryOptions githubapi.ClientOptions
	commandBuilder := &repos.PullRequestCommandBuilder{
		GitExecutor: executor,
		CreatorFactory: func(options githubapi.ClientOptions) (prworkflow.PullRequestCreator, error) {
			factoryOptions = options
			return creator, nil
		},
		BranchNameGenerator: func() string { return "automated-changes-abc123" },
		Version:             "v1.0.0",
	}

	output, executionError := executeCommand(testInstance, commandBuilder, "--fleet", fleetPath, "--token", "secret", "--title", "Bump deps", "--draft", "api")
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, "secret", factoryOptions.Token)
	require.Equal(testInstance, "v1.0.0", factoryOptions.Version)
	require.Equal(testInstance, []string{"acme/api"}, creator.owners)
	require.Equal(testInstance, []githubapi.PullRequestParameters{{
		Title: "Bump deps",
		Body:  "This PR was created automatically",
		Head:  "automated-changes-abc123",
		Base:  "trunk",
		Draft: true,
	}}, creator.parameters)
	require.Contains(testInstance, executor.recordedCommands, "commit -m Bump deps")
	require.Contains(testInstance, output, "api | Pull request created: https://github.com/acme/api/pull/7")
}

func TestPullRequestCommandCreateOnlySkipsToken(testInstance *testing.T) {
	fleetPath := writeFleet(testInstance)
	for _, variable := range []string{githubauth.EnvGitHubToken, githubauth.EnvGitHubCLIToken, githubauth.EnvGitHubAPIToken} {
		testInstance.Setenv(variable, "")
	}
	require.NoError(testInstance, os.MkdirAll(filepath.Join(filepath.Dir(fleetPath), "web"), 0o755))

	executor := &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
		"status --porcelain": {StandardOutput: "?? notes.txt\n"},
	}}
	commandBuilder := &repos.PullRequestCommandBuilder{
		GitExecutor: executor,
		CreatorFactory: func(githubapi.ClientOptions) (prworkflow.PullRequestCreator, error) {
			testInstance.Fatal("creator must not be built without a token")
			return nil, nil
		},
	}

	output, executionError := executeCommand(testInstance, commandBuilder, "--fleet", fleetPath, "--env-file", filepath.Join(testInstance.TempDir(), "none.env"), "--create-only", "--branch", "chore/notes", "--message", "Add notes", "web")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, executor.recordedCommands, "checkout -b chore/notes")
	require.Contains(testInstance, executor.recordedCommands, "commit -m Add notes")
	require.NotContains(testInstance, strings.Join(executor.recordedCommands, "\n"), "push")
	require.Contains(testInstance, output, "web | Changes committed to branch chore/notes")
}

func TestInitCommandWritesDiscoveredRepositories(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	serviceDirectory := filepath.Join(rootDirectory, "backend", "billing")
	require.NoError(testInstance, os.MkdirAll(serviceDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(serviceDirectory, "go.mod"), []byte("module billing\n"), 0o644))
	orphanDirectory := filepath.Join(rootDirectory, "scratch")
	require.NoError(testInstance, os.MkdirAll(orphanDirectory, 0o755))

	executor := &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
		"remote get-url origin": {StandardOutput: "git@github.com:acme/billing.git\n"},
	}}
	orphanAwareExecutor := &originFilteringExecutor{delegate: executor, withoutOrigin: orphanDirectory}
	outputFile := filepath.Join(rootDirectory, "fleet.yaml")
	commandBuilder := &repos.InitCommandBuilder{
		GitExecutor: orphanAwareExecutor,
		Discoverer:  staticDiscoverer{repositories: []string{serviceDirectory, orphanDirectory}},
	}

	output, executionError := executeCommand(testInstance, commandBuilder, "--root", rootDirectory, "--output", outputFile)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Discovering Git repositories...")
	require.Contains(testInstance, output, "Found 1 repositories")
	require.Contains(testInstance, output, "Configuration saved to '"+outputFile+"'")

	configuration, loadError := fleet.LoadConfiguration(outputFile)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, configuration.Repositories, 1)
	record := configuration.Repositories[0]
	require.Equal(testInstance, "billing", record.Name)
	require.Equal(testInstance, "git@github.com:acme/billing.git", record.URL)
	require.Equal(testInstance, "backend/billing", record.Path)
	require.Equal(testInstance, []string{"go", "backend"}, record.Tags)

	_, secondError := executeCommand(testInstance, commandBuilder, "--root", rootDirectory, "--output", outputFile)
	require.EqualError(testInstance, secondError, "Output file '"+outputFile+"' already exists. Use --overwrite to replace it.")

	_, overwriteError := executeCommand(testInstance, commandBuilder, "--root", rootDirectory, "--output", outputFile, "--overwrite")
	require.NoError(testInstance, overwriteError)
}

func TestInitCommandReportsEmptyDiscovery(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	outputFile := filepath.Join(rootDirectory, "fleet.yaml")

	output, executionError := executeCommand(testInstance, &repos.InitCommandBuilder{
		GitExecutor: &recordingGitExecutor{},
		Discoverer:  staticDiscoverer{},
	}, "--root", rootDirectory, "--output", outputFile)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "No Git repositories found in current directory")
	require.NoFileExists(testInstance, outputFile)
}

func TestInitCommandSupplementsExistingFleet(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	existingDirectory := filepath.Join(rootDirectory, "api")
	newDirectory := filepath.Join(rootDirectory, "billing")
	for _, directory := range []string{existingDirectory, newDirectory} {
		require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	}
	outputFile := filepath.Join(rootDirectory, testFleetFileNameConstant)
	require.NoError(testInstance, os.WriteFile(outputFile, []byte(testFleetContentConstant), 0o644))

	commandBuilder := &repos.InitCommandBuilder{
		GitExecutor: &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
			"remote get-url origin": {StandardOutput: "git@github.com:acme/billing.git\n"},
		}},
		Discoverer: staticDiscoverer{repositories: []string{existingDirectory, newDirectory}},
	}

	output, executionError := executeCommand(testInstance, commandBuilder, "--root", rootDirectory, "--output", outputFile, "--supplement")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Found 2 repositories")
	require.Contains(testInstance, output, "Added 1 new repositories to '"+outputFile+"'")

	configuration, loadError := fleet.LoadConfiguration(outputFile)
	require.NoError(testInstance, loadError)
	names := []string{}
	for _, record := range configuration.Repositories {
		names = append(names, record.Name)
	}
	require.Equal(testInstance, []string{"api", "web", "billing"}, names)
	require.Equal(testInstance, "git@github.com:acme/api.git", configuration.Repositories[0].URL)
	require.Len(testInstance, configuration.Recipes, 1)

	repeatOutput, repeatError := executeCommand(testInstance, commandBuilder, "--root", rootDirectory, "--output", outputFile, "--supplement")
	require.NoError(testInstance, repeatError)
	require.Contains(testInstance, repeatOutput, "No new repositories to add to '"+outputFile+"'")
	reloaded, reloadError := fleet.LoadConfiguration(outputFile)
	require.NoError(testInstance, reloadError)
	require.Len(testInstance, reloaded.Repositories, 3)
}

func TestInitCommandSupplementWithoutExistingFileWritesFleet(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	serviceDirectory := filepath.Join(rootDirectory, "billing")
	require.NoError(testInstance, os.MkdirAll(serviceDirectory, 0o755))
	outputFile := filepath.Join(rootDirectory, testFleetFileNameConstant)

	output, executionError := executeCommand(testInstance, &repos.InitCommandBuilder{
		GitExecutor: &recordingGitExecutor{responses: map[string]execshell.ExecutionResult{
			"remote get-url origin": {StandardOutput: "git@github.com:acme/billing.git\n"},
		}},
		Discoverer: staticDiscoverer{repositories: []string{serviceDirectory}},
	}, "--root", rootDirectory, "--output", outputFile, "--supplement")
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Configuration saved to '"+outputFile+"'")

	configuration, loadError := fleet.LoadConfiguration(outputFile)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, configuration.Repositories, 1)
}

func TestInitCommandRejectsOverwriteWithSupplement(testInstance *testing.T) {
	_, executionError := executeCommand(testInstance, &repos.InitCommandBuilder{
		GitExecutor: &recordingGitExecutor{},
		Discoverer:  staticDiscoverer{},
	}, "--output", filepath.Join(testInstance.TempDir(), testFleetFileNameConstant), "--overwrite", "--supplement")
	require.EqualError(testInstance, executionError, "Cannot specify both --overwrite and --supplement")
}

type originFilteringExecutor struct {
	delegate      *recordingGitExecutor
	withoutOrigin string
}

func (executor *originFilteringExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if details.WorkingDirectory == executor.withoutOrigin {
		return execshell.ExecutionResult{}, nil
	}
	return executor.delegate.ExecuteGit(executionContext, details)
}
