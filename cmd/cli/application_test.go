package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/cmd/cli"
	"github.com/temirov/repos/internal/fleet"
)

const (
	testFleetContentConstant = `repositories:
  - name: api
    url: git@github.com:acme/api.git
    tags: [go]
  - name: legacy
    url: git@github.com:acme/legacy.git
    tags: [go, archived]
`
	testConfigurationContentConstant = `common:
  log_level: error
tools:
  repos:
    exclude_tags: [archived]
`
)

func writeFile(testInstance *testing.T, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte(content), 0o644))
}

func TestApplicationListsFleetWithConfiguredExclusions(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	fleetPath := filepath.Join(temporaryDirectory, "repos.yaml")
	configurationPath := filepath.Join(temporaryDirectory, "config.yaml")
	writeFile(testInstance, fleetPath, testFleetContentConstant)
	writeFile(testInstance, configurationPath, testConfigurationContentConstant)

	application := cli.NewApplication()
	var output bytes.Buffer
	application.SetOutput(&output)

	executionError := application.ExecuteWithArguments([]string{"--config", configurationPath, "ls", "-f", fleetPath, "--json"})
	require.NoError(testInstance, executionError)

	var records []fleet.RepositoryRecord
	require.NoError(testInstance, json.Unmarshal(output.Bytes(), &records))
	require.Len(testInstance, records, 1)
	require.Equal(testInstance, "api", records[0].Name)

	configuration := application.Configuration()
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.Equal(testInstance, "Automated changes", configuration.Tools.Repos.PullRequest.Title)
}

func TestApplicationEnvironmentOverridesConfiguration(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	fleetPath := filepath.Join(temporaryDirectory, "repos.yaml")
	writeFile(testInstance, fleetPath, testFleetContentConstant)
	testInstance.Setenv("REPOS_TOOLS_REPOS_FLEET_FILE", fleetPath)
	testInstance.Setenv("REPOS_COMMON_LOG_LEVEL", "warn")

	application := cli.NewApplication()
	var output bytes.Buffer
	application.SetOutput(&output)

	executionError := application.ExecuteWithArguments([]string{"ls", "--json", "no"})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output.String(), "legacy")
	require.Equal(testInstance, fleetPath, application.Configuration().Tools.Repos.FleetFile)
	require.Equal(testInstance, "warn", application.Configuration().Common.LogLevel)
}

func TestApplicationRejectsInvalidLogSettings(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "log_level", arguments: []string{"--log-level", "verbose", "version"}, expectedError: "unable to create logger: unsupported log level: verbose"},
		{name: "log_format", arguments: []string{"--log-format", "xml", "version"}, expectedError: "unable to create logger: unsupported log format: xml"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := cli.NewApplication()
			application.SetOutput(&bytes.Buffer{})
			require.EqualError(testInstance, application.ExecuteWithArguments(testCase.arguments), testCase.expectedError)
		})
	}
}

func TestApplicationMissingExplicitConfigurationFails(testInstance *testing.T) {
	application := cli.NewApplication()
	application.SetOutput(&bytes.Buffer{})

	executionError := application.ExecuteWithArguments([]string{"--config", filepath.Join(testInstance.TempDir(), "absent.yaml"), "version"})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to load configuration")
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application := cli.NewApplication()
	var output bytes.Buffer
	application.SetOutput(&output)

	require.NoError(testInstance, application.ExecuteWithArguments([]string{"--help"}))
	for _, commandName := range []string{"clone", "rm", "run", "pr", "ls", "init", "version", "list-plugins"} {
		require.Contains(testInstance, output.String(), commandName)
	}
}

const testPluginScriptConstant = `#!/bin/sh
echo "args: $*"
echo "config: $REPOS_CONFIG_FILE"
echo "repositories: $REPOS_REPOSITORIES"
echo "debug: $REPOS_DEBUG"
`

func installPlugin(testInstance *testing.T, name string, content string) string {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("plugin scripts need a POSIX shell")
	}
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}
	pluginDirectory := testInstance.TempDir()
	pluginPath := filepath.Join(pluginDirectory, "repos-"+name)
	writeFile(testInstance, pluginPath, content)
	require.NoError(testInstance, os.Chmod(pluginPath, 0o755))
	testInstance.Setenv("PATH", pluginDirectory+string(os.PathListSeparator)+os.Getenv("PATH"))
	return pluginDirectory
}

func TestApplicationDispatchesUnknownCommandsToPlugins(testInstance *testing.T) {
	installPlugin(testInstance, "health", testPluginScriptConstant)
	temporaryDirectory := testInstance.TempDir()
	fleetPath := filepath.Join(temporaryDirectory, "repos.yaml")
	writeFile(testInstance, fleetPath, testFleetContentConstant)

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "tag_filter_and_plugin_arguments",
			arguments:      []string{"health", "--test", "-f", fleetPath, "--tag", "archived", "argument", "-d"},
			expectedOutput: "args: --test argument\nconfig: " + fleetPath + "\nrepositories: legacy\ndebug: 1\n",
		},
		{
			name:           "whole_fleet",
			arguments:      []string{"health", "--fleet=" + fleetPath},
			expectedOutput: "args: \nconfig: " + fleetPath + "\nrepositories: api,legacy\ndebug: \n",
		},
		{
			name:           "terminator_forwards_selection_flags",
			arguments:      []string{"health", "-f", fleetPath, "--", "--tag", "go"},
			expectedOutput: "args: --tag go\nconfig: " + fleetPath + "\nrepositories: api,legacy\ndebug: \n",
		},
		{
			name:           "missing_fleet_without_filters",
			arguments:      []string{"health", "-f", filepath.Join(temporaryDirectory, "absent.yaml"), "--verbose"},
			expectedOutput: "args: --verbose\nconfig: \nrepositories: \ndebug: \n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := cli.NewApplication()
			var output bytes.Buffer
			application.SetOutput(&output)

			require.NoError(testInstance, application.ExecuteWithArguments(testCase.arguments))
			require.Equal(testInstance, testCase.expectedOutput, output.String())
		})
	}
}

func TestApplicationPluginFailures(testInstance *testing.T) {
	installPlugin(testInstance, "broken", "#!/bin/sh\nexit 2\n")
	temporaryDirectory := testInstance.TempDir()

	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "non_zero_exit", arguments: []string{"broken"}, expectedError: "Plugin 'repos-broken' exited with status: 2"},
		{name: "missing_plugin", arguments: []string{"nonexistent"}, expectedError: "Plugin 'repos-nonexistent' not found"},
		{name: "filter_without_fleet", arguments: []string{"broken", "-f", filepath.Join(temporaryDirectory, "absent.yaml"), "-t", "go"}, expectedError: "failed to read fleet configuration"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := cli.NewApplication()
			application.SetOutput(&bytes.Buffer{})

			executionError := application.ExecuteWithArguments(testCase.arguments)
			require.Error(testInstance, executionError)
			require.Contains(testInstance, executionError.Error(), testCase.expectedError)
		})
	}
}

func TestApplicationListsPlugins(testInstance *testing.T) {
	pluginDirectory := installPlugin(testInstance, "health", testPluginScriptConstant)

	application := cli.NewApplication()
	var output bytes.Buffer
	application.SetOutput(&output)
	require.NoError(testInstance, application.ExecuteWithArguments([]string{"--list-plugins"}))
	require.Contains(testInstance, output.String(), "Available external plugins:\n")
	require.Contains(testInstance, output.String(), "  health\n")

	testInstance.Setenv("PATH", filepath.Join(pluginDirectory, "absent"))
	emptyApplication := cli.NewApplication()
	var emptyOutput bytes.Buffer
	emptyApplication.SetOutput(&emptyOutput)
	require.NoError(testInstance, emptyApplication.ExecuteWithArguments([]string{"--list-plugins"}))
	require.Equal(testInstance, "No external plugins found.\nTo create a plugin, make an executable named 'repos-<name>' available in your PATH.\n", emptyOutput.String())
}
