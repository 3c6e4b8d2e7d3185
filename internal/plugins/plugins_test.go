package plugins_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/plugins"
)

const reportingPluginScriptConstant = `#!/bin/sh
echo "args: $*"
echo "config: $REPOS_CONFIG_FILE"
echo "repositories: $REPOS_REPOSITORIES"
echo "debug: $REPOS_DEBUG"
`

func requireUnixShell(testInstance *testing.T) {
	testInstance.Helper()
	if runtime.GOOS == "windows" {
		testInstance.Skip("plugin scripts need a POSIX shell")
	}
	if _, lookupError := exec.LookPath("sh"); lookupError != nil {
		testInstance.Skip("sh is not available")
	}
}

func writeExecutable(testInstance *testing.T, directory string, name string, content string, mode os.FileMode) {
	testInstance.Helper()
	path := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(testInstance, os.Chmod(path, mode))
}

func TestDiscoverListsExecutablePlugins(testInstance *testing.T) {
	requireUnixShell(testInstance)

	firstDirectory := testInstance.TempDir()
	secondDirectory := testInstance.TempDir()
	writeExecutable(testInstance, firstDirectory, "repos-health", "#!/bin/sh\n", 0o755)
	writeExecutable(testInstance, firstDirectory, "repos-security", "#!/bin/sh\n", 0o755)
	writeExecutable(testInstance, firstDirectory, "other-tool", "#!/bin/sh\n", 0o755)
	writeExecutable(testInstance, firstDirectory, "repos-nonexec", "echo\n", 0o644)
	writeExecutable(testInstance, firstDirectory, "repos-", "#!/bin/sh\n", 0o755)
	require.NoError(testInstance, os.Mkdir(filepath.Join(firstDirectory, "repos-directory"), 0o755))
	writeExecutable(testInstance, secondDirectory, "repos-health", "#!/bin/sh\n", 0o755)
	writeExecutable(testInstance, secondDirectory, "repos-audit", "#!/bin/sh\n", 0o755)

	searchPath := filepath.Join(testInstance.TempDir(), "missing") + string(os.PathListSeparator) + firstDirectory + string(os.PathListSeparator) + string(os.PathListSeparator) + secondDirectory

	require.Equal(testInstance, []string{"audit", "health", "security"}, plugins.Discover(searchPath))
	require.Empty(testInstance, plugins.Discover(""))
}

func TestContextEnvironment(testInstance *testing.T) {
	testCases := []struct {
		name        string
		context     plugins.Context
		expectedEnv map[string]string
	}{
		{
			name: "fleet_and_debug",
			context: plugins.Context{
				FleetFile: "/work/repos.yaml",
				Repositories: []fleet.RepositoryRecord{
					fleet.NewRepositoryRecord("api", "git@github.com:acme/api.git"),
					fleet.NewRepositoryRecord("web", "git@github.com:acme/web.git"),
				},
				Debug: true,
			},
			expectedEnv: map[string]string{
				plugins.ConfigFileEnvironmentVariableConstant:   "/work/repos.yaml",
				plugins.RepositoriesEnvironmentVariableConstant: "api,web",
				plugins.DebugEnvironmentVariableConstant:        "1",
			},
		},
		{
			name:        "no_fleet",
			context:     plugins.Context{},
			expectedEnv: map[string]string{plugins.RepositoriesEnvironmentVariableConstant: ""},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedEnv, testCase.context.Environment())
		})
	}
}

func TestNewDispatcherRequiresExecutor(testInstance *testing.T) {
	_, creationError := plugins.NewDispatcher(nil, nil)
	require.ErrorIs(testInstance, creationError, plugins.ErrExecutorNotConfigured)
}

func TestDispatcherRunsPluginFromPath(testInstance *testing.T) {
	requireUnixShell(testInstance)

	pluginDirectory := testInstance.TempDir()
	writeExecutable(testInstance, pluginDirectory, "repos-health", reportingPluginScriptConstant, 0o755)
	writeExecutable(testInstance, pluginDirectory, "repos-broken", "#!/bin/sh\nexit 3\n", 0o755)
	testInstance.Setenv("PATH", pluginDirectory+string(os.PathListSeparator)+os.Getenv("PATH"))

	var output bytes.Buffer
	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewAttachedCommandRunner(nil, &output, &output))
	require.NoError(testInstance, executorError)
	dispatcher, dispatcherError := plugins.NewDispatcher(shellExecutor, nil)
	require.NoError(testInstance, dispatcherError)

	dispatchError := dispatcher.Dispatch(context.Background(), "health", plugins.Context{
		FleetFile:    "/work/repos.yaml",
		Repositories: []fleet.RepositoryRecord{fleet.NewRepositoryRecord("api", "git@github.com:acme/api.git")},
		Arguments:    []string{"--test", "argument"},
	})
	require.NoError(testInstance, dispatchError)
	require.Equal(testInstance, "args: --test argument\nconfig: /work/repos.yaml\nrepositories: api\ndebug: \n", output.String())

	exitError := dispatcher.Dispatch(context.Background(), "broken", plugins.Context{})
	require.Equal(testInstance, plugins.ExitError{Executable: "repos-broken", ExitCode: 3}, exitError)
	require.EqualError(testInstance, exitError, "Plugin 'repos-broken' exited with status: 3")

	missingError := dispatcher.Dispatch(context.Background(), "nonexistent", plugins.Context{})
	var launchError plugins.LaunchError
	require.ErrorAs(testInstance, missingError, &launchError)
	require.Equal(testInstance, "repos-nonexistent", launchError.Executable)
	require.Contains(testInstance, missingError.Error(), "Plugin 'repos-nonexistent' not found")

	require.ErrorIs(testInstance, dispatcher.Dispatch(context.Background(), " ", plugins.Context{}), plugins.ErrPluginNameRequired)
}
