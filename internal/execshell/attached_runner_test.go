package execshell_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/internal/execshell"
)

func TestAttachedCommandRunnerForwardsStreams(testInstance *testing.T) {
	requireShell(testInstance)

	var standardOutput bytes.Buffer
	var standardError bytes.Buffer
	runner := execshell.NewAttachedCommandRunner(strings.NewReader("typed answer\n"), &standardOutput, &standardError)

	command := execshell.NewShellCommand("read reply; echo \"got $reply\"; echo \"$REPOS_TEST_VALUE\" 1>&2", testInstance.TempDir())
	command.Details.EnvironmentVariables = map[string]string{"REPOS_TEST_VALUE": "present"}
	executionResult, runError := runner.Run(context.Background(), command)

	require.NoError(testInstance, runError)
	require.Equal(testInstance, execshell.ExecutionResult{}, executionResult)
	require.Equal(testInstance, "got typed answer\n", standardOutput.String())
	require.Equal(testInstance, "present\n", standardError.String())
}

func TestAttachedCommandRunnerReportsExitCodes(testInstance *testing.T) {
	requireShell(testInstance)

	runner := execshell.NewAttachedCommandRunner(nil, nil, nil)
	executionResult, runError := runner.Run(context.Background(), execshell.NewShellCommand("exit 4", testInstance.TempDir()))
	require.NoError(testInstance, runError)
	require.Equal(testInstance, 4, executionResult.ExitCode)

	_, missingError := runner.Run(context.Background(), execshell.ShellCommand{Name: execshell.CommandName("repos-definitely-missing-executable")})
	require.Error(testInstance, missingError)
}
