package runner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/internal/runner"
)

func TestClassifyExitCode(testInstance *testing.T) {
	testCases := []struct {
		exitCode    int
		description string
	}{
		{exitCode: 0, description: "success"},
		{exitCode: 1, description: "general error"},
		{exitCode: 2, description: "shell builtin misuse"},
		{exitCode: 126, description: "command invoked cannot execute"},
		{exitCode: 127, description: "command not found"},
		{exitCode: 128, description: "invalid argument to exit"},
		{exitCode: 130, description: "script terminated by Control-C"},
		{exitCode: 131, description: "terminated by signal"},
		{exitCode: 137, description: "terminated by signal"},
		{exitCode: 255, description: "terminated by signal"},
		{exitCode: 42, description: "error"},
		{exitCode: 129, description: "error"},
		{exitCode: 256, description: "error"},
		{exitCode: runner.NoExitCodeConstant, description: "error"},
	}

	for _, testCase := range testCases {
		require.Equal(testInstance, testCase.description, runner.ClassifyExitCode(testCase.exitCode), "exit code %d", testCase.exitCode)
	}
}

func TestSanitizeRunLabel(testInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "spaces_and_separators", input: `go test ./... | tee "out"`, expected: "go_test_._...___tee__out_"},
		{name: "keeps_dots_dashes_underscores", input: "update-deps_v1.2", expected: "update-deps_v1.2"},
		{name: "keeps_unicode_letters", input: "größe", expected: "größe"},
		{name: "truncates_to_fifty", input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", expected: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, runner.SanitizeRunLabel(testCase.input))
		})
	}
}

func TestSanitizeScriptName(testInstance *testing.T) {
	require.Equal(testInstance, "update_deps-now_1", runner.SanitizeScriptName("Update Deps-now_1"))
	require.Equal(testInstance, "a_b_c", runner.SanitizeScriptName("a/b.c"))
	require.Equal(testInstance, "gr__e", runner.SanitizeScriptName("größe"))
}
