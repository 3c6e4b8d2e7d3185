package cli

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		linkedVersion   string
		buildInfo       *debug.BuildInfo
		buildAvailable  bool
		expectedVersion string
	}{
		{name: "linked", linkedVersion: " v1.4.0 ", expectedVersion: "v1.4.0"},
		{name: "module", buildInfo: &debug.BuildInfo{Main: debug.Module{Version: "v0.9.1"}}, buildAvailable: true, expectedVersion: "v0.9.1"},
		{name: "devel_build", buildInfo: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, buildAvailable: true, expectedVersion: "dev"},
		{name: "no_build_info", expectedVersion: "dev"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			originalVersion, originalReader := Version, buildInfoReader
			testInstance.Cleanup(func() {
				Version, buildInfoReader = originalVersion, originalReader
			})
			Version = testCase.linkedVersion
			buildInfoReader = func() (*debug.BuildInfo, bool) {
				return testCase.buildInfo, testCase.buildAvailable
			}

			require.Equal(testInstance, testCase.expectedVersion, ResolveVersion())
		})
	}
}

func TestVersionCommandPrintsVersion(testInstance *testing.T) {
	originalVersion := Version
	testInstance.Cleanup(func() { Version = originalVersion })
	Version = "v3.0.0"

	application := NewApplication()
	var output bytes.Buffer
	application.SetOutput(&output)

	require.NoError(testInstance, application.ExecuteWithArguments([]string{"version"}))
	require.Equal(testInstance, "repos v3.0.0\n", output.String())
}
