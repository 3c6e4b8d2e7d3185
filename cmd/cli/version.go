package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	versionUseConstant              = "version"
	versionShortDescriptionConstant = "Print the repos version"
	versionOutputTemplateConstant   = "repos %s\n"
	developmentVersionConstant      = "dev"
	develBuildVersionConstant       = "(devel)"
)

// Version is set at link time with -ldflags "-X github.com/temirov/repos/cmd/cli.Version=v1.2.3".
var Version = ""

// buildInfoReader is replaced in tests.
var buildInfoReader = debug.ReadBuildInfo

// ResolveVersion reports the link-time version, then the module version recorded in the build, then "dev".
func ResolveVersion() string {
	if trimmed := strings.TrimSpace(Version); len(trimmed) > 0 {
		return trimmed
	}
	buildInformation, available := buildInfoReader()
	if available && buildInformation != nil {
		moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
		if len(moduleVersion) > 0 && moduleVersion != develBuildVersionConstant {
			return moduleVersion
		}
	}
	return developmentVersionConstant
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionUseConstant,
		Short: versionShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, printError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, ResolveVersion())
			return printError
		},
	}
}
