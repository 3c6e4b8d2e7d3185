package repos

import (
	"strings"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/prworkflow"
	"github.com/temirov/repos/internal/runner"
)

const (
	defaultEnvironmentFileConstant   = ".env"
	defaultPullRequestBodyConstant   = "This PR was created automatically"
	defaultInitOutputFileConstant    = fleet.DefaultFleetFileName
	defaultInitRootDirectoryConstant = "."
)

// ToolsConfiguration captures the tools.repos settings section.
type ToolsConfiguration struct {
	FleetFile       string                   `mapstructure:"fleet_file"`
	OutputDirectory string                   `mapstructure:"output_directory"`
	Parallel        bool                     `mapstructure:"parallel"`
	EnvFile         string                   `mapstructure:"env_file"`
	ExcludeTags     []string                 `mapstructure:"exclude_tags"`
	PullRequest     PullRequestConfiguration `mapstructure:"pr"`
}

// PullRequestConfiguration captures defaults for the pr command.
type PullRequestConfiguration struct {
	Title         string `mapstructure:"title"`
	Body          string `mapstructure:"body"`
	CommitMessage string `mapstructure:"commit_message"`
	BaseBranch    string `mapstructure:"base_branch"`
	Draft         bool   `mapstructure:"draft"`
	APIBaseURL    string `mapstructure:"api_base_url"`
}

// DefaultToolsConfiguration returns the values used when settings leave a field blank.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		FleetFile:       fleet.DefaultFleetFileName,
		OutputDirectory: runner.DefaultOutputDirectoryConstant,
		EnvFile:         defaultEnvironmentFileConstant,
		PullRequest: PullRequestConfiguration{
			Title: prworkflow.DefaultTitleConstant,
			Body:  defaultPullRequestBodyConstant,
		},
	}
}

// sanitize trims values, expands home prefixes and restores defaults for blank fields.
func (configuration ToolsConfiguration) sanitize() ToolsConfiguration {
	defaults := DefaultToolsConfiguration()
	sanitized := configuration
	sanitized.FleetFile = expandedOrDefault(configuration.FleetFile, defaults.FleetFile)
	sanitized.OutputDirectory = expandedOrDefault(configuration.OutputDirectory, defaults.OutputDirectory)
	sanitized.EnvFile = expandedOrDefault(configuration.EnvFile, defaults.EnvFile)
	sanitized.ExcludeTags = trimValues(configuration.ExcludeTags)
	sanitized.PullRequest.Title = valueOrDefault(configuration.PullRequest.Title, defaults.PullRequest.Title)
	sanitized.PullRequest.Body = valueOrDefault(configuration.PullRequest.Body, defaults.PullRequest.Body)
	sanitized.PullRequest.CommitMessage = strings.TrimSpace(configuration.PullRequest.CommitMessage)
	sanitized.PullRequest.BaseBranch = strings.TrimSpace(configuration.PullRequest.BaseBranch)
	sanitized.PullRequest.APIBaseURL = strings.TrimSpace(configuration.PullRequest.APIBaseURL)
	return sanitized
}

func valueOrDefault(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); len(trimmed) > 0 {
		return trimmed
	}
	return fallback
}

func expandedOrDefault(value string, fallback string) string {
	return repositoryHomeDirectoryExpander.Expand(valueOrDefault(value, fallback))
}

func trimValues(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if candidate := strings.TrimSpace(value); len(candidate) > 0 {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}
