package gitrepo

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	trailingSlashConstant               = "/"
	gitSuffixConstant                   = ".git"
	invalidRemoteURLTemplateConstant    = "Invalid GitHub URL format: %s"
	sshRemotePatternConstant            = `^git@([^:]+):([^/]+)/(.+)$`
	httpRemotePatternConstant           = `^(https?)://([^/]+)/([^/]+)/(.+)$`
	legacyRemotePatternConstant         = `(github\.com)[:/]([^/]+)/([^/]+)`
	httpProtocolSchemeConstant          = "http"
	expectedSSHSubmatchCountConstant    = 4
	expectedHTTPSubmatchCountConstant   = 5
	expectedLegacySubmatchCountConstant = 4
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
)

var (
	sshRemotePattern    = regexp.MustCompile(sshRemotePatternConstant)
	httpRemotePattern   = regexp.MustCompile(httpRemotePatternConstant)
	legacyRemotePattern = regexp.MustCompile(legacyRemotePatternConstant)
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(invalidRemoteURLTemplateConstant, parseError.Input)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// A trailing slash and then a .git suffix are removed before matching, and the
// ssh, http(s) and bare github.com forms are tried in that order. The ssh and http(s)
// forms keep everything after the owner as the repository, so nested paths survive.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	normalizedRemote := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(remote), trailingSlashConstant), gitSuffixConstant)

	if submatches := sshRemotePattern.FindStringSubmatch(normalizedRemote); len(submatches) == expectedSSHSubmatchCountConstant {
		return RemoteURL{Protocol: RemoteProtocolSSH, Host: submatches[1], Owner: submatches[2], Repository: submatches[3]}, nil
	}

	if submatches := httpRemotePattern.FindStringSubmatch(normalizedRemote); len(submatches) == expectedHTTPSubmatchCountConstant {
		protocol := RemoteProtocolHTTPS
		if submatches[1] == httpProtocolSchemeConstant {
			protocol = RemoteProtocolHTTP
		}
		return RemoteURL{Protocol: protocol, Host: submatches[2], Owner: submatches[3], Repository: submatches[4]}, nil
	}

	if submatches := legacyRemotePattern.FindStringSubmatch(normalizedRemote); len(submatches) == expectedLegacySubmatchCountConstant {
		return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: submatches[1], Owner: submatches[2], Repository: submatches[3]}, nil
	}

	return RemoteURL{}, RemoteURLParseError{Input: normalizedRemote}
}

// ParseRepositoryURL extracts the owner and repository name from a remote URL.
func ParseRepositoryURL(remote string) (string, string, error) {
	remoteURL, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", "", parseError
	}
	return remoteURL.Owner, remoteURL.Repository, nil
}
