package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/shared"
)

const (
	remoteReaderNotConfiguredMessageConstant = "remote URL reader not configured"
	fileSystemNotConfiguredMessageConstant   = "filesystem not configured"
	discovererNotConfiguredMessageConstant   = "repository discoverer not configured"
)

var (
	// ErrRemoteReaderNotConfigured indicates the inspector was built without a remote URL reader.
	ErrRemoteReaderNotConfigured = errors.New(remoteReaderNotConfiguredMessageConstant)
	// ErrFileSystemNotConfigured indicates the inspector was built without a filesystem.
	ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)
	// ErrDiscovererNotConfigured indicates the inspector was built without a discoverer.
	ErrDiscovererNotConfigured = errors.New(discovererNotConfiguredMessageConstant)
)

type tagRule struct {
	tags    []string
	markers []string
}

var fileTagRules = []tagRule{
	{tags: []string{"go"}, markers: []string{"go.mod", "main.go"}},
	{tags: []string{"javascript", "node"}, markers: []string{"package.json"}},
	{tags: []string{"python"}, markers: []string{"requirements.txt", "setup.py", "pyproject.toml"}},
	{tags: []string{"java"}, markers: []string{"pom.xml", "build.gradle"}},
	{tags: []string{"rust"}, markers: []string{"Cargo.toml"}},
}

var pathTagRules = []tagRule{
	{tags: []string{"frontend"}, markers: []string{"frontend", "ui", "web"}},
	{tags: []string{"backend"}, markers: []string{"backend", "api", "server"}},
	{tags: []string{"mobile"}, markers: []string{"mobile", "android", "ios"}},
}

// RemoteURLReader resolves a remote URL of a checkout.
type RemoteURLReader interface {
	RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
}

// RepositoryInspector turns discovered checkouts into fleet records.
type RepositoryInspector struct {
	discoverer shared.RepositoryDiscoverer
	remotes    RemoteURLReader
	fileSystem shared.FileSystem
}

// NewRepositoryInspector validates collaborators and constructs a RepositoryInspector.
func NewRepositoryInspector(discoverer shared.RepositoryDiscoverer, remotes RemoteURLReader, fileSystem shared.FileSystem) (*RepositoryInspector, error) {
	if discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if remotes == nil {
		return nil, ErrRemoteReaderNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &RepositoryInspector{discoverer: discoverer, remotes: remotes, fileSystem: fileSystem}, nil
}

// Inventory discovers checkouts beneath root and returns a record for every one with an origin remote.
// Record paths are relative to root.
func (inspector *RepositoryInspector) Inventory(executionContext context.Context, root string) ([]fleet.RepositoryRecord, error) {
	repositoryPaths, discoveryError := inspector.discoverer.DiscoverRepositories([]string{root})
	if discoveryError != nil {
		return nil, discoveryError
	}

	records := make([]fleet.RepositoryRecord, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		remoteURL, remoteError := inspector.remotes.RemoteURL(executionContext, repositoryPath, shared.OriginRemoteNameConstant)
		if remoteError != nil || len(remoteURL) == 0 {
			continue
		}

		relativePath, relativeError := filepath.Rel(root, repositoryPath)
		if relativeError != nil {
			relativePath = repositoryPath
		}
		record := fleet.NewRepositoryBuilder(filepath.Base(repositoryPath), remoteURL).
			WithPath(filepath.ToSlash(relativePath)).
			WithTags(DetectTags(inspector.fileSystem, repositoryPath, relativePath)...).
			Build()
		records = append(records, record)
	}
	return records, nil
}

// DetectTags derives tags from marker files in repositoryPath and from keywords in the lower-cased relativePath.
func DetectTags(fileSystem shared.FileSystem, repositoryPath string, relativePath string) []string {
	var tags []string
	for _, rule := range fileTagRules {
		for _, marker := range rule.markers {
			if _, statError := fileSystem.Stat(filepath.Join(repositoryPath, marker)); statError == nil {
				tags = append(tags, rule.tags...)
				break
			}
		}
	}

	loweredPath := strings.ToLower(filepath.ToSlash(relativePath))
	for _, rule := range pathTagRules {
		for _, marker := range rule.markers {
			if strings.Contains(loweredPath, marker) {
				tags = append(tags, rule.tags...)
				break
			}
		}
	}
	return tags
}
