package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const (
	gitMetadataDirectoryNameConstant = ".git"
	// DefaultMaximumDepthConstant limits how deep init looks for .git entries below the root.
	DefaultMaximumDepthConstant = 3
)

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct {
	maximumDepth int
}

// NewFilesystemRepositoryDiscoverer constructs a discoverer backed by filepath.WalkDir.
// A .git entry deeper than maximumDepth path segments below a root is ignored; zero or
// a negative value disables the limit.
func NewFilesystemRepositoryDiscoverer(maximumDepth int) *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{maximumDepth: maximumDepth}
}

// DiscoverRepositories walks the provided roots and returns the sorted directories containing a .git entry.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	seen := make(map[string]struct{})
	var repositories []string

	for _, root := range roots {
		walkError := filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
			if walkError != nil {
				return nil
			}

			if discoverer.exceedsDepth(root, path) {
				if directoryEntry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
				return nil
			}

			repositoryPath := filepath.Dir(path)
			if _, alreadySeen := seen[repositoryPath]; !alreadySeen {
				seen[repositoryPath] = struct{}{}
				repositories = append(repositories, repositoryPath)
			}

			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		})
		if walkError != nil {
			return nil, walkError
		}
	}

	sort.Strings(repositories)
	return repositories, nil
}

func (discoverer *FilesystemRepositoryDiscoverer) exceedsDepth(root string, path string) bool {
	if discoverer.maximumDepth <= 0 {
		return false
	}
	relativePath, relativeError := filepath.Rel(root, path)
	if relativeError != nil || relativePath == "." {
		return false
	}
	depth := len(strings.Split(filepath.ToSlash(relativePath), "/"))
	return depth > discoverer.maximumDepth
}
