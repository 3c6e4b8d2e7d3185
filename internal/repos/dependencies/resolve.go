package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/gitrepo"
	"github.com/temirov/repos/internal/repos/discovery"
	"github.com/temirov/repos/internal/repos/filesystem"
	"github.com/temirov/repos/internal/repos/shared"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default limited to the init depth.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(discovery.DefaultMaximumDepthConstant)
}

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager constructs a repository manager over the resolved executor and filesystem.
func ResolveGitRepositoryManager(existing shared.GitExecutor, fileSystem shared.FileSystem, logger *zap.Logger) (*gitrepo.RepositoryManager, error) {
	executor, executorError := ResolveGitExecutor(existing, logger)
	if executorError != nil {
		return nil, executorError
	}
	return gitrepo.NewRepositoryManager(executor, ResolveFileSystem(fileSystem))
}
