package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/repos/internal/execshell"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/shared"
)

const (
	gitCloneSubcommandConstant             = "clone"
	gitBranchFlagConstant                  = "-b"
	gitStatusSubcommandConstant            = "status"
	gitPorcelainFlagConstant               = "--porcelain"
	gitCheckoutSubcommandConstant          = "checkout"
	gitAddSubcommandConstant               = "add"
	gitAddEverythingArgumentConstant       = "."
	gitCommitSubcommandConstant            = "commit"
	gitMessageFlagConstant                 = "-m"
	gitPushSubcommandConstant              = "push"
	gitSetUpstreamFlagConstant             = "--set-upstream"
	gitSymbolicRefSubcommandConstant       = "symbolic-ref"
	gitOriginHeadReferenceConstant         = "refs/remotes/origin/HEAD"
	gitOriginReferencePrefixConstant       = "refs/remotes/origin/"
	gitBranchSubcommandConstant            = "branch"
	gitShowCurrentFlagConstant             = "--show-current"
	gitRemoteSubcommandConstant            = "remote"
	gitGetURLSubcommandConstant            = "get-url"
	fallbackBranchNameConstant             = "main"
	executorNotConfiguredMessageConstant   = "git executor not configured"
	fileSystemNotConfiguredMessageConstant = "filesystem not configured"
)

// ErrGitExecutorNotConfigured indicates a RepositoryManager was built without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// ErrFileSystemNotConfigured indicates a RepositoryManager was built without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemNotConfiguredMessageConstant)

// RepositoryManager performs the git operations fleet commands rely on.
type RepositoryManager struct {
	executor   shared.GitExecutor
	fileSystem shared.FileSystem
}

// NewRepositoryManager validates dependencies and constructs a RepositoryManager.
func NewRepositoryManager(executor shared.GitExecutor, fileSystem shared.FileSystem) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &RepositoryManager{executor: executor, fileSystem: fileSystem}, nil
}

// Clone checks out the record into its target directory. It returns false without touching
// the disk when the target already exists.
func (manager *RepositoryManager) Clone(executionContext context.Context, record fleet.RepositoryRecord) (bool, error) {
	targetDirectory := record.TargetDirectory()
	if manager.exists(targetDirectory) {
		return false, nil
	}

	arguments := []string{gitCloneSubcommandConstant}
	if branch := strings.TrimSpace(record.Branch); len(branch) > 0 {
		arguments = append(arguments, gitBranchFlagConstant, branch)
	}
	arguments = append(arguments, record.URL, targetDirectory)

	if _, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments}); executionError != nil {
		return false, newOperationError(OperationClone, executionError)
	}
	return true, nil
}

// Remove deletes the record's checkout from disk.
func (manager *RepositoryManager) Remove(record fleet.RepositoryRecord) error {
	targetDirectory := record.TargetDirectory()
	if !manager.exists(targetDirectory) {
		return shared.RepositoryDirectoryMissingError{Directory: targetDirectory}
	}
	if removeError := manager.fileSystem.RemoveAll(targetDirectory); removeError != nil {
		return OperationError{Operation: OperationRemove, Cause: removeError}
	}
	return nil
}

// HasChanges reports whether git status lists any modified or untracked path.
func (manager *RepositoryManager) HasChanges(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executeIn(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return false, newOperationError(OperationStatus, executionError)
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) > 0, nil
}

// CreateAndCheckoutBranch creates branchName from the current HEAD and switches to it.
func (manager *RepositoryManager) CreateAndCheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	if _, executionError := manager.executeIn(executionContext, repositoryPath, gitCheckoutSubcommandConstant, gitBranchFlagConstant, branchName); executionError != nil {
		operationError := newOperationError(OperationCreateBranch, executionError)
		operationError.Subject = branchName
		return operationError
	}
	return nil
}

// AddAll stages every change in the working tree.
func (manager *RepositoryManager) AddAll(executionContext context.Context, repositoryPath string) error {
	if _, executionError := manager.executeIn(executionContext, repositoryPath, gitAddSubcommandConstant, gitAddEverythingArgumentConstant); executionError != nil {
		return newOperationError(OperationAdd, executionError)
	}
	return nil
}

// Commit records the staged changes with message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	if _, executionError := manager.executeIn(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return newOperationError(OperationCommit, executionError)
	}
	return nil
}

// Push publishes branchName to origin and records it as the upstream.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, branchName string) error {
	if _, executionError := manager.executeIn(executionContext, repositoryPath, gitPushSubcommandConstant, gitSetUpstreamFlagConstant, shared.OriginRemoteNameConstant, branchName); executionError != nil {
		return newOperationError(OperationPush, executionError)
	}
	return nil
}

// DefaultBranch resolves origin's HEAD, then the current branch, then falls back to main.
func (manager *RepositoryManager) DefaultBranch(executionContext context.Context, repositoryPath string) string {
	symbolicResult, symbolicError := manager.executeIn(executionContext, repositoryPath, gitSymbolicRefSubcommandConstant, gitOriginHeadReferenceConstant)
	if symbolicError == nil {
		reference := strings.TrimSpace(symbolicResult.StandardOutput)
		if strings.HasPrefix(reference, gitOriginReferencePrefixConstant) {
			return strings.TrimPrefix(reference, gitOriginReferencePrefixConstant)
		}
	}

	currentResult, currentError := manager.executeIn(executionContext, repositoryPath, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
	if currentError == nil {
		if currentBranch := strings.TrimSpace(currentResult.StandardOutput); len(currentBranch) > 0 {
			return currentBranch
		}
	}

	return fallbackBranchNameConstant
}

// RemoteURL returns the configured URL of remoteName.
func (manager *RepositoryManager) RemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executeIn(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, remoteName)
	if executionError != nil {
		return "", newOperationError(OperationRemoteURL, executionError)
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

func (manager *RepositoryManager) executeIn(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: arguments, WorkingDirectory: repositoryPath})
}

func (manager *RepositoryManager) exists(path string) bool {
	_, statError := manager.fileSystem.Stat(path)
	return statError == nil
}
