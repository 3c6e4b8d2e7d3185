package prworkflow

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/githubapi"
	"github.com/temirov/repos/internal/gitrepo"
)

const (
	// DefaultTitleConstant is the configured fallback pull request title.
	DefaultTitleConstant = "Automated changes"
	// BranchNamePrefixConstant prefixes generated branch names.
	BranchNamePrefixConstant = "automated-changes"

	branchSuffixLengthConstant             = 6
	branchNameSeparatorConstant            = "-"
	uuidSeparatorConstant                  = "-"
	gitOperationsNotConfiguredMessage      = "pull request workflow git operations not configured"
	pullRequestCreatorNotConfiguredMessage = "pull request workflow creator not configured"
	logFieldRepositoryConstant             = "repository"
	logFieldStateConstant                  = "state"
	logFieldBranchConstant                 = "branch"
	logFieldPullRequestURLConstant         = "pull_request_url"
	stateReachedMessageConstant            = "pull request workflow advanced"
)

var (
	// ErrGitOperationsNotConfigured indicates the workflow was built without git operations.
	ErrGitOperationsNotConfigured = errors.New(gitOperationsNotConfiguredMessage)
	// ErrPullRequestCreatorNotConfigured indicates the workflow was built without a pull request creator.
	ErrPullRequestCreatorNotConfigured = errors.New(pullRequestCreatorNotConfiguredMessage)
)

// GitOperations is the subset of gitrepo.RepositoryManager the workflow drives.
type GitOperations interface {
	HasChanges(executionContext context.Context, repositoryPath string) (bool, error)
	CreateAndCheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	AddAll(executionContext context.Context, repositoryPath string) error
	Commit(executionContext context.Context, repositoryPath string, message string) error
	Push(executionContext context.Context, repositoryPath string, branchName string) error
	DefaultBranch(executionContext context.Context, repositoryPath string) string
}

// PullRequestCreator opens pull requests on the hosting service.
type PullRequestCreator interface {
	CreatePullRequest(executionContext context.Context, owner string, repository string, parameters githubapi.PullRequestParameters) (githubapi.PullRequest, error)
}

// BranchNameGenerator produces a branch name when the caller supplies none.
type BranchNameGenerator func() string

// Options configures one workflow run.
type Options struct {
	Title         string
	Body          string
	BranchName    string
	BaseBranch    string
	CommitMessage string
	Draft         bool
	CreateOnly    bool
}

// Workflow runs the pull request state machine for one repository at a time.
type Workflow struct {
	git                 GitOperations
	creator             PullRequestCreator
	branchNameGenerator BranchNameGenerator
	logger              *zap.Logger
}

// NewWorkflow validates collaborators and constructs a Workflow. A nil creator is
// accepted because create-only runs never reach the API.
func NewWorkflow(git GitOperations, creator PullRequestCreator, branchNameGenerator BranchNameGenerator, logger *zap.Logger) (*Workflow, error) {
	if git == nil {
		return nil, ErrGitOperationsNotConfigured
	}
	if branchNameGenerator == nil {
		branchNameGenerator = GenerateBranchName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{git: git, creator: creator, branchNameGenerator: branchNameGenerator, logger: logger}, nil
}

// GenerateBranchName returns automated-changes-<six hex characters>.
func GenerateBranchName() string {
	simpleIdentifier := strings.ReplaceAll(uuid.NewString(), uuidSeparatorConstant, "")
	return BranchNamePrefixConstant + branchNameSeparatorConstant + simpleIdentifier[:branchSuffixLengthConstant]
}

// Execute drives the record's checkout through the workflow. The returned Outcome
// reflects the last state reached, including when an error stops the run.
func (workflow *Workflow) Execute(executionContext context.Context, record fleet.RepositoryRecord, options Options) (Outcome, error) {
	repositoryPath := record.TargetDirectory()
	outcome := Outcome{FinalState: StateStarted}

	hasChanges, statusError := workflow.git.HasChanges(executionContext, repositoryPath)
	if statusError != nil {
		return outcome, statusError
	}
	if !hasChanges {
		return workflow.advance(record, outcome, StateNoChanges), nil
	}

	branchName := strings.TrimSpace(options.BranchName)
	if len(branchName) == 0 {
		branchName = workflow.branchNameGenerator()
	}
	if branchError := workflow.git.CreateAndCheckoutBranch(executionContext, repositoryPath, branchName); branchError != nil {
		return outcome, branchError
	}
	outcome.BranchName = branchName
	outcome = workflow.advance(record, outcome, StateBranchCreated)

	if addError := workflow.git.AddAll(executionContext, repositoryPath); addError != nil {
		return outcome, addError
	}
	commitMessage := options.CommitMessage
	if len(strings.TrimSpace(commitMessage)) == 0 {
		commitMessage = options.Title
	}
	if commitError := workflow.git.Commit(executionContext, repositoryPath, commitMessage); commitError != nil {
		return outcome, commitError
	}
	outcome = workflow.advance(record, outcome, StateCommitted)

	if options.CreateOnly {
		return outcome, nil
	}

	if pushError := workflow.git.Push(executionContext, repositoryPath, branchName); pushError != nil {
		return outcome, pushError
	}
	outcome = workflow.advance(record, outcome, StatePushed)

	owner, repositoryName, parseError := gitrepo.ParseRepositoryURL(record.URL)
	if parseError != nil {
		return outcome, parseError
	}

	baseBranch := strings.TrimSpace(options.BaseBranch)
	if len(baseBranch) == 0 {
		baseBranch = workflow.git.DefaultBranch(executionContext, repositoryPath)
	}
	outcome.BaseBranch = baseBranch
	outcome = workflow.advance(record, outcome, StateBaseBranchResolved)

	if workflow.creator == nil {
		return outcome, ErrPullRequestCreatorNotConfigured
	}
	pullRequest, createError := workflow.creator.CreatePullRequest(executionContext, owner, repositoryName, githubapi.PullRequestParameters{
		Title: options.Title,
		Body:  options.Body,
		Head:  branchName,
		Base:  baseBranch,
		Draft: options.Draft,
	})
	if createError != nil {
		return outcome, createError
	}
	outcome.PullRequestURL = pullRequest.HTMLURL
	return workflow.advance(record, outcome, StatePullRequestCreated), nil
}

func (workflow *Workflow) advance(record fleet.RepositoryRecord, outcome Outcome, state State) Outcome {
	outcome.FinalState = state
	workflow.logger.Debug(
		stateReachedMessageConstant,
		zap.String(logFieldRepositoryConstant, record.Name),
		zap.String(logFieldStateConstant, state.String()),
		zap.String(logFieldBranchConstant, outcome.BranchName),
		zap.String(logFieldPullRequestURLConstant, outcome.PullRequestURL),
	)
	return outcome
}
