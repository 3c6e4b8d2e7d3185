package orchestration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/repos/internal/filter"
	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/prworkflow"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/runner"
)

const (
	noRepositoriesTemplateConstant          = "No repositories found with %s\n"
	repositoryLineTemplateConstant          = "%s | %s\n"
	repositoryErrorLineTemplateConstant     = "%s | Error: %v\n"
	doneLineTemplateConstant                = "%s\n"
	logMessageSucceededConstant             = "repository operation succeeded"
	logMessageFailedConstant                = "repository operation failed"
	logFieldRepositoryConstant              = "repository"
	logFieldOperationConstant               = "operation"
	logFieldDetailConstant                  = "detail"
	repositoryManagerNotConfiguredConstant  = "repository manager not configured"
	commandEngineNotConfiguredConstant      = "command engine not configured"
	pullRequestWorkflowNotConfiguredMessage = "pull request workflow not configured"
)

var (
	// ErrRepositoryManagerNotConfigured indicates clone or remove ran without a repository manager.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerNotConfiguredConstant)
	// ErrCommandEngineNotConfigured indicates run was invoked without an engine.
	ErrCommandEngineNotConfigured = errors.New(commandEngineNotConfiguredConstant)
	// ErrPullRequestWorkflowNotConfigured indicates pr was invoked without a workflow.
	ErrPullRequestWorkflowNotConfigured = errors.New(pullRequestWorkflowNotConfiguredMessage)
)

// RepositoryManager clones and removes checkouts.
type RepositoryManager interface {
	Clone(executionContext context.Context, record fleet.RepositoryRecord) (bool, error)
	Remove(record fleet.RepositoryRecord) error
}

// CommandEngine executes commands and recipes inside checkouts.
type CommandEngine interface {
	PrepareRunRoot(outputDirectory string, invocation runner.Invocation) (string, error)
	Capture(executionContext context.Context, record fleet.RepositoryRecord, invocation runner.Invocation, logRoot string) (runner.Result, error)
	Run(executionContext context.Context, record fleet.RepositoryRecord, invocation runner.Invocation) error
}

// PullRequestWorkflow turns local changes into a pull request.
type PullRequestWorkflow interface {
	Execute(executionContext context.Context, record fleet.RepositoryRecord, options prworkflow.Options) (prworkflow.Outcome, error)
}

// Dependencies wires the collaborators a Service uses. Only the collaborators of
// the operations actually invoked are required.
type Dependencies struct {
	Repositories RepositoryManager
	Engine       CommandEngine
	Workflow     PullRequestWorkflow
	Reporter     shared.Reporter
	Logger       *zap.Logger
}

// Request selects repositories from a loaded fleet.
type Request struct {
	Configuration fleet.Configuration
	Criteria      filter.Criteria
	Parallel      bool
}

// Service orchestrates fleet-wide operations.
type Service struct {
	repositories RepositoryManager
	engine       CommandEngine
	workflow     PullRequestWorkflow
	reporter     shared.Reporter
	logger       *zap.Logger
}

// NewService constructs a Service, defaulting the reporter to stdout and the logger to a no-op.
func NewService(dependencies Dependencies) *Service {
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(os.Stdout)
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repositories: dependencies.Repositories,
		engine:       dependencies.Engine,
		workflow:     dependencies.Workflow,
		reporter:     reporter,
		logger:       logger,
	}
}

// Select applies the request criteria with AND semantics for included tags.
func Select(request Request) []fleet.RepositoryRecord {
	return filter.SelectAll(request.Configuration.Repositories, request.Criteria)
}

type operationDescriptor struct {
	name          string
	startTemplate string
	doneMessage   string
}

type repositoryOperation func(executionContext context.Context, record fleet.RepositoryRecord) (string, error)

// execute runs operation for every selected record and renders the summary.
func (service *Service) execute(executionContext context.Context, request Request, descriptor operationDescriptor, prepare func() (repositoryOperation, error)) (Summary, error) {
	summary := Summary{Operation: descriptor.name}
	records := Select(request)
	if len(records) == 0 {
		service.reporter.Printf(noRepositoriesTemplateConstant, filter.DescribeCriteria(request.Criteria))
		return summary, nil
	}

	service.reporter.Printf(descriptor.startTemplate, len(records))
	operation, prepareError := prepare()
	if prepareError != nil {
		return summary, prepareError
	}

	summary.Results = service.fanOut(executionContext, records, request.Parallel, descriptor.name, operation)
	if summary.Failed() == 0 {
		service.reporter.Printf(doneLineTemplateConstant, descriptor.doneMessage)
	}
	summary.Render(service.reporter)
	return summary, summary.Err()
}

// fanOut returns one result per record in input order. Parallel mode starts one goroutine per record with no limit.
func (service *Service) fanOut(executionContext context.Context, records []fleet.RepositoryRecord, parallel bool, operationName string, operation repositoryOperation) []RepositoryResult {
	results := make([]RepositoryResult, len(records))
	if !parallel {
		for index, record := range records {
			results[index] = service.apply(executionContext, record, operationName, operation)
		}
		return results
	}

	var group errgroup.Group
	for index, record := range records {
		group.Go(func() error {
			results[index] = service.apply(executionContext, record, operationName, operation)
			return nil
		})
	}
	_ = group.Wait()
	return results
}

func (service *Service) apply(executionContext context.Context, record fleet.RepositoryRecord, operationName string, operation repositoryOperation) RepositoryResult {
	detail, operationError := operation(executionContext, record)
	if operationError != nil {
		service.reporter.Printf(repositoryErrorLineTemplateConstant, record.Name, operationError)
		service.logger.Warn(
			logMessageFailedConstant,
			zap.String(logFieldRepositoryConstant, record.Name),
			zap.String(logFieldOperationConstant, operationName),
			zap.Error(operationError),
		)
		return RepositoryResult{Name: record.Name, Err: operationError}
	}

	if len(strings.TrimSpace(detail)) > 0 {
		service.reporter.Printf(repositoryLineTemplateConstant, record.Name, detail)
	}
	service.logger.Info(
		logMessageSucceededConstant,
		zap.String(logFieldRepositoryConstant, record.Name),
		zap.String(logFieldOperationConstant, operationName),
		zap.String(logFieldDetailConstant, detail),
	)
	return RepositoryResult{Name: record.Name, Detail: detail}
}

func describeExitCode(exitCode int) string {
	return fmt.Sprintf(exitCodeDetailTemplateConstant, exitCode, runner.ClassifyExitCode(exitCode))
}
