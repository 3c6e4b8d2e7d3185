package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/prworkflow"
	"github.com/temirov/repos/internal/runner"
)

const (
	cloneOperationNameConstant       = "clone"
	removeOperationNameConstant      = "removal"
	runOperationNameConstant         = "run"
	pullRequestOperationNameConstant = "pull request"

	cloneStartTemplateConstant       = "Cloning %d repositories...\n"
	removeStartTemplateConstant      = "Removing %d repositories...\n"
	runStartTemplateConstant         = "Running in %d repositories...\n"
	pullRequestStartTemplateConstant = "Checking %d repositories for changes...\n"

	cloneDoneMessageConstant       = "Done cloning repositories"
	removeDoneMessageConstant      = "Done removing repositories"
	runDoneMessageConstant         = "Done running commands"
	pullRequestDoneMessageConstant = "Done processing pull requests"

	clonedDetailConstant              = "Successfully cloned"
	cloneSkippedDetailConstant        = "Repository directory already exists, skipping"
	removedDetailConstant             = "Removed"
	noChangesDetailConstant           = "No changes detected"
	committedDetailTemplateConstant   = "Changes committed to branch %s"
	pullRequestDetailTemplateConstant = "Pull request created: %s"
	exitCodeDetailTemplateConstant    = "exit code %d (%s)"
	runLogsTemplateConstant           = "Saving output to %s\n"
	recipeNotFoundTemplateConstant    = "Recipe '%s' not found"
)

// RecipeNotFoundError reports a recipe name absent from the fleet configuration.
type RecipeNotFoundError struct {
	Name string
}

// Error names the missing recipe.
func (notFoundError RecipeNotFoundError) Error() string {
	return fmt.Sprintf(recipeNotFoundTemplateConstant, notFoundError.Name)
}

// RunOptions configures Service.Run. Exactly one of CommandLine and RecipeName is expected.
type RunOptions struct {
	CommandLine     string
	RecipeName      string
	OutputDirectory string
	NoSave          bool
}

// Clone checks out every selected repository. Existing checkouts are skipped and count as successes.
func (service *Service) Clone(executionContext context.Context, request Request) (Summary, error) {
	descriptor := operationDescriptor{name: cloneOperationNameConstant, startTemplate: cloneStartTemplateConstant, doneMessage: cloneDoneMessageConstant}
	return service.execute(executionContext, request, descriptor, func() (repositoryOperation, error) {
		if service.repositories == nil {
			return nil, ErrRepositoryManagerNotConfigured
		}
		return func(executionContext context.Context, record fleet.RepositoryRecord) (string, error) {
			cloned, cloneError := service.repositories.Clone(executionContext, record)
			if cloneError != nil {
				return "", cloneError
			}
			if !cloned {
				return cloneSkippedDetailConstant, nil
			}
			return clonedDetailConstant, nil
		}, nil
	})
}

// Remove deletes every selected checkout. A missing directory counts as a failure.
func (service *Service) Remove(executionContext context.Context, request Request) (Summary, error) {
	descriptor := operationDescriptor{name: removeOperationNameConstant, startTemplate: removeStartTemplateConstant, doneMessage: removeDoneMessageConstant}
	return service.execute(executionContext, request, descriptor, func() (repositoryOperation, error) {
		if service.repositories == nil {
			return nil, ErrRepositoryManagerNotConfigured
		}
		return func(_ context.Context, record fleet.RepositoryRecord) (string, error) {
			if removeError := service.repositories.Remove(record); removeError != nil {
				return "", removeError
			}
			return removedDetailConstant, nil
		}, nil
	})
}

// Run executes a command line or a named recipe in every selected checkout. Unless
// NoSave is set, output is captured under a fresh run root and a non-zero exit
// fails the repository.
func (service *Service) Run(executionContext context.Context, request Request, options RunOptions) (Summary, error) {
	if service.engine == nil {
		return Summary{Operation: runOperationNameConstant}, ErrCommandEngineNotConfigured
	}

	var invocation runner.Invocation = runner.CommandInvocation{CommandLine: options.CommandLine}
	if recipeName := strings.TrimSpace(options.RecipeName); len(recipeName) > 0 {
		recipe, found := request.Configuration.FindRecipe(recipeName)
		if !found {
			return Summary{Operation: runOperationNameConstant}, RecipeNotFoundError{Name: recipeName}
		}
		invocation = runner.RecipeInvocation{Recipe: recipe}
	}

	descriptor := operationDescriptor{name: runOperationNameConstant, startTemplate: runStartTemplateConstant, doneMessage: runDoneMessageConstant}
	return service.execute(executionContext, request, descriptor, func() (repositoryOperation, error) {
		if options.NoSave {
			return func(executionContext context.Context, record fleet.RepositoryRecord) (string, error) {
				if runError := service.engine.Run(executionContext, record, invocation); runError != nil {
					return "", runError
				}
				return describeExitCode(0), nil
			}, nil
		}

		runRoot, prepareError := service.engine.PrepareRunRoot(options.OutputDirectory, invocation)
		if prepareError != nil {
			return nil, prepareError
		}
		service.reporter.Printf(runLogsTemplateConstant, runRoot)
		return func(executionContext context.Context, record fleet.RepositoryRecord) (string, error) {
			result, captureError := service.engine.Capture(executionContext, record, invocation, runRoot)
			if captureError != nil {
				return "", captureError
			}
			if result.ExitCode != 0 {
				return "", runner.CommandExitError{ExitCode: result.ExitCode}
			}
			return describeExitCode(result.ExitCode), nil
		}, nil
	})
}

// PullRequests runs the pull request workflow in every selected checkout.
func (service *Service) PullRequests(executionContext context.Context, request Request, options prworkflow.Options) (Summary, error) {
	descriptor := operationDescriptor{name: pullRequestOperationNameConstant, startTemplate: pullRequestStartTemplateConstant, doneMessage: pullRequestDoneMessageConstant}
	return service.execute(executionContext, request, descriptor, func() (repositoryOperation, error) {
		if service.workflow == nil {
			return nil, ErrPullRequestWorkflowNotConfigured
		}
		return func(executionContext context.Context, record fleet.RepositoryRecord) (string, error) {
			outcome, workflowError := service.workflow.Execute(executionContext, record, options)
			if workflowError != nil {
				return "", workflowError
			}
			switch outcome.FinalState {
			case prworkflow.StateNoChanges:
				return noChangesDetailConstant, nil
			case prworkflow.StatePullRequestCreated:
				return fmt.Sprintf(pullRequestDetailTemplateConstant, outcome.PullRequestURL), nil
			default:
				return fmt.Sprintf(committedDetailTemplateConstant, outcome.BranchName), nil
			}
		}, nil
	})
}
