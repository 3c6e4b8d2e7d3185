package repos

import (
	"github.com/spf13/cobra"

	"github.com/temirov/repos/internal/githubapi"
	"github.com/temirov/repos/internal/githubauth"
	"github.com/temirov/repos/internal/orchestration"
	"github.com/temirov/repos/internal/prworkflow"
	"github.com/temirov/repos/internal/repos/dependencies"
	"github.com/temirov/repos/internal/repos/shared"
	"github.com/temirov/repos/internal/utils/flags"
)

const (
	pullRequestUseConstant              = "pr [repository ...]"
	pullRequestShortDescriptionConstant = "Commit local changes and open pull requests"
	pullRequestLongDescriptionConstant  = "pr commits pending changes in every selected checkout to a new branch, pushes it to origin and opens a GitHub pull request against the base branch."
	titleFlagNameConstant               = "title"
	titleFlagUsageConstant              = "Pull request title"
	bodyFlagNameConstant                = "body"
	bodyFlagUsageConstant               = "Pull request body"
	branchFlagNameConstant              = "branch"
	branchFlagUsageConstant             = "Branch name to create (default automated-changes-<suffix>)"
	baseFlagNameConstant                = "base"
	baseFlagUsageConstant               = "Base branch (default: the repository default branch)"
	messageFlagNameConstant             = "message"
	messageFlagUsageConstant            = "Commit message (default: the title)"
	draftFlagNameConstant               = "draft"
	draftFlagUsageConstant              = "Open pull requests as drafts"
	createOnlyFlagNameConstant          = "create-only"
	createOnlyFlagUsageConstant         = "Commit and push without opening pull requests"
	tokenFlagNameConstant               = "token"
	tokenFlagUsageConstant              = "GitHub token (default: GITHUB_TOKEN, GH_TOKEN or GITHUB_API_TOKEN)"
	environmentFileFlagNameConstant     = "env-file"
	environmentFileFlagUsageConstant    = "Dotenv file consulted for the GitHub token"
)

// PullRequestCreatorFactory builds the API client used to open pull requests.
type PullRequestCreatorFactory func(options githubapi.ClientOptions) (prworkflow.PullRequestCreator, error)

// PullRequestCommandBuilder assembles the pr command.
type PullRequestCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            shared.FileSystem
	CreatorFactory        PullRequestCreatorFactory
	BranchNameGenerator   prworkflow.BranchNameGenerator
	Version               string
}

type pullRequestFlags struct {
	title           string
	body            string
	branchName      string
	baseBranch      string
	commitMessage   string
	draft           bool
	createOnly      bool
	token           string
	environmentFile string
}

// Build constructs the pr command.
func (builder *PullRequestCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pullRequestUseConstant,
		Short: pullRequestShortDescriptionConstant,
		Long:  pullRequestLongDescriptionConstant,
	}
	selection := flags.BindSelectionFlags(command.Flags())
	options := &pullRequestFlags{}
	command.Flags().StringVar(&options.title, titleFlagNameConstant, "", titleFlagUsageConstant)
	command.Flags().StringVar(&options.body, bodyFlagNameConstant, "", bodyFlagUsageConstant)
	command.Flags().StringVar(&options.branchName, branchFlagNameConstant, "", branchFlagUsageConstant)
	command.Flags().StringVar(&options.baseBranch, baseFlagNameConstant, "", baseFlagUsageConstant)
	command.Flags().StringVar(&options.commitMessage, messageFlagNameConstant, "", messageFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &options.draft, draftFlagNameConstant, "", false, draftFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &options.createOnly, createOnlyFlagNameConstant, "", false, createOnlyFlagUsageConstant)
	command.Flags().StringVar(&options.token, tokenFlagNameConstant, "", tokenFlagUsageConstant)
	command.Flags().StringVar(&options.environmentFile, environmentFileFlagNameConstant, "", environmentFileFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, selection, options, arguments)
	}
	return command, nil
}

func (builder *PullRequestCommandBuilder) run(command *cobra.Command, selection *flags.SelectionFlags, options *pullRequestFlags, arguments []string) error {
	flagSet := command.Flags()
	if validationError := validateBranchName(options.branchName, flagSet.Changed(branchFlagNameConstant)); validationError != nil {
		return validationError
	}
	if validationError := validateCommitMessage(options.commitMessage, flagSet.Changed(messageFlagNameConstant)); validationError != nil {
		return validationError
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	environmentFile := configuration.EnvFile
	if flagSet.Changed(environmentFileFlagNameConstant) {
		environmentFile = repositoryHomeDirectoryExpander.Expand(options.environmentFile)
	}
	token, tokenFound, tokenError := githubauth.Resolve(options.token, environmentFile)
	if tokenError != nil {
		return tokenError
	}
	if validationError := validatePullRequestToken(tokenFound, options.createOnly); validationError != nil {
		return validationError
	}

	request, requestError := buildRequest(selection, configuration, arguments)
	if requestError != nil {
		return requestError
	}

	logger := resolveLogger(builder.LoggerProvider)
	repositoryManager, managerError := dependencies.ResolveGitRepositoryManager(builder.GitExecutor, builder.FileSystem, logger)
	if managerError != nil {
		return managerError
	}

	var creator prworkflow.PullRequestCreator
	if tokenFound {
		builtCreator, creatorError := builder.creatorFactory()(githubapi.ClientOptions{
			Token:   token,
			Version: builder.Version,
			BaseURL: configuration.PullRequest.APIBaseURL,
		})
		if creatorError != nil {
			return creatorError
		}
		creator = builtCreator
	}

	workflow, workflowError := prworkflow.NewWorkflow(repositoryManager, creator, builder.BranchNameGenerator, logger)
	if workflowError != nil {
		return workflowError
	}

	service := orchestration.NewService(orchestration.Dependencies{
		Workflow: workflow,
		Reporter: commandReporter(command),
		Logger:   logger,
	})
	_, pullRequestError := service.PullRequests(command.Context(), request, builder.workflowOptions(flagSet.Changed, options, configuration.PullRequest))
	return pullRequestError
}

// workflowOptions layers explicit flags over the configured pull request defaults.
func (builder *PullRequestCommandBuilder) workflowOptions(changed func(string) bool, options *pullRequestFlags, configured PullRequestConfiguration) prworkflow.Options {
	workflowOptions := prworkflow.Options{
		Title:         configured.Title,
		Body:          configured.Body,
		BranchName:    options.branchName,
		BaseBranch:    configured.BaseBranch,
		CommitMessage: configured.CommitMessage,
		Draft:         configured.Draft,
		CreateOnly:    options.createOnly,
	}
	if changed(titleFlagNameConstant) {
		workflowOptions.Title = options.title
	}
	if changed(bodyFlagNameConstant) {
		workflowOptions.Body = options.body
	}
	if changed(baseFlagNameConstant) {
		workflowOptions.BaseBranch = options.baseBranch
	}
	if changed(messageFlagNameConstant) {
		workflowOptions.CommitMessage = options.commitMessage
	}
	if changed(draftFlagNameConstant) {
		workflowOptions.Draft = options.draft
	}
	return workflowOptions
}

func (builder *PullRequestCommandBuilder) creatorFactory() PullRequestCreatorFactory {
	if builder.CreatorFactory != nil {
		return builder.CreatorFactory
	}
	return func(options githubapi.ClientOptions) (prworkflow.PullRequestCreator, error) {
		client, clientError := githubapi.NewClient(options)
		if clientError != nil {
			return nil, clientError
		}
		return client, nil
	}
}
