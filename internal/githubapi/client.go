package githubapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

const (
	userAgentPrefixConstant        = "repos/"
	developmentVersionConstant     = "dev"
	baseURLPathSuffixConstant      = "/"
	maximumReleasesPerPageConstant = 100
	requiredValueMessageConstant   = "value required"
	ownerFieldNameConstant         = "owner"
	repositoryFieldNameConstant    = "repository"
	titleFieldNameConstant         = "title"
	headFieldNameConstant          = "head"
	baseFieldNameConstant          = "base"
	baseURLFieldNameConstant       = "base_url"
	pullRequestNumberFieldConstant = "number"
	positiveNumberMessageConstant  = "must be positive"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	Token      string
	Version    string
	BaseURL    string
	HTTPClient *http.Client
}

// PullRequestParameters describes a pull request to open.
type PullRequestParameters struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// PullRequest contains the pull request fields fleet commands report.
type PullRequest struct {
	Number     int
	Title      string
	State      string
	HTMLURL    string
	HeadBranch string
	BaseBranch string
	Draft      bool
}

// PullRequestListOptions filters ListPullRequests.
type PullRequestListOptions struct {
	State string
	Base  string
}

// Repository contains repository metadata.
type Repository struct {
	FullName      string
	Description   string
	DefaultBranch string
	HTMLURL       string
	Private       bool
	Archived      bool
	Topics        []string
}

// Release contains release metadata.
type Release struct {
	TagName     string
	Name        string
	HTMLURL     string
	Draft       bool
	Prerelease  bool
	PublishedAt time.Time
}

// Client wraps go-github with the operations fleet commands need.
type Client struct {
	client        *github.Client
	authenticated bool
}

// UserAgent renders the User-Agent header value for version.
func UserAgent(version string) string {
	trimmedVersion := strings.TrimSpace(version)
	if len(trimmedVersion) == 0 {
		trimmedVersion = developmentVersionConstant
	}
	return userAgentPrefixConstant + trimmedVersion
}

// NewClient constructs a Client. Without a token only unauthenticated calls succeed.
func NewClient(options ClientOptions) (*Client, error) {
	httpClient := options.HTTPClient
	trimmedToken := strings.TrimSpace(options.Token)
	if len(trimmedToken) > 0 {
		baseContext := context.Background()
		if httpClient != nil {
			baseContext = context.WithValue(baseContext, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(baseContext, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken}))
	}

	githubClient := github.NewClient(httpClient)
	githubClient.UserAgent = UserAgent(options.Version)

	if trimmedBaseURL := strings.TrimSpace(options.BaseURL); len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, baseURLPathSuffixConstant) {
			trimmedBaseURL += baseURLPathSuffixConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: parseError.Error()}
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{client: githubClient, authenticated: len(trimmedToken) > 0}, nil
}

// IsAuthenticated reports whether a token was configured.
func (client *Client) IsAuthenticated() bool {
	return client.authenticated
}

// CreatePullRequest opens a pull request. It fails with ErrTokenRequired before any request when no token is configured.
func (client *Client) CreatePullRequest(executionContext context.Context, owner string, repository string, parameters PullRequestParameters) (PullRequest, error) {
	if !client.authenticated {
		return PullRequest{}, ErrTokenRequired
	}
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return PullRequest{}, validationError
	}
	requiredFields := []struct {
		name  string
		value string
	}{
		{name: titleFieldNameConstant, value: parameters.Title},
		{name: headFieldNameConstant, value: parameters.Head},
		{name: baseFieldNameConstant, value: parameters.Base},
	}
	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.value)) == 0 {
			return PullRequest{}, InvalidInputError{FieldName: requiredField.name, Message: requiredValueMessageConstant}
		}
	}

	newPullRequest := &github.NewPullRequest{
		Title: github.String(parameters.Title),
		Head:  github.String(parameters.Head),
		Base:  github.String(parameters.Base),
		Body:  github.String(parameters.Body),
		Draft: github.Bool(parameters.Draft),
	}
	createdPullRequest, _, createError := client.client.PullRequests.Create(executionContext, owner, repository, newPullRequest)
	if createError != nil {
		return PullRequest{}, classifyError(OperationCreatePullRequest, createError)
	}
	return convertPullRequest(createdPullRequest), nil
}

// GetPullRequest fetches a single pull request by number.
func (client *Client) GetPullRequest(executionContext context.Context, owner string, repository string, number int) (PullRequest, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return PullRequest{}, validationError
	}
	if number <= 0 {
		return PullRequest{}, InvalidInputError{FieldName: pullRequestNumberFieldConstant, Message: positiveNumberMessageConstant}
	}

	pullRequest, _, getError := client.client.PullRequests.Get(executionContext, owner, repository, number)
	if getError != nil {
		return PullRequest{}, classifyError(OperationGetPullRequest, getError)
	}
	return convertPullRequest(pullRequest), nil
}

// ListPullRequests lists pull requests filtered by state and base branch.
func (client *Client) ListPullRequests(executionContext context.Context, owner string, repository string, options PullRequestListOptions) ([]PullRequest, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.PullRequestListOptions{State: options.State, Base: options.Base}
	pullRequests, _, listError := client.client.PullRequests.List(executionContext, owner, repository, listOptions)
	if listError != nil {
		return nil, classifyError(OperationListPullRequests, listError)
	}

	converted := make([]PullRequest, 0, len(pullRequests))
	for _, pullRequest := range pullRequests {
		converted = append(converted, convertPullRequest(pullRequest))
	}
	return converted, nil
}

// GetRepository fetches repository metadata.
func (client *Client) GetRepository(executionContext context.Context, owner string, repository string) (Repository, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return Repository{}, validationError
	}

	githubRepository, _, getError := client.client.Repositories.Get(executionContext, owner, repository)
	if getError != nil {
		return Repository{}, classifyError(OperationGetRepository, getError)
	}
	return Repository{
		FullName:      githubRepository.GetFullName(),
		Description:   githubRepository.GetDescription(),
		DefaultBranch: githubRepository.GetDefaultBranch(),
		HTMLURL:       githubRepository.GetHTMLURL(),
		Private:       githubRepository.GetPrivate(),
		Archived:      githubRepository.GetArchived(),
		Topics:        append([]string(nil), githubRepository.Topics...),
	}, nil
}

// ListTopics returns the repository topics.
func (client *Client) ListTopics(executionContext context.Context, owner string, repository string) ([]string, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return nil, validationError
	}

	topics, _, listError := client.client.Repositories.ListAllTopics(executionContext, owner, repository)
	if listError != nil {
		return nil, classifyError(OperationListTopics, listError)
	}
	return topics, nil
}

// GetLatestRelease fetches the most recent published release.
func (client *Client) GetLatestRelease(executionContext context.Context, owner string, repository string) (Release, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return Release{}, validationError
	}

	release, _, getError := client.client.Repositories.GetLatestRelease(executionContext, owner, repository)
	if getError != nil {
		return Release{}, classifyError(OperationGetLatestRelease, getError)
	}
	return convertRelease(release), nil
}

// ListReleases lists one page of releases. perPage is capped at 100; zero values use the API defaults.
func (client *Client) ListReleases(executionContext context.Context, owner string, repository string, perPage int, page int) ([]Release, error) {
	if validationError := validateRepositoryCoordinates(owner, repository); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.ListOptions{PerPage: CapReleasesPerPage(perPage), Page: page}
	releases, _, listError := client.client.Repositories.ListReleases(executionContext, owner, repository, listOptions)
	if listError != nil {
		return nil, classifyError(OperationListReleases, listError)
	}

	converted := make([]Release, 0, len(releases))
	for _, release := range releases {
		converted = append(converted, convertRelease(release))
	}
	return converted, nil
}

// CapReleasesPerPage clamps a page size to the API maximum.
func CapReleasesPerPage(perPage int) int {
	if perPage > maximumReleasesPerPageConstant {
		return maximumReleasesPerPageConstant
	}
	if perPage < 0 {
		return 0
	}
	return perPage
}

func validateRepositoryCoordinates(owner string, repository string) error {
	if len(strings.TrimSpace(owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repository)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func convertPullRequest(pullRequest *github.PullRequest) PullRequest {
	return PullRequest{
		Number:     pullRequest.GetNumber(),
		Title:      pullRequest.GetTitle(),
		State:      pullRequest.GetState(),
		HTMLURL:    pullRequest.GetHTMLURL(),
		HeadBranch: pullRequest.GetHead().GetRef(),
		BaseBranch: pullRequest.GetBase().GetRef(),
		Draft:      pullRequest.GetDraft(),
	}
}

func convertRelease(release *github.RepositoryRelease) Release {
	return Release{
		TagName:     release.GetTagName(),
		Name:        release.GetName(),
		HTMLURL:     release.GetHTMLURL(),
		Draft:       release.GetDraft(),
		Prerelease:  release.GetPrerelease(),
		PublishedAt: release.GetPublishedAt().Time,
	}
}
