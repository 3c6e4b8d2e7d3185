// Package githubauth resolves the GitHub token used for pull request creation.
package githubauth
