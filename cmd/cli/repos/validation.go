package repos

import (
	"fmt"
	"strings"
)

const (
	mutualExclusivityTemplateConstant   = "Cannot specify both %s and %s"
	missingRequiredTemplateConstant     = "%s is required"
	missingAlternativesTemplateConstant = "Either %s or %s must be provided"
	invalidValueTemplateConstant        = "Invalid value '%s' for %s: %s"
	emptyCollectionTemplateConstant     = "%s cannot be empty"
	alternativesSeparatorConstant       = ", "
	commandArgumentConstant             = "command"
	aCommandArgumentConstant            = "a command"
	recipeFlagArgumentConstant          = "--recipe"
	tokenFlagArgumentConstant           = "--token"
	tokenEnvironmentArgumentConstant    = "GITHUB_TOKEN environment variable"
	githubTokenArgumentConstant         = "GitHub token"
	tagArgumentConstant                 = "tag"
	tagEmptyReasonConstant              = "tag cannot be empty or whitespace only"
	repositoryNameArgumentConstant      = "repository name"
	repositoryNameEmptyReasonConstant   = "repository name cannot be empty or whitespace only"
	outputDirectoryArgumentConstant     = "output-dir"
	outputDirectoryEmptyReasonConstant  = "output directory cannot be empty or whitespace only"
	branchArgumentConstant              = "branch"
	branchEmptyReasonConstant           = "branch name cannot be empty or whitespace only"
	branchFormatReasonConstant          = "invalid Git branch name format"
	commitMessageArgumentConstant       = "commit message"
	commitMessageEmptyReasonConstant    = "commit message cannot be empty or whitespace only"
	branchForbiddenPrefixConstant       = "-"
	branchForbiddenSuffixConstant       = "."
	branchForbiddenSequenceConstant     = ".."
)

// ValidationKind classifies a CommandValidationError.
type ValidationKind string

// Validation kinds.
const (
	ValidationKindMutualExclusivity ValidationKind = "mutual_exclusivity"
	ValidationKindMissingRequired   ValidationKind = "missing_required"
	ValidationKindInvalidValue      ValidationKind = "invalid_value"
	ValidationKindEmptyCollection   ValidationKind = "empty_collection"
)

// CommandValidationError describes a command-line argument rejected before any repository is touched.
type CommandValidationError struct {
	Kind         ValidationKind
	Argument     string
	Other        string
	Alternatives []string
	Value        string
	Reason       string
}

// Error renders the violation.
func (validationError CommandValidationError) Error() string {
	switch validationError.Kind {
	case ValidationKindMutualExclusivity:
		return fmt.Sprintf(mutualExclusivityTemplateConstant, validationError.Argument, validationError.Other)
	case ValidationKindMissingRequired:
		if len(validationError.Alternatives) == 0 {
			return fmt.Sprintf(missingRequiredTemplateConstant, validationError.Argument)
		}
		return fmt.Sprintf(missingAlternativesTemplateConstant, strings.Join(validationError.Alternatives, alternativesSeparatorConstant), validationError.Argument)
	case ValidationKindInvalidValue:
		return fmt.Sprintf(invalidValueTemplateConstant, validationError.Value, validationError.Argument, validationError.Reason)
	default:
		return fmt.Sprintf(emptyCollectionTemplateConstant, validationError.Argument)
	}
}

// validateRunArguments requires exactly one of a command line and a recipe name.
func validateRunArguments(commandLine string, recipeName string, recipeProvided bool) error {
	commandProvided := len(strings.TrimSpace(commandLine)) > 0
	switch {
	case commandProvided && recipeProvided:
		return CommandValidationError{Kind: ValidationKindMutualExclusivity, Argument: commandArgumentConstant, Other: recipeFlagArgumentConstant}
	case !commandProvided && !recipeProvided:
		return CommandValidationError{Kind: ValidationKindMissingRequired, Argument: aCommandArgumentConstant, Alternatives: []string{recipeFlagArgumentConstant}}
	case recipeProvided && len(strings.TrimSpace(recipeName)) == 0:
		return CommandValidationError{Kind: ValidationKindEmptyCollection, Argument: recipeFlagArgumentConstant}
	default:
		return nil
	}
}

// validatePullRequestToken requires a token unless the run stops after pushing.
func validatePullRequestToken(tokenFound bool, createOnly bool) error {
	if tokenFound || createOnly {
		return nil
	}
	return CommandValidationError{
		Kind:         ValidationKindMissingRequired,
		Argument:     githubTokenArgumentConstant,
		Alternatives: []string{tokenFlagArgumentConstant, tokenEnvironmentArgumentConstant},
	}
}

func validateTagFilters(tags []string) error {
	return firstBlankValue(tags, tagArgumentConstant, tagEmptyReasonConstant)
}

func validateRepositoryNames(names []string) error {
	return firstBlankValue(names, repositoryNameArgumentConstant, repositoryNameEmptyReasonConstant)
}

func validateOutputDirectory(outputDirectory string, provided bool) error {
	if provided && len(strings.TrimSpace(outputDirectory)) == 0 {
		return invalidValue(outputDirectoryArgumentConstant, outputDirectory, outputDirectoryEmptyReasonConstant)
	}
	return nil
}

// validateBranchName applies the basic git branch rules: no leading dash, no trailing dot and no "..".
func validateBranchName(branchName string, provided bool) error {
	if !provided {
		return nil
	}
	if len(strings.TrimSpace(branchName)) == 0 {
		return invalidValue(branchArgumentConstant, branchName, branchEmptyReasonConstant)
	}
	if strings.HasPrefix(branchName, branchForbiddenPrefixConstant) ||
		strings.HasSuffix(branchName, branchForbiddenSuffixConstant) ||
		strings.Contains(branchName, branchForbiddenSequenceConstant) {
		return invalidValue(branchArgumentConstant, branchName, branchFormatReasonConstant)
	}
	return nil
}

func validateCommitMessage(message string, provided bool) error {
	if provided && len(strings.TrimSpace(message)) == 0 {
		return invalidValue(commitMessageArgumentConstant, message, commitMessageEmptyReasonConstant)
	}
	return nil
}

func firstBlankValue(values []string, argument string, reason string) error {
	for _, value := range values {
		if len(strings.TrimSpace(value)) == 0 {
			return invalidValue(argument, value, reason)
		}
	}
	return nil
}

func invalidValue(argument string, value string, reason string) error {
	return CommandValidationError{Kind: ValidationKindInvalidValue, Argument: argument, Value: value, Reason: reason}
}
