package fleet

import "fmt"

// ValidationKind enumerates configuration validation failures.
type ValidationKind string

// Validation kinds reported by ValidationError.
const (
	ValidationKindEmptyRepositoryName     ValidationKind = "empty_repository_name"
	ValidationKindEmptyRepositoryURL      ValidationKind = "empty_repository_url"
	ValidationKindInvalidRepositoryURL    ValidationKind = "invalid_repository_url"
	ValidationKindDuplicateRepositoryName ValidationKind = "duplicate_repository_name"
	ValidationKindRecipeWithoutSteps      ValidationKind = "recipe_without_steps"
	ValidationKindEmptyRecipeName         ValidationKind = "empty_recipe_name"
	ValidationKindDuplicateRecipeName     ValidationKind = "duplicate_recipe_name"
)

const (
	emptyRepositoryNameTemplateConstant     = "Repository name cannot be empty: '%s'"
	emptyRepositoryURLTemplateConstant      = "Repository '%s' URL cannot be empty"
	invalidRepositoryURLTemplateConstant    = "Repository '%s' has invalid URL: '%s'"
	duplicateRepositoryNameTemplateConstant = "Duplicate repository name: '%s'"
	recipeWithoutStepsTemplateConstant      = "Recipe '%s' must contain at least one step"
	emptyRecipeNameMessageConstant          = "Recipe name cannot be empty"
	duplicateRecipeNameTemplateConstant     = "Duplicate recipe name: '%s'"
	unknownValidationTemplateConstant       = "invalid configuration: %s"
)

// ValidationError describes a single configuration violation.
type ValidationError struct {
	Kind    ValidationKind
	Subject string
	Value   string
}

// Error renders the violation.
func (validationError ValidationError) Error() string {
	switch validationError.Kind {
	case ValidationKindEmptyRepositoryName:
		return fmt.Sprintf(emptyRepositoryNameTemplateConstant, validationError.Subject)
	case ValidationKindEmptyRepositoryURL:
		return fmt.Sprintf(emptyRepositoryURLTemplateConstant, validationError.Subject)
	case ValidationKindInvalidRepositoryURL:
		return fmt.Sprintf(invalidRepositoryURLTemplateConstant, validationError.Subject, validationError.Value)
	case ValidationKindDuplicateRepositoryName:
		return fmt.Sprintf(duplicateRepositoryNameTemplateConstant, validationError.Subject)
	case ValidationKindRecipeWithoutSteps:
		return fmt.Sprintf(recipeWithoutStepsTemplateConstant, validationError.Subject)
	case ValidationKindEmptyRecipeName:
		return emptyRecipeNameMessageConstant
	case ValidationKindDuplicateRecipeName:
		return fmt.Sprintf(duplicateRecipeNameTemplateConstant, validationError.Subject)
	default:
		return fmt.Sprintf(unknownValidationTemplateConstant, validationError.Kind)
	}
}
