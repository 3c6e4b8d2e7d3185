package fleet

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFleetFileName is the fleet file consulted when none is specified.
	DefaultFleetFileName = "repos.yaml"

	fleetFilePathRequiredMessageConstant    = "fleet configuration path must be provided"
	fleetFileReadErrorTemplateConstant      = "failed to read fleet configuration: %w"
	fleetFileParseErrorTemplateConstant     = "failed to parse fleet configuration: %w"
	fleetFileEncodeErrorTemplateConstant    = "failed to encode fleet configuration: %w"
	fleetFileWriteErrorTemplateConstant     = "failed to write fleet configuration: %w"
	repositoryAlreadyExistsTemplateConstant = "Repository '%s' already exists"
	yamlDocumentStartConstant               = "---\n"
	yamlIndentWidthConstant                 = 2
	fleetFilePermissionsConstant            = 0o644
)

// Recipe is a named, ordered list of shell steps executed as one script.
type Recipe struct {
	Name  string   `yaml:"name" json:"name"`
	Steps []string `yaml:"steps" json:"steps"`
}

// Configuration is the loaded fleet: repositories plus recipes.
type Configuration struct {
	Repositories []RepositoryRecord `yaml:"repositories" json:"repositories"`
	Recipes      []Recipe           `yaml:"recipes,omitempty" json:"recipes,omitempty"`
}

// LoadConfiguration reads, resolves, and validates the fleet file at filePath.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(fleetFilePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(fleetFileReadErrorTemplateConstant, readError)
	}

	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(fleetFileParseErrorTemplateConstant, unmarshalError)
	}

	baseDirectory := filepath.Dir(trimmedPath)
	for repositoryIndex := range configuration.Repositories {
		configuration.Repositories[repositoryIndex].SetBaseDirectory(baseDirectory)
	}

	if validationError := configuration.Validate(); validationError != nil {
		return Configuration{}, validationError
	}

	return configuration, nil
}

// Save writes the configuration to filePath as a YAML document.
func (configuration Configuration) Save(filePath string) error {
	var buffer bytes.Buffer
	buffer.WriteString(yamlDocumentStartConstant)

	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentWidthConstant)
	if encodeError := encoder.Encode(configuration); encodeError != nil {
		return fmt.Errorf(fleetFileEncodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(fleetFileEncodeErrorTemplateConstant, closeError)
	}

	if writeError := os.WriteFile(filePath, buffer.Bytes(), fleetFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(fleetFileWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// Validate reports every repository and recipe violation at once.
func (configuration Configuration) Validate() error {
	var validationError error

	seenRepositoryNames := make(map[string]struct{}, len(configuration.Repositories))
	for _, repository := range configuration.Repositories {
		if _, duplicate := seenRepositoryNames[repository.Name]; duplicate {
			validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindDuplicateRepositoryName, Subject: repository.Name})
			continue
		}
		seenRepositoryNames[repository.Name] = struct{}{}
	}
	for _, repository := range configuration.Repositories {
		validationError = multierr.Append(validationError, repository.Validate())
	}

	seenRecipeNames := make(map[string]struct{}, len(configuration.Recipes))
	for _, recipe := range configuration.Recipes {
		if len(recipe.Name) == 0 {
			validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindEmptyRecipeName})
		} else if _, duplicate := seenRecipeNames[recipe.Name]; duplicate {
			validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindDuplicateRecipeName, Subject: recipe.Name})
		} else {
			seenRecipeNames[recipe.Name] = struct{}{}
		}
		if len(recipe.Steps) == 0 {
			validationError = multierr.Append(validationError, ValidationError{Kind: ValidationKindRecipeWithoutSteps, Subject: recipe.Name})
		}
	}

	return validationError
}

// FindRecipe looks up a recipe by name.
func (configuration Configuration) FindRecipe(name string) (Recipe, bool) {
	for _, recipe := range configuration.Recipes {
		if recipe.Name == name {
			return recipe, true
		}
	}
	return Recipe{}, false
}

// FindRepository looks up a repository by name.
func (configuration Configuration) FindRepository(name string) (RepositoryRecord, bool) {
	for _, repository := range configuration.Repositories {
		if repository.Name == name {
			return repository, true
		}
	}
	return RepositoryRecord{}, false
}

// AddRepository appends a validated record whose name is not yet present.
func (configuration *Configuration) AddRepository(record RepositoryRecord) error {
	if _, exists := configuration.FindRepository(record.Name); exists {
		return fmt.Errorf(repositoryAlreadyExistsTemplateConstant, record.Name)
	}
	if validationError := record.Validate(); validationError != nil {
		return validationError
	}
	configuration.Repositories = append(configuration.Repositories, record)
	return nil
}

// AllTags returns every tag used across the fleet, sorted and deduplicated.
func (configuration Configuration) AllTags() []string {
	uniqueTags := make(map[string]struct{})
	for _, repository := range configuration.Repositories {
		for _, tag := range repository.Tags {
			uniqueTags[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(uniqueTags))
	for tag := range uniqueTags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
