package runner

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/temirov/repos/internal/fleet"
	"github.com/temirov/repos/internal/repos/shared"
)

const (
	recipeDirectoryNameConstant    = ".repos"
	recipeSubdirectoryNameConstant = "recipes"
	recipeScriptExtensionConstant  = ".script"
	shebangPrefixConstant          = "#!"
	defaultShebangConstant         = "#!/bin/sh\n"
	recipeStepSeparatorConstant    = "\n"
	currentDirectoryPrefixConstant = "./"
	windowsOperatingSystemConstant = "windows"
	pathSeparatorConstant          = "/"
)

const (
	recipeDirectoryPermissionsConstant fs.FileMode = 0o755
	recipeScriptPermissionsConstant    fs.FileMode = 0o750
)

// RecipeScriptContent renders the script body for steps.
func RecipeScriptContent(steps []string) string {
	joinedSteps := strings.Join(steps, recipeStepSeparatorConstant)
	if strings.HasPrefix(joinedSteps, shebangPrefixConstant) {
		return joinedSteps
	}
	return defaultShebangConstant + joinedSteps
}

// RecipeScriptPath returns where the recipe script for repositoryDirectory lives.
func RecipeScriptPath(repositoryDirectory string, recipeName string) string {
	return filepath.Join(repositoryDirectory, recipeDirectoryNameConstant, recipeSubdirectoryNameConstant, SanitizeScriptName(recipeName)+recipeScriptExtensionConstant)
}

// MaterializeRecipe writes the recipe as an executable script inside the repository working tree and returns its path.
func MaterializeRecipe(fileSystem shared.FileSystem, repositoryDirectory string, recipe fleet.Recipe) (string, error) {
	scriptPath := RecipeScriptPath(repositoryDirectory, recipe.Name)
	if directoryError := fileSystem.MkdirAll(filepath.Dir(scriptPath), recipeDirectoryPermissionsConstant); directoryError != nil {
		return "", directoryError
	}
	if writeError := fileSystem.WriteFile(scriptPath, []byte(RecipeScriptContent(recipe.Steps)), recipeScriptPermissionsConstant); writeError != nil {
		return "", writeError
	}
	if runtime.GOOS != windowsOperatingSystemConstant {
		if chmodError := fileSystem.Chmod(scriptPath, recipeScriptPermissionsConstant); chmodError != nil {
			return "", chmodError
		}
	}
	return scriptPath, nil
}

// scriptCommandLine returns the command line that runs scriptPath from repositoryDirectory.
func scriptCommandLine(repositoryDirectory string, scriptPath string) string {
	relativePath, relativeError := filepath.Rel(repositoryDirectory, scriptPath)
	if relativeError != nil {
		return scriptPath
	}
	relativePath = filepath.ToSlash(relativePath)
	if !strings.Contains(relativePath, pathSeparatorConstant) {
		return currentDirectoryPrefixConstant + relativePath
	}
	return relativePath
}
