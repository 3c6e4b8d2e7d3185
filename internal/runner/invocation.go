package runner

import "github.com/temirov/repos/internal/fleet"

// Invocation selects what the engine executes. CommandInvocation and
// RecipeInvocation are its only implementations.
type Invocation interface {
	// Label names the invocation in run directories and logs.
	Label() string
	sealed()
}

// CommandInvocation runs a shell command line.
type CommandInvocation struct {
	CommandLine string
}

// Label returns the command line.
func (invocation CommandInvocation) Label() string {
	return invocation.CommandLine
}

func (CommandInvocation) sealed() {}

// RecipeInvocation materializes a recipe into a script and runs it.
type RecipeInvocation struct {
	Recipe fleet.Recipe
}

// Label returns the recipe name.
func (invocation RecipeInvocation) Label() string {
	return invocation.Recipe.Name
}

func (RecipeInvocation) sealed() {}
