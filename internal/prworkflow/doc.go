// Package prworkflow turns uncommitted changes in a fleet checkout into a pull request.
//
// The workflow walks an explicit sequence of states. Each step either advances
// the Outcome or stops with the git or API error that interrupted it; nothing
// is retried.
package prworkflow
