// Package orchestration applies clone, run, pull request and removal operations
// across a filtered selection of fleet repositories.
//
// Every operation selects its targets with the filter package, executes each
// repository either in input order or concurrently with one goroutine per
// repository, and aggregates the per-repository outcomes into a Summary. A
// command fails only when no repository succeeded.
package orchestration
