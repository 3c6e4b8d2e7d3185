// Package cli builds the repos command-line interface: the Cobra command tree,
// layered configuration and the zap logger shared by every subcommand.
package cli
