// Package gitrepo runs the git primitives fleet commands are built from.
//
// RepositoryManager shells out to git through execshell for clone, status,
// branch, stage, commit, push and default-branch lookups, and deletes checkouts
// through the shared filesystem abstraction. ParseRemoteURL and
// ParseRepositoryURL turn ssh, https and bare github.com remotes into an owner
// and repository pair.
package gitrepo
