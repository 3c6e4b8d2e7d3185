// Package plugins finds and launches external repos-<name> executables.
//
// Discover scans a PATH-style list of directories for executable files named
// repos-<name>. Dispatcher resolves one of them, passes the selected fleet to it
// through REPOS_* environment variables and reports a non-zero exit as ExitError.
package plugins
