// Package runner executes shell commands and recipes inside fleet checkouts.
//
// Engine.Capture drains both output streams concurrently and, when given a log
// root, persists stdout.log, stderr.log and metadata.json for every repository
// it touches, including runs with empty output. Engine.Run is the streaming
// entry point that turns a non-zero exit into an error.
package runner
