// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and typed failures.
// OSCommandRunner buffers a process's output in memory. StreamingCommandRunner
// drains stdout and stderr line by line on two goroutines, which keeps chatty
// fleet commands from blocking on full pipes.
package execshell
