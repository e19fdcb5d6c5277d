// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and converts non-zero
// exit codes into typed errors. OSCommandRunner is the default os/exec backed
// runner. The commit graph adapters use it to run git plumbing commands
// against template repositories in a testable manner.
package execshell
