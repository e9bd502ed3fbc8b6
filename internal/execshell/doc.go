// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with structured logging and typed
// failures, and OSCommandRunner executes commands through os/exec. fmtstep uses
// it to query git when the command-line status backend is selected.
package execshell
