package domain

import "strings"

// ExecStatus describes how a command execution ended.
type ExecStatus string

const (
	ExecSuccess ExecStatus = "success"
	ExecFailed  ExecStatus = "failed"
	ExecTimeout ExecStatus = "timeout"
	ExecError   ExecStatus = "error"
)

// ExecutionResult wraps details from the command executor. Stdout and Stderr
// are always present (empty string, never absent). Status is success iff
// ExitCode is 0; timeout and error short-circuit exit-code interpretation.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Status   ExecStatus
}

// CombinedOutput joins stdout and stderr for display and audit logging.
func (r ExecutionResult) CombinedOutput() string {
	return strings.TrimSpace(r.Stdout + "\n" + r.Stderr)
}
