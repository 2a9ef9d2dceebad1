// Package executor runs validated commands in a child shell with an
// enforced wall-clock timeout.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const timeoutExitCode = 124

// ShellExecutor spawns one shell process per command. Execute never
// returns a Go error: every failure mode is encoded in the
// ExecutionResult so the caller always has something to audit.
type ShellExecutor struct {
	shell   string
	timeout domain.ExecutionSettings
	logger  ports.Logger
}

// NewShellExecutor resolves the shell binary from the configuration.
// "auto" (or empty) picks cmd on Windows and $SHELL, falling back to
// /bin/sh, elsewhere.
func NewShellExecutor(cfg domain.ExecutionSettings, log ports.Logger) *ShellExecutor {
	return &ShellExecutor{
		shell:   resolveShell(cfg.Shell),
		timeout: cfg,
		logger:  log,
	}
}

func resolveShell(configured string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	if runtime.GOOS == "windows" {
		return "cmd"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// Shell returns the resolved shell binary, for status display.
func (e *ShellExecutor) Shell() string {
	return e.shell
}

// Execute runs the command and classifies the outcome. A deadline hit
// maps to exit code 124 with a timeout status; a spawn failure maps to
// exit code 1 with an error status.
func (e *ShellExecutor) Execute(ctx context.Context, command string) domain.ExecutionResult {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout.Timeout())
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(runCtx, e.shell, "/c", command)
	} else {
		cmd = exec.CommandContext(runCtx, e.shell, "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		e.logger.Warn("command timed out", map[string]interface{}{
			"command": command,
			"timeout": e.timeout.Timeout().String(),
		})
		return domain.ExecutionResult{
			ExitCode: timeoutExitCode,
			Stdout:   "",
			Stderr:   fmt.Sprintf("Command timed out after %ds", e.timeout.TimeoutSeconds),
			Status:   domain.ExecTimeout,
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return domain.ExecutionResult{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Status:   domain.ExecFailed,
			}
		}
		// the shell itself could not be spawned
		return domain.ExecutionResult{
			ExitCode: 1,
			Stdout:   "",
			Stderr:   "Execution error: " + err.Error(),
			Status:   domain.ExecError,
		}
	}

	return domain.ExecutionResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Status:   domain.ExecSuccess,
	}
}

var _ ports.CommandExecutor = (*ShellExecutor)(nil)
