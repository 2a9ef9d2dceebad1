// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces allow the pipeline to remain
// independent of specific implementations like HTTP clients, terminals,
// or the filesystem.
package ports

import (
	"context"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.jarvis/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CommandGenerator turns a natural-language request into exactly one shell
// command, owning retry and candidate-model failover. ValidateCredential
// issues one minimal request against the first candidate model, used by
// health checks without mutating pipeline state.
type CommandGenerator interface {
	Generate(ctx context.Context, userInput string) (domain.GenerationResult, error)
	ValidateCredential(ctx context.Context) error
}

// CommandValidator is the deterministic local safety gate. Pure function
// over the command text: no I/O, no state.
type CommandValidator interface {
	Validate(raw string) domain.ValidationResult
}

// PasswordVerifier is the capability the authorization gate consumes to
// check a secret. It decouples the gate from any particular credential
// storage or hashing scheme.
type PasswordVerifier interface {
	Verify(candidate string) bool
}

// VerifierFunc adapts a plain function to the PasswordVerifier interface.
type VerifierFunc func(candidate string) bool

// Verify implements PasswordVerifier.
func (f VerifierFunc) Verify(candidate string) bool {
	return f(candidate)
}

// AuthorizationGate manages password challenges. A false result with a nil
// error is a normal denial; errors signal that the environment cannot
// support masked input at all.
type AuthorizationGate interface {
	PromptPasswordWithRetry(label string, verify PasswordVerifier) (bool, error)
	SecondaryAuthenticate(verify PasswordVerifier) (bool, error)
}

// ConfirmationPrompter asks the final yes/no question before execution.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// CommandExecutor runs one command string through the platform shell.
// It never fails to the caller; all failure modes are encoded in the
// returned status.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) domain.ExecutionResult
}

// AuditLogger appends structured, privacy-redactable records of every
// pipeline decision.
type AuditLogger interface {
	LogEvent(event domain.AuditEvent) error
	SetPrivacy(enabled bool)
	Privacy() bool
	CurrentSize() int64
}

// HistoryRepository persists pipeline passes for the history meta-command.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int) ([]domain.HistoryRecord, error)
	Clear() error
}

// CredentialStore owns the on-disk credential profile. The pipeline only
// consumes the verifier it derives; account operations go through the
// update methods.
type CredentialStore interface {
	Exists() bool
	Load() (domain.Profile, error)
	Save(apiKey, password string) error
	UpdateAPIKey(apiKey string) error
	UpdatePassword(password string) error
	Delete() error
	PasswordVerifier() (PasswordVerifier, error)
}

// Logger provides structured diagnostic logging for the application layer.
// This is separate from the audit log, which is its own component.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
