package domain

// AuditEvent is one append-only record of a pipeline decision. Timestamp is
// stamped by the audit logger at write time; callers never set it.
type AuditEvent struct {
	Timestamp        string    `json:"timestamp"`
	UserInput        string    `json:"user_input"`
	GeneratedCommand string    `json:"generated_command"`
	RiskLevel        RiskLevel `json:"risk_level"`
	ExecutionResult  string    `json:"execution_result"`
	Model            string    `json:"model"`
	CommandOutput    string    `json:"command_output"`
}

// Terminal pipeline outcomes that are not executor statuses. Together with
// ExecStatus values these cover every decision the audit log records.
const (
	OutcomeBlocked             = "blocked"
	OutcomeDryRun              = "dry_run"
	OutcomeSecondaryAuthFailed = "secondary_auth_failed"
	OutcomeCancelled           = "cancelled"
	OutcomeAPIError            = "api_error"
)

// Account mutation outcomes. Credential changes and resets never reach the
// pipeline, but they are audited like any other high-risk decision.
const (
	OutcomeAccountChangeDenied  = "account_change_denied"
	OutcomeAccountChangeFailed  = "account_change_failed"
	OutcomeAccountChangeSuccess = "account_change_success"
	OutcomeAccountReset         = "account_reset"
	OutcomeFactoryReset         = "factory_reset"
)

// RedactionMarker replaces the user input, generated command and command
// output fields when privacy mode is active at write time.
const RedactionMarker = "[REDACTED]"
