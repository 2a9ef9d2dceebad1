package domain

// RiskLevel classifies a generated command. HIGH drives the secondary
// authentication gate before execution; every rejected command is reported
// as HIGH regardless of the rejection reason.
type RiskLevel string

const (
	RiskNormal RiskLevel = "NORMAL"
	RiskHigh   RiskLevel = "HIGH"
)

// ValidationResult is the validator's verdict over a single command string.
// NormalizedCommand is always the whitespace-collapsed, trimmed form of the
// input, even when the command is rejected, so downstream logging stays
// consistent.
type ValidationResult struct {
	Allowed           bool
	Reason            string
	NormalizedCommand string
	RiskLevel         RiskLevel
}
