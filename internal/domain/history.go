package domain

import "time"

// HistoryRecord is one persisted pipeline pass, shown by the history
// meta-command.
type HistoryRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Command   string    `json:"command"`
	Model     string    `json:"model"`
	RiskLevel RiskLevel `json:"risk_level"`
	Outcome   string    `json:"outcome"`
}
