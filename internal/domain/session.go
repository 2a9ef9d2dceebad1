package domain

import "time"

// SessionStats counts pipeline outcomes for the status report.
type SessionStats struct {
	TotalInputs int
	Executed    int
	Blocked     int
	Failed      int
	APIErrors   int
	HighRisk    int
	DryRuns     int
}

// Session is the explicit per-session state passed into the pipeline: mode
// flags, the candidate model list, and counters. It is owned by the
// interactive loop; the pipeline mutates counters but never the lock flag.
type Session struct {
	Locked    bool
	DryRun    bool
	Privacy   bool
	Models    *CandidateModels
	LastModel string
	StartedAt time.Time
	Stats     SessionStats
}

// NewSession builds an unlocked session around the configured model list.
func NewSession(models *CandidateModels) *Session {
	return &Session{
		Models:    models,
		LastModel: "none",
		StartedAt: time.Now(),
	}
}

// Uptime reports elapsed wall-clock time since session start.
func (s *Session) Uptime() time.Duration {
	return time.Since(s.StartedAt)
}
