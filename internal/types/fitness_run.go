package types

import (
	"fmt"
	"time"
)

// FitnessRun is one recorded fitness evaluation.
type FitnessRun struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Verdict   HealthVerdict `json:"verdict"`

	FilesOK        bool `json:"files_ok"`
	IntegrityOK    bool `json:"integrity_ok"`
	GovernanceOK   bool `json:"governance_ok"`
	DepsOK         bool `json:"deps_ok"`
	ConnectivityOK bool `json:"connectivity_ok"`

	UnknownDocs int    `json:"unknown_docs"`
	Summary     string `json:"summary"`
}

// Validate checks if the run has the fields required for storage
func (r *FitnessRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("started_at is required")
	}
	if !r.Verdict.IsValid() {
		return fmt.Errorf("invalid verdict: %s", r.Verdict)
	}
	if r.UnknownDocs < 0 {
		return fmt.Errorf("unknown_docs must be non-negative (got %d)", r.UnknownDocs)
	}
	return nil
}
