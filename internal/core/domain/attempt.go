package domain

import "time"

type AttemptStatus string

const (
	AttemptPending    AttemptStatus = "pending"
	AttemptProcessing AttemptStatus = "processing"
	AttemptScored     AttemptStatus = "scored"
	AttemptFailed     AttemptStatus = "failed"
)

// MatchAttempt is one resume-vs-job scoring unit of work. The raw texts are
// captured at creation so the worker scores exactly what was submitted.
type MatchAttempt struct {
	ID        string          `json:"id"`
	ProfileID string          `json:"profile_id"`
	JobID     string          `json:"job_id"`
	Resume    string          `json:"-"`
	Job       string          `json:"-"`
	Status    AttemptStatus   `json:"status"`
	Error     string          `json:"error,omitempty"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
