package ports

import (
	"context"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

// AttemptRepository persists match attempts and their breakdowns.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.MatchAttempt) error
	GetByID(ctx context.Context, id string) (*domain.MatchAttempt, error)
	UpdateStatus(ctx context.Context, id string, status domain.AttemptStatus, errMessage string) error
	SaveBreakdown(ctx context.Context, id string, breakdown domain.ScoreBreakdown) error
}

// ConfigStore exposes the versioned admin scoring configuration. Snapshot
// must be atomic: a concurrent Update never yields mixed weight versions.
type ConfigStore interface {
	Snapshot(ctx context.Context) (domain.ConfigSnapshot, error)
	Update(ctx context.Context, cfg domain.ScoringConfig) (domain.ConfigSnapshot, error)
}

// MessageQueue hands pending attempts from the api to the worker.
type MessageQueue interface {
	PublishMatchRequested(ctx context.Context, attemptID string) error
	SubscribeMatchRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// SectionExtractor turns raw source text into normalized section texts plus
// the structured facts the scorer needs.
type SectionExtractor interface {
	Extract(text string) domain.SectionSet
}

// Embedder maps text spans to fixed-dimension vectors. Deterministic for
// identical input within one model version.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ReviewRequest carries the deterministic breakdown to the AI reviewer.
type ReviewRequest struct {
	Resume       domain.SectionSet
	Job          domain.SectionSet
	Similarities domain.DomainSimilarity
	Gate         domain.GateDecision
	RawScore     float64
	GatedScore   float64
	Skills       domain.SkillMatchReport
	Config       domain.ScoringConfig
}

// ScoreReviewer asks the generative reviewer to validate or override the
// deterministic result. Implementations return an unusable ReviewResult for
// every failure mode (unreachable, malformed, missing fields, timeout)
// instead of an error, so a reviewer outage can never fail an attempt.
type ScoreReviewer interface {
	Review(ctx context.Context, req ReviewRequest) domain.ReviewResult
}

// MatchCreator is the inbound contract for registering a new attempt.
type MatchCreator interface {
	Create(ctx context.Context, profileID, jobID, resume, job string) (*domain.MatchAttempt, error)
}

// MatchScorer is the inbound contract for scoring a pending attempt.
type MatchScorer interface {
	ScoreByID(ctx context.Context, attemptID string) (*domain.ScoreBreakdown, error)
}

// AttemptReader is the inbound read model for attempt state.
type AttemptReader interface {
	GetByID(ctx context.Context, id string) (*domain.MatchAttempt, error)
}
