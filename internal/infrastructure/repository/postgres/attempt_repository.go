package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

type AttemptRepository struct {
	db *sql.DB
}

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AttemptRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS match_attempts (
	id TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL DEFAULT '',
	job_id TEXT NOT NULL DEFAULT '',
	resume_text TEXT NOT NULL,
	job_text TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	breakdown JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_match_attempts_status ON match_attempts(status);
CREATE INDEX IF NOT EXISTS idx_match_attempts_created_at ON match_attempts(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *domain.MatchAttempt) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO match_attempts (
	id, profile_id, job_id, resume_text, job_text, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		attempt.ID, attempt.ProfileID, attempt.JobID, attempt.Resume, attempt.Job,
		string(attempt.Status), attempt.Error, attempt.CreatedAt, attempt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *AttemptRepository) GetByID(ctx context.Context, id string) (*domain.MatchAttempt, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, profile_id, job_id, resume_text, job_text, status, error_message, breakdown, created_at, updated_at
FROM match_attempts
WHERE id = $1
`, id)

	var attempt domain.MatchAttempt
	var status string
	var breakdownRaw []byte

	err := row.Scan(
		&attempt.ID, &attempt.ProfileID, &attempt.JobID, &attempt.Resume, &attempt.Job,
		&status, &attempt.Error, &breakdownRaw, &attempt.CreatedAt, &attempt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrAttemptNotFound, "get attempt", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan attempt: %w", err)
	}

	attempt.Status = domain.AttemptStatus(status)
	if len(breakdownRaw) > 0 {
		var breakdown domain.ScoreBreakdown
		if err := json.Unmarshal(breakdownRaw, &breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		attempt.Breakdown = &breakdown
	}
	return &attempt, nil
}

func (r *AttemptRepository) UpdateStatus(ctx context.Context, id string, status domain.AttemptStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE match_attempts
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update attempt status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrAttemptNotFound, "update attempt status", fmt.Errorf("id %s", id))
	}
	return nil
}

// SaveBreakdown persists the reconciled breakdown. Breakdowns are written
// once per attempt; admin config changes never rewrite them.
func (r *AttemptRepository) SaveBreakdown(ctx context.Context, id string, breakdown domain.ScoreBreakdown) error {
	raw, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE match_attempts
SET breakdown = $2, updated_at = $3
WHERE id = $1
`, id, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save breakdown: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrAttemptNotFound, "save breakdown", fmt.Errorf("id %s", id))
	}
	return nil
}
