package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

// ConfigRepository stores the single versioned scoring configuration row.
// Version bumps on every admin update; attempt code reads one consistent
// snapshot and never observes a half-applied change.
type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// EnsureSchema creates the table and seeds version 1 with the provided
// defaults when no config exists yet. Existing rows are left untouched.
func (r *ConfigRepository) EnsureSchema(ctx context.Context, defaults domain.ScoringConfig) error {
	if err := defaults.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS scoring_config (
	id SMALLINT PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL,
	config JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO scoring_config (id, version, config, updated_at)
VALUES (1, 1, $1, $2)
ON CONFLICT (id) DO NOTHING
`, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("seed default config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ConfigRepository) Snapshot(ctx context.Context) (domain.ConfigSnapshot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT version, config FROM scoring_config WHERE id = 1`)

	var version int
	var raw []byte
	if err := row.Scan(&version, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ConfigSnapshot{}, fmt.Errorf("scoring config not seeded")
		}
		return domain.ConfigSnapshot{}, fmt.Errorf("scan scoring config: %w", err)
	}

	var cfg domain.ScoringConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("unmarshal scoring config: %w", err)
	}
	return domain.ConfigSnapshot{Config: cfg, Version: version}, nil
}

// Update validates and applies a new config, bumping the version. Rejected
// configs leave the stored row untouched; already-persisted breakdowns are
// never rewritten.
func (r *ConfigRepository) Update(ctx context.Context, cfg domain.ScoringConfig) (domain.ConfigSnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return domain.ConfigSnapshot{}, err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return domain.ConfigSnapshot{}, fmt.Errorf("marshal scoring config: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
UPDATE scoring_config
SET version = version + 1, config = $1, updated_at = $2
WHERE id = 1
RETURNING version
`, raw, time.Now().UTC())

	var version int
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ConfigSnapshot{}, fmt.Errorf("scoring config not seeded")
		}
		return domain.ConfigSnapshot{}, fmt.Errorf("update scoring config: %w", err)
	}
	return domain.ConfigSnapshot{Config: cfg, Version: version}, nil
}
