package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

func newConfigRepoWithMock(t *testing.T) (*ConfigRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ConfigRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestSnapshotReadsVersionedConfig(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	cfg := domain.DefaultScoringConfig()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}

	mock.ExpectQuery("SELECT version, config FROM scoring_config").
		WillReturnRows(sqlmock.NewRows([]string{"version", "config"}).AddRow(4, raw))

	snapshot, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snapshot.Version != 4 {
		t.Fatalf("expected version 4, got %d", snapshot.Version)
	}
	if snapshot.Config.WeightSkills != cfg.WeightSkills {
		t.Fatalf("expected stored weights returned, got %+v", snapshot.Config)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSnapshotNotSeeded(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT version, config FROM scoring_config").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Snapshot(context.Background()); err == nil {
		t.Fatalf("expected error when config row is missing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateBumpsVersion(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	cfg := domain.DefaultScoringConfig()
	cfg.WeightSkills = 0.5
	cfg.WeightEducation = 0.3

	mock.ExpectQuery("UPDATE scoring_config").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))

	snapshot, err := repo.Update(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if snapshot.Version != 5 {
		t.Fatalf("expected bumped version 5, got %d", snapshot.Version)
	}
	if snapshot.Config.WeightSkills != 0.5 {
		t.Fatalf("expected updated weights in snapshot, got %+v", snapshot.Config)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateRejectsInvalidConfigWithoutQuerying(t *testing.T) {
	repo, mock, done := newConfigRepoWithMock(t)
	defer done()

	cfg := domain.DefaultScoringConfig()
	cfg.WeightSkills = -1

	_, err := repo.Update(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !domain.IsKind(err, domain.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
