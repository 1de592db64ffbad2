package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

func newAttemptRepoWithMock(t *testing.T) (*AttemptRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &AttemptRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestCreateInsertsAttempt(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	attempt := &domain.MatchAttempt{
		ID:        "attempt-1",
		ProfileID: "profile-1",
		JobID:     "job-1",
		Resume:    "resume text",
		Job:       "job text",
		Status:    domain.AttemptPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO match_attempts").
		WithArgs("attempt-1", "profile-1", "job-1", "resume text", "job text",
			string(domain.AttemptPending), "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), attempt); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, profile_id, job_id, resume_text, job_text").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansBreakdown(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	breakdown := domain.ScoreBreakdown{FinalScore: 72, ConfigVersion: 3}
	raw, err := json.Marshal(breakdown)
	if err != nil {
		t.Fatalf("marshal breakdown: %v", err)
	}
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "profile_id", "job_id", "resume_text", "job_text",
		"status", "error_message", "breakdown", "created_at", "updated_at",
	}).AddRow("attempt-1", "profile-1", "job-1", "resume text", "job text",
		string(domain.AttemptScored), "", raw, now, now)

	mock.ExpectQuery("SELECT id, profile_id, job_id, resume_text, job_text").
		WithArgs("attempt-1").
		WillReturnRows(rows)

	attempt, err := repo.GetByID(context.Background(), "attempt-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if attempt.Status != domain.AttemptScored {
		t.Fatalf("expected scored status, got %s", attempt.Status)
	}
	if attempt.Breakdown == nil || attempt.Breakdown.FinalScore != 72 {
		t.Fatalf("expected breakdown scanned, got %+v", attempt.Breakdown)
	}
	if attempt.Breakdown.ConfigVersion != 3 {
		t.Fatalf("expected config version 3, got %d", attempt.Breakdown.ConfigVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDWithoutBreakdown(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "profile_id", "job_id", "resume_text", "job_text",
		"status", "error_message", "breakdown", "created_at", "updated_at",
	}).AddRow("attempt-1", "", "", "resume text", "job text",
		string(domain.AttemptPending), "", nil, now, now)

	mock.ExpectQuery("SELECT id, profile_id, job_id, resume_text, job_text").
		WithArgs("attempt-1").
		WillReturnRows(rows)

	attempt, err := repo.GetByID(context.Background(), "attempt-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if attempt.Breakdown != nil {
		t.Fatalf("expected nil breakdown for pending attempt, got %+v", attempt.Breakdown)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStatusReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE match_attempts").
		WithArgs("missing", string(domain.AttemptProcessing), "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.AttemptProcessing, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveBreakdownReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newAttemptRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE match_attempts").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveBreakdown(context.Background(), "missing", domain.ScoreBreakdown{FinalScore: 50})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
