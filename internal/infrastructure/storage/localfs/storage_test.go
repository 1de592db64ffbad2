package localfs

import (
	"context"
	"testing"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

func TestStoreAndLoadBreakdown(t *testing.T) {
	archive, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	breakdown := domain.ScoreBreakdown{
		RawScore:   79.5,
		GatedScore: 79.5,
		FinalScore: 72,
		Gate: domain.GateDecision{
			Outcome:              domain.GateUnrestricted,
			ProfessionSimilarity: 0.82,
		},
		ConfigVersion: 3,
	}
	if err := archive.StoreBreakdown(context.Background(), "attempt-1", breakdown); err != nil {
		t.Fatalf("StoreBreakdown() error = %v", err)
	}

	got, err := archive.LoadBreakdown(context.Background(), "attempt-1")
	if err != nil {
		t.Fatalf("LoadBreakdown() error = %v", err)
	}
	if got.FinalScore != 72 {
		t.Fatalf("expected final score 72, got %v", got.FinalScore)
	}
	if got.Gate.Outcome != domain.GateUnrestricted {
		t.Fatalf("expected unrestricted gate, got %q", got.Gate.Outcome)
	}
	if got.ConfigVersion != 3 {
		t.Fatalf("expected config version 3, got %d", got.ConfigVersion)
	}
}

func TestLoadBreakdownMissingAttempt(t *testing.T) {
	archive, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := archive.LoadBreakdown(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for missing breakdown file")
	}
}
