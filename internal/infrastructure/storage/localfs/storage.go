// Package localfs keeps an on-disk audit trail of scored attempts. Each
// breakdown is written as one JSON file so disputed scores can be replayed
// without touching the database.
package localfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

type Archive struct {
	basePath string
}

func New(basePath string) (*Archive, error) {
	if basePath == "" {
		basePath = "./data/audit"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

func (a *Archive) StoreBreakdown(_ context.Context, attemptID string, breakdown domain.ScoreBreakdown) error {
	data, err := json.MarshalIndent(breakdown, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	path := filepath.Join(a.basePath, attemptID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write breakdown file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize breakdown file: %w", err)
	}
	return nil
}

func (a *Archive) LoadBreakdown(_ context.Context, attemptID string) (*domain.ScoreBreakdown, error) {
	path := filepath.Join(a.basePath, attemptID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read breakdown file: %w", err)
	}

	var breakdown domain.ScoreBreakdown
	if err := json.Unmarshal(data, &breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown file: %w", err)
	}
	return &breakdown, nil
}
