package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
)

type CreateAttemptUseCase struct {
	repo  ports.AttemptRepository
	queue ports.MessageQueue
}

func NewCreateAttemptUseCase(repo ports.AttemptRepository, queue ports.MessageQueue) *CreateAttemptUseCase {
	return &CreateAttemptUseCase{repo: repo, queue: queue}
}

// Create registers a pending attempt and hands it to the worker. Input
// errors surface to the caller before anything is persisted.
func (uc *CreateAttemptUseCase) Create(ctx context.Context, profileID, jobID, resume, job string) (*domain.MatchAttempt, error) {
	if strings.TrimSpace(resume) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create attempt", errors.New("resume text is required"))
	}
	if strings.TrimSpace(job) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create attempt", errors.New("job description text is required"))
	}

	now := time.Now().UTC()
	attempt := &domain.MatchAttempt{
		ID:        uuid.NewString(),
		ProfileID: strings.TrimSpace(profileID),
		JobID:     strings.TrimSpace(jobID),
		Resume:    resume,
		Job:       job,
		Status:    domain.AttemptPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt record: %w", err)
	}
	if err := uc.queue.PublishMatchRequested(ctx, attempt.ID); err != nil {
		return nil, fmt.Errorf("publish match request: %w", err)
	}
	return attempt, nil
}
