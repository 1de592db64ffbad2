package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/config"
	"github.com/kirillkom/ats-match-engine/internal/core/domain"
	"github.com/kirillkom/ats-match-engine/internal/core/ports"
	"github.com/kirillkom/ats-match-engine/internal/core/usecase"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/queue/nats"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/resilience"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/review/gemini"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/sections"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/ats-match-engine/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Repo    ports.AttemptRepository
	Configs ports.ConfigStore
	Archive *localfs.Archive

	CreateUC ports.MatchCreator
	ScoreUC  ports.MatchScorer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	attemptRepo := postgres.NewAttemptRepository(db)
	if err := attemptRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure attempt schema: %w", err)
	}
	configRepo := postgres.NewConfigRepository(db)
	if err := configRepo.EnsureSchema(ctx, domain.DefaultScoringConfig()); err != nil {
		return nil, fmt.Errorf("ensure config schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var extractor *sections.Extractor
	if cfg.AliasTablePath != "" {
		extractor, err = sections.NewFromFile(cfg.AliasTablePath)
	} else {
		extractor, err = sections.New()
	}
	if err != nil {
		return nil, fmt.Errorf("init section extractor: %w", err)
	}

	var embedder ports.Embedder = ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)
	if cfg.QdrantURL != "" {
		cache := qdrant.NewCache(cfg.QdrantURL, cfg.QdrantCollection)
		embedder = qdrant.NewCachedEmbedder(embedder, cache, cfg.OllamaEmbedModel)
	}

	reviewTimeout := time.Duration(cfg.GeminiTimeoutSeconds) * time.Second
	var reviewer *gemini.Reviewer
	if cfg.GeminiAPIKey != "" {
		generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		reviewer = gemini.NewReviewer(generator, reviewTimeout)
	} else {
		// Without an API key every attempt falls back to the deterministic
		// score.
		reviewer = gemini.NewReviewer(nil, reviewTimeout)
	}

	archive, err := localfs.New(cfg.AuditPath)
	if err != nil {
		return nil, fmt.Errorf("init audit archive: %w", err)
	}

	createUC := usecase.NewCreateAttemptUseCase(attemptRepo, queue)
	scoreUC := usecase.NewScoreMatchUseCase(attemptRepo, configRepo, extractor, embedder, reviewer)

	return &App{
		Config:  cfg,
		Queue:   queue,
		Repo:    attemptRepo,
		Configs: configRepo,
		Archive: archive,

		CreateUC: createUC,
		ScoreUC:  scoreUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
