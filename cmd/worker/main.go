package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/ats-match-engine/internal/bootstrap"
	"github.com/kirillkom/ats-match-engine/internal/config"
	"github.com/kirillkom/ats-match-engine/internal/observability/logging"
	"github.com/kirillkom/ats-match-engine/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", slog.String("port", cfg.WorkerMetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_failed", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	scoreTimeout := time.Duration(cfg.ScoreTimeoutSeconds) * time.Second

	slog.Info("worker_subscribed", slog.String("subject", cfg.NATSSubject))
	err = app.Queue.SubscribeMatchRequested(ctx, func(handlerCtx context.Context, attemptID string) error {
		scoreCtx, cancel := context.WithTimeout(handlerCtx, scoreTimeout)
		defer cancel()

		// The archive is written only after a successful persist, so a hit
		// here means a duplicate publish for an already-scored attempt.
		if archived, err := app.Archive.LoadBreakdown(scoreCtx, attemptID); err == nil {
			slog.Info("duplicate_attempt_skipped",
				slog.String("attempt_id", attemptID),
				slog.Float64("final_score", archived.FinalScore),
			)
			return nil
		}

		if attempt, err := app.Repo.GetByID(scoreCtx, attemptID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(attempt.CreatedAt))
		}

		workerMetrics.StartAttempt()
		start := time.Now()
		breakdown, err := app.ScoreUC.ScoreByID(scoreCtx, attemptID)
		workerMetrics.FinishAttempt("worker", time.Since(start), err)
		if err != nil {
			return err
		}

		workerMetrics.RecordBreakdown("worker", breakdown)
		if archiveErr := app.Archive.StoreBreakdown(scoreCtx, attemptID, *breakdown); archiveErr != nil {
			slog.Warn("audit_archive_failed",
				slog.String("attempt_id", attemptID),
				slog.Any("error", archiveErr),
			)
		}
		return nil
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
