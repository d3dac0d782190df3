package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nyashahama/exit-valuation-backend/internal/api"
	"github.com/nyashahama/exit-valuation-backend/internal/config"
	"github.com/nyashahama/exit-valuation-backend/internal/email"
	"github.com/nyashahama/exit-valuation-backend/internal/questionnaire"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
	"github.com/nyashahama/exit-valuation-backend/internal/transport"
	"github.com/nyashahama/exit-valuation-backend/internal/worker"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Root context cancelled by OS signal. Worker and server both respect it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port)

	// ── Storage ───────────────────────────────────────────────────────────────
	repo, closeRepo, err := openRepository(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer closeRepo()

	// ── Questionnaire documents ───────────────────────────────────────────────
	// A broken document fails startup instead of the first request.
	var docs questionnaire.Provider = questionnaire.NewFileProvider(cfg.QuestionsPath, cfg.ExpertQuestionsPath, logger)
	if cfg.ConfigCache {
		docs = questionnaire.NewCachedProvider(docs)
	}
	if err := questionnaire.Preload(ctx, docs); err != nil {
		return fmt.Errorf("questionnaire: %w", err)
	}

	validator, err := schema.New()
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	// ── Email ─────────────────────────────────────────────────────────────────
	var mailer email.Sender
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendClient(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName, cfg.BaseURL)
	} else {
		mailer = email.NewLogSender(logger)
		logger.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
	}
	if cfg.SalesInbox == "" {
		logger.Warn("SALES_INBOX not set, sales notifications are skipped")
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	job := worker.NewJob(repo, mailer, cfg.SalesInbox, logger)
	runnerCfg := worker.DefaultRunnerConfig()
	runnerCfg.Workers = cfg.WorkerCount
	runnerCfg.PollInterval = cfg.PollInterval
	runnerCfg.JobTimeout = cfg.JobTimeout
	runnerCfg.MaxRetries = cfg.MaxRetries
	runner := worker.NewRunner(job, repo, runnerCfg, logger)

	// ── HTTP + gRPC ───────────────────────────────────────────────────────────
	handler := api.NewServer(
		repo,
		docs,
		validator,
		runner, // *Runner satisfies worker.Enqueuer
		api.Config{
			Env:                 cfg.Env,
			AllowedOrigins:      cfg.AllowedOrigins,
			AdminToken:          cfg.AdminToken,
			SubmitRatePerMinute: cfg.SubmitRatePerMinute,
			SubmitBurst:         cfg.SubmitBurst,
		},
		logger,
	)
	srv := transport.New(handler, transport.Config{}, logger)

	// ── Run until signal ──────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Start(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, ":"+cfg.Port)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// openRepository returns Postgres when dsn is set and the in-memory store
// otherwise. The returned func releases the connection pool.
func openRepository(ctx context.Context, dsn string, logger *slog.Logger) (store.Repository, func(), error) {
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		return store.NewMemory(), func() {}, nil
	}

	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database connected")
	return pg, func() { db.Close() }, nil
}
