package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/db"
	"github.com/jonathan/talent-matcher/internal/embedding"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/parsing"
	"github.com/jonathan/talent-matcher/internal/ranking"
	"github.com/jonathan/talent-matcher/internal/server"
	"github.com/jonathan/talent-matcher/internal/skills"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start an HTTP server that exposes candidate, job and matching endpoints.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, migrate)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, migrate bool) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if migrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		log.Info("database migrations applied")
	}

	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	vocab, err := skills.Default()
	if err != nil {
		return fmt.Errorf("failed to load skill vocabulary: %w", err)
	}

	var embedder matching.Embedder
	if cfg.Embedding.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set, semantic scoring disabled")
	} else {
		worker, closeWorker, err := newEmbeddingWorker(ctx, cfg, database, log)
		if err != nil {
			return err
		}
		defer closeWorker()
		embedder = worker
	}

	svc := matching.NewService(database, embedder, parsing.NewProfiler(vocab), matching.Options{
		Rank: ranking.RankOptions{
			Parallelism:     cfg.Matching.Parallelism,
			SequentialBelow: cfg.Matching.ParallelThreshold,
		},
	}, log)

	var jwtService *server.JWTService
	if cfg.Auth.Secret == "" {
		log.Warn("JWT_SECRET not set, API authentication disabled")
	} else {
		if err := cfg.Auth.RequireSecret(); err != nil {
			return err
		}
		jwtService = server.NewJWTService(cfg.Auth)
	}

	srv := server.New(svc, server.Options{
		Config: cfg.Server,
		JWT:    jwtService,
		Logger: log,
		Ready:  database.Ping,
	})
	return srv.Start(ctx)
}

// newEmbeddingWorker builds the Gemini provider with retries and, when Redis
// is configured and reachable, a result cache in front of it.
func newEmbeddingWorker(ctx context.Context, cfg *config.Config, store embedding.Store, log *zap.Logger) (*embedding.Worker, func(), error) {
	gemini, err := embedding.NewGeminiProvider(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { _ = gemini.Close() }}

	var provider embedding.Provider = embedding.WithRetry(gemini, cfg.Embedding.RetryAttempts, cfg.Embedding.RetryDelay)

	if cfg.Redis.URL != "" {
		rdb, err := embedding.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn("embedding cache unavailable", zap.Error(err))
		} else {
			closers = append(closers, func() { _ = rdb.Close() })
			provider = embedding.NewCachedProvider(provider, rdb, cfg.Redis.CacheTTL, log)
		}
	}

	worker := embedding.NewWorker(provider, store, embedding.WorkerOptions{
		Concurrency:   cfg.Embedding.Concurrency,
		MaxInputChars: cfg.Embedding.MaxInputChars,
	}, log)

	closeAll := func() {
		worker.Close()
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return worker, closeAll, nil
}
