package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/adapter/postgres"
	redis_adapter "github.com/Leooooooow/tiktok-comment-fetcher/internal/adapter/redis"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/adapter/tikhub"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/handler"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/router"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/usecase"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/config"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/logger"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.TikHubAPIKey == "" {
		log.Warn("TIKHUB_API_KEY is not set, upstream requests will be rejected")
	}

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Failure journal stores (optional) ---
	ctx := context.Background()
	var journal []repository.FailureRepository

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("unable to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		journal = append(journal, redis_adapter.NewFailureRepo(rdb, cfg.FailureTTL()))
		log.Info("redis failure journal enabled", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("unable to connect to database", zap.Error(err))
		}
		defer dbpool.Close()
		pgRepo := postgres.NewFailureRepo(dbpool)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			log.Fatal("unable to create fetch_failures table", zap.Error(err))
		}
		journal = append(journal, pgRepo)
		log.Info("postgres failure journal enabled")
	}

	// --- Upstream ---
	fetcher := tikhub.NewClient(tikhub.Config{
		BaseURL:       cfg.TikHubBaseURL,
		APIKey:        cfg.TikHubAPIKey,
		Timeout:       cfg.UpstreamTimeout(),
		RatePerSecond: cfg.UpstreamRatePerSecond,
	}, m, log)

	// --- Use Cases ---
	collector := usecase.NewCollector(fetcher, usecase.CollectorOptions{
		PageSize:    cfg.PageSize,
		MaxComments: cfg.MaxCommentsPerVideo,
		MaxPages:    cfg.MaxPagesPerVideo,
	}, log)

	pool := usecase.NewPool(cfg.MaxConcurrentFetches, log)
	pool.Start()

	batch := usecase.NewBatchUseCase(collector, pool, journal, usecase.BatchOptions{
		MaxURLsPerBatch: cfg.MaxURLsPerBatch,
	}, m, log)
	failures := usecase.NewFailureJournal(journal)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(batch, failures, log)
	httpRouter := router.New(apiHandler, router.Options{
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.Int("workers", pool.Size()),
		zap.Int("journal_stores", len(journal)),
	)

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		// Handlers may still be submitting, so the pool is left to die with the process.
		log.Error("server forced to shutdown", zap.Error(err))
	} else {
		pool.Stop()
	}

	log.Info("server exiting")
}
