package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/config"
	"github.com/rinklab/analytics-api/internal/engine"
	"github.com/rinklab/analytics-api/internal/handlers"
	"github.com/rinklab/analytics-api/internal/predictor"
	"github.com/rinklab/analytics-api/internal/store"
	"github.com/rinklab/analytics-api/internal/worker"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL: profile snapshots and game results.
	pg, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalw("PostgreSQL connection failed", "error", err)
	}
	defer pg.Close()

	// ClickHouse: the shot archive.
	chOpts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
	if err != nil {
		log.Fatalw("Invalid ClickHouse URL", "error", err)
	}
	ch, err := clickhouse.Open(chOpts)
	if err != nil {
		log.Fatalw("ClickHouse connection failed", "error", err)
	}
	defer ch.Close()

	// Redis: per-game metric cache and accuracy counters.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalw("Invalid Redis URL", "error", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	persist := store.NewPostgresPersistence(pg)
	if err := persist.EnsureSchema(ctx); err != nil {
		log.Fatalw("PostgreSQL schema setup failed", "error", err)
	}
	archive := worker.NewClickHouseArchive(ch)
	if err := archive.EnsureSchema(ctx); err != nil {
		log.Fatalw("ClickHouse schema setup failed", "error", err)
	}

	perf := store.New(cfg.RollingWindow, persist, logger)
	if err := perf.Load(ctx); err != nil {
		log.Fatalw("Performance store load failed", "error", err)
	}

	pred, err := predictor.New(perf, predictor.DefaultWeights, logger)
	if err != nil {
		log.Fatalw("Predictor setup failed", "error", err)
	}
	predictions, err := predictor.OpenPredictionStore(cfg.PredictionDBPath, logger)
	if err != nil {
		log.Fatalw("Prediction store setup failed", "error", err)
	}
	defer predictions.Close()
	loop := predictor.NewLoop(predictions, pred, rdb, logger)

	cache := worker.NewRedisMetricCache(rdb)
	pool := worker.NewPool(worker.PoolConfig{
		WorkerCount:   cfg.WorkerCount,
		QueueSize:     cfg.QueueSize,
		BatchSize:     cfg.BatchSize,
		FlushInterval: cfg.FlushInterval,
		Pipeline:      engine.NewPipeline(logger),
		Store:         perf,
		Loop:          loop,
		Archive:       archive,
		Cache:         cache,
		Logger:        logger,
	})
	pool.Start(ctx)

	h := handlers.New(handlers.Config{
		WorkerPool:     pool,
		Metrics:        cache,
		Store:          perf,
		Predictor:      pred,
		Loop:           loop,
		Postgres:       pg,
		ClickHouse:     ch,
		Redis:          rdb,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	// Drain in-flight games before the deferred backend closes run.
	pool.Stop()
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
