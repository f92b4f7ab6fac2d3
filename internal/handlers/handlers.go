package handlers

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
	"github.com/rinklab/analytics-api/internal/predictor"
	"github.com/rinklab/analytics-api/internal/store"
)

// MaxBodySize limits ingest bodies to 5MB; a full game's play-by-play
// runs a few hundred KB.
const MaxBodySize = 5 * 1024 * 1024

// IngestQueue defines the interface for the game ingestion worker pool
type IngestQueue interface {
	Enqueue(payload *models.GamePayload) bool
	QueueDepth() int
}

// MetricsReader reads cached per-game flat metric maps.
type MetricsReader interface {
	GetGameMetrics(ctx context.Context, gameID string) (map[string]string, error)
}

type Config struct {
	WorkerPool IngestQueue
	Metrics    MetricsReader
	Store      *store.Store
	Predictor  *predictor.Predictor
	Loop       *predictor.Loop

	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger

	// CORS allowlist; empty means any origin.
	AllowedOrigins []string
}

type Handler struct {
	pool      IngestQueue
	metrics   MetricsReader
	store     *store.Store
	predictor *predictor.Predictor
	loop      *predictor.Loop

	pg          *pgxpool.Pool
	ch          driver.Conn
	redis       *redis.Client
	logger      *zap.SugaredLogger
	validator   *validator.Validate
	corsOrigins []string
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:        cfg.WorkerPool,
		metrics:     cfg.Metrics,
		store:       cfg.Store,
		predictor:   cfg.Predictor,
		loop:        cfg.Loop,
		pg:          cfg.Postgres,
		ch:          cfg.ClickHouse,
		redis:       cfg.Redis,
		logger:      cfg.Logger.Sugar(),
		validator:   validator.New(),
		corsOrigins: cfg.AllowedOrigins,
	}
}
