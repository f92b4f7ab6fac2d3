// Package worker implements the buffered worker pool for async game
// processing. This decouples HTTP ingest from the engine and storage:
// - Backpressure via a bounded queue
// - Batch inserts for efficient ClickHouse shot archiving
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/engine"
	"github.com/rinklab/analytics-api/internal/models"
	"github.com/rinklab/analytics-api/internal/predictor"
	"github.com/rinklab/analytics-api/internal/store"
)

// Prometheus metrics
var (
	gamesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rinklab_games_ingested_total",
		Help: "Total number of games accepted for processing",
	})

	gamesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rinklab_games_processed_total",
		Help: "Total number of games fully processed",
	})

	gamesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rinklab_games_failed_total",
		Help: "Total number of games that failed processing",
	})

	gamesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rinklab_games_dropped_total",
		Help: "Total number of games dropped during shutdown",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rinklab_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	gameProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rinklab_game_process_duration_seconds",
		Help:    "Duration of full per-game pipeline runs",
		Buckets: prometheus.DefBuckets,
	})

	shotArchiveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rinklab_shot_archive_duration_seconds",
		Help:    "Duration of batch shot inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

// ShotArchiver receives every valued shot for offline analysis.
type ShotArchiver interface {
	InsertShots(ctx context.Context, shots []models.ShotRecord) error
}

// MetricCacher holds the latest per-game flat metric map for fast reads.
type MetricCacher interface {
	CacheGameMetrics(ctx context.Context, gm *models.GameMetrics) error
}

// Job represents one game awaiting processing.
type Job struct {
	Payload  *models.GamePayload
	Enqueued time.Time
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	Pipeline *engine.Pipeline
	Store    *store.Store
	Loop     *predictor.Loop
	Archive  ShotArchiver
	Cache    MetricCacher
	Logger   *zap.Logger
}

// Pool manages a pool of workers for async game processing.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the worker pool, flushing queued games.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	close(p.jobQueue)
	p.wg.Wait()
	p.cancel()
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a game to the queue. Returns false once the pool is
// shutting down or the context is gone.
func (p *Pool) Enqueue(payload *models.GamePayload) bool {
	job := Job{Payload: payload, Enqueued: time.Now()}

	// Protect against sending on a closed channel during shutdown.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue game (pool stopped)", "error", r)
			gamesDropped.Inc()
		}
	}()

	select {
	case p.jobQueue <- job:
		gamesIngested.Inc()
		return true
	case <-p.ctx.Done():
		p.logger.Warnw("Worker pool context canceled, dropping game",
			"game_id", payload.GameID)
		gamesDropped.Inc()
		return false
	}
}

// QueueDepth returns the current queue size.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker drains the queue in batches. Games inside a batch are still
// isolated from each other: one bad game never blocks its neighbors.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for i := range batch {
			p.processGame(&batch[i])
		}
		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				p.logger.Infow("Job queue closed, flushing remaining batch",
					"worker", id, "batchSize", len(batch))
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// processGame runs the full per-game path: engine pipeline, shot archive,
// metric cache, profile append, result recording, prediction resolution.
// A failure inside the pipeline skips every later step so profiles are
// never touched by a partially processed game.
func (p *Pool) processGame(job *Job) {
	start := time.Now()
	payload := job.Payload
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gm, err := p.config.Pipeline.Process(payload)
	if err != nil {
		p.logger.Errorw("Game rejected by pipeline",
			"game_id", payload.GameID, "error", err)
		gamesFailed.Inc()
		return
	}

	p.archiveShots(ctx, gm)

	if p.config.Cache != nil {
		if err := p.config.Cache.CacheGameMetrics(ctx, gm); err != nil {
			p.logger.Warnw("Metric cache write failed",
				"game_id", payload.GameID, "error", err)
		}
	}

	awayScores := p.config.Pipeline.Composites(gm.Away, gm.Home)
	homeScores := p.config.Pipeline.Composites(gm.Home, gm.Away)

	if err := p.config.Store.AppendGame(ctx, gm.Boxscore.AwayTeam, models.VenueAway, awayScores); err != nil {
		p.logger.Errorw("Profile append failed",
			"game_id", payload.GameID, "team", gm.Boxscore.AwayTeam, "error", err)
		gamesFailed.Inc()
		return
	}
	if err := p.config.Store.AppendGame(ctx, gm.Boxscore.HomeTeam, models.VenueHome, homeScores); err != nil {
		// The away side already landed; flag the split loudly.
		p.logger.Errorw("Profile append failed after away-side append",
			"game_id", payload.GameID, "team", gm.Boxscore.HomeTeam, "error", err)
		gamesFailed.Inc()
		return
	}

	p.recordOutcome(ctx, payload)

	gamesProcessed.Inc()
	gameProcessDuration.Observe(time.Since(start).Seconds())
	p.logger.Infow("Game processed",
		"game_id", payload.GameID,
		"away", gm.Boxscore.AwayTeam, "home", gm.Boxscore.HomeTeam,
		"duration", time.Since(start))
}

// archiveShots batch-inserts both teams' shot records. The archive is an
// offline-analysis sink; a failed insert is logged but does not block the
// profile update.
func (p *Pool) archiveShots(ctx context.Context, gm *models.GameMetrics) {
	if p.config.Archive == nil {
		return
	}
	shots := make([]models.ShotRecord, 0, len(gm.Away.Shots)+len(gm.Home.Shots))
	shots = append(shots, gm.Away.Shots...)
	shots = append(shots, gm.Home.Shots...)
	if len(shots) == 0 {
		return
	}

	start := time.Now()
	if err := p.config.Archive.InsertShots(ctx, shots); err != nil {
		p.logger.Errorw("Shot archive insert failed",
			"game_id", gm.GameID, "shots", len(shots), "error", err)
		return
	}
	shotArchiveDuration.Observe(time.Since(start).Seconds())
}

// recordOutcome stores the final result and settles any open prediction
// for the matchup.
func (p *Pool) recordOutcome(ctx context.Context, payload *models.GamePayload) {
	winner := payload.Boxscore.Winner()
	if winner == "" {
		p.logger.Warnw("Game ended without a winner, skipping result",
			"game_id", payload.GameID)
		return
	}

	if err := p.config.Store.RecordResult(ctx, store.GameResult{
		GameID:   payload.GameID,
		GameDate: payload.GameDate,
		AwayTeam: payload.Boxscore.AwayTeam,
		HomeTeam: payload.Boxscore.HomeTeam,
		Winner:   winner,
	}); err != nil {
		p.logger.Errorw("Result recording failed",
			"game_id", payload.GameID, "error", err)
	}

	if p.config.Loop == nil || payload.GameDate == "" {
		return
	}
	predictionID := predictor.PredictionID(
		payload.Boxscore.AwayTeam, payload.Boxscore.HomeTeam, payload.GameDate)
	err := p.config.Loop.Resolve(ctx, predictionID, winner)
	if errors.Is(err, predictor.ErrPredictionNotFound) {
		p.logger.Debugw("No open prediction for game", "game_id", payload.GameID)
		return
	}
	if err != nil {
		p.logger.Errorw("Prediction resolution failed",
			"game_id", payload.GameID, "error", err)
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
