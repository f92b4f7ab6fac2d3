package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

// refitInterval triggers a weight re-fit every N resolved games.
const refitInterval = 25

// accuracyKey is the Redis hash mirroring the running scoreboard.
const accuracyKey = "predictions:accuracy"

// RedisCounter is the slice of the Redis client the loop needs for
// mirroring accuracy counters.
type RedisCounter interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// Loop is the online learning loop: it logs predictions, resolves them
// against actual outcomes, tracks accuracy, and re-fits the predictor's
// weights every refitInterval resolved games. It is the only writer of
// derived model parameters.
type Loop struct {
	predictions *PredictionStore
	predictor   *Predictor
	redis       RedisCounter

	mu        sync.Mutex
	lastRefit int

	logger *zap.SugaredLogger
}

// NewLoop wires the loop. redis may be nil (counters stay local only).
func NewLoop(predictions *PredictionStore, predictor *Predictor, redis RedisCounter, logger *zap.Logger) *Loop {
	return &Loop{
		predictions: predictions,
		predictor:   predictor,
		redis:       redis,
		logger:      logger.Sugar(),
	}
}

// AddPrediction logs a freshly computed prediction.
func (l *Loop) AddPrediction(ctx context.Context, rec *models.PredictionRecord) error {
	if err := l.predictions.Insert(ctx, rec); err != nil {
		return fmt.Errorf("add prediction: %w", err)
	}
	l.mirrorCounters(ctx)
	return nil
}

// Get returns the stored prediction for a game, ErrPredictionNotFound
// when none exists.
func (l *Loop) Get(ctx context.Context, gameID string) (*models.PredictionRecord, error) {
	return l.predictions.Get(ctx, gameID)
}

// Resolve settles an open prediction against the actual winner, updates
// the scoreboard, and re-fits weights on the interval. A game with no
// open prediction is not an error for the caller's pipeline.
func (l *Loop) Resolve(ctx context.Context, gameID, actualWinner string) error {
	correct, err := l.predictions.Resolve(ctx, gameID, actualWinner)
	if errors.Is(err, ErrPredictionNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("resolve prediction %s: %w", gameID, err)
	}

	_, resolved, _, cErr := l.predictions.Counts(ctx)
	if cErr != nil {
		l.logger.Warnw("Accuracy counts unavailable", "error", cErr)
	}
	l.logger.Infow("Prediction resolved",
		"game_id", gameID, "winner", actualWinner, "correct", correct)
	l.mirrorCounters(ctx)

	l.mu.Lock()
	due := resolved > 0 && resolved-l.lastRefit >= refitInterval
	if due {
		l.lastRefit = resolved
	}
	l.mu.Unlock()

	if due {
		if err := l.Refit(ctx); err != nil {
			l.logger.Errorw("Weight refit failed", "error", err)
		}
	}
	return nil
}

// Accuracy returns the running scoreboard.
func (l *Loop) Accuracy(ctx context.Context) (*models.AccuracySummary, error) {
	total, resolved, correct, err := l.predictions.Counts(ctx)
	if err != nil {
		return nil, err
	}
	s := &models.AccuracySummary{
		TotalPredictions: total,
		Resolved:         resolved,
		Correct:          correct,
	}
	if resolved > 0 {
		s.Accuracy = float64(correct) / float64(resolved)
	}
	l.mu.Lock()
	s.LastRefitAt = l.lastRefit
	l.mu.Unlock()
	return s, nil
}

// Refit re-estimates the composite weights from the full resolved
// history: each metric's new weight is its absolute correlation between
// the home-minus-away metric differential and a home win, normalized to
// sum 1 and blended 50/50 with the current set. Coarse on purpose.
func (l *Loop) Refit(ctx context.Context) error {
	history, err := l.predictions.ResolvedOutcomes(ctx)
	if err != nil {
		return fmt.Errorf("refit history: %w", err)
	}
	if len(history) < 2 {
		return nil
	}

	outcomes := make([]float64, len(history))
	diffs := make(map[string][]float64, len(models.MetricNames))
	for i, rec := range history {
		if rec.ActualWinner == rec.HomeTeam {
			outcomes[i] = 1
		}
		for _, name := range models.MetricNames {
			h, _ := rec.HomeScores.ByName(name)
			a, _ := rec.AwayScores.ByName(name)
			diffs[name] = append(diffs[name], h-a)
		}
	}

	var sum float64
	corr := make(map[string]float64, len(models.MetricNames))
	for _, name := range models.MetricNames {
		c := math.Abs(pearson(diffs[name], outcomes))
		corr[name] = c
		sum += c
	}
	if sum == 0 {
		l.logger.Warnw("Refit skipped: no metric correlates with outcomes",
			"resolved", len(history))
		return nil
	}

	current := l.predictor.Weights()
	fitted := Weights{
		Pressure:    blend(current.Pressure, corr["pressure"]/sum),
		Possession:  blend(current.Possession, corr["possession"]/sum),
		Momentum:    blend(current.Momentum, corr["momentum"]/sum),
		Territorial: blend(current.Territorial, corr["territorial"]/sum),
		XG:          blend(current.XG, corr["xg_avg"]/sum),
		HDC:         blend(current.HDC, corr["hdc_avg"]/sum),
	}
	if err := l.predictor.SetWeights(fitted); err != nil {
		return fmt.Errorf("refit weights: %w", err)
	}

	l.logger.Infow("Composite weights re-fitted",
		"resolved", len(history),
		"pressure", fitted.Pressure, "possession", fitted.Possession,
		"momentum", fitted.Momentum, "territorial", fitted.Territorial,
		"xg_avg", fitted.XG, "hdc_avg", fitted.HDC)
	return nil
}

func blend(current, fitted float64) float64 {
	return 0.5*current + 0.5*fitted
}

// pearson is the standard sample correlation; 0 when either side has no
// variance.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func (l *Loop) mirrorCounters(ctx context.Context) {
	if l.redis == nil {
		return
	}
	total, resolved, correct, err := l.predictions.Counts(ctx)
	if err != nil {
		l.logger.Warnw("Accuracy mirror skipped", "error", err)
		return
	}
	accuracy := 0.0
	if resolved > 0 {
		accuracy = float64(correct) / float64(resolved)
	}
	if err := l.redis.HSet(ctx, accuracyKey,
		"total", total,
		"resolved", resolved,
		"correct", correct,
		"accuracy", accuracy,
	).Err(); err != nil {
		l.logger.Warnw("Accuracy mirror failed", "error", err)
	}
}
