package predictor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/rinklab/analytics-api/internal/models"
)

const (
	// maxPredictionRows caps the log. Oldest 10% of rows are evicted when
	// the cap is exceeded.
	maxPredictionRows = 50000
	evictShare        = 0.10
)

// ErrPredictionNotFound is returned when resolving a game with no open
// prediction on record.
var ErrPredictionNotFound = errors.New("prediction not found")

// PredictionStore persists the prediction log in a FIFO SQLite database.
// Composite scores are stored per side so the weight re-fit can correlate
// metric differentials with outcomes.
type PredictionStore struct {
	db       *sql.DB
	mu       sync.Mutex
	rowCount int64
	logger   *zap.SugaredLogger
}

func OpenPredictionStore(path string, logger *zap.Logger) (*PredictionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA auto_vacuum = INCREMENTAL`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id          TEXT NOT NULL UNIQUE,
			game_date        TEXT NOT NULL,
			away_team        TEXT NOT NULL,
			home_team        TEXT NOT NULL,
			created_at       TEXT NOT NULL,

			away_prob        REAL NOT NULL,
			home_prob        REAL NOT NULL,
			predicted_winner TEXT NOT NULL,
			confidence       REAL NOT NULL,
			confidence_tier  TEXT NOT NULL,

			away_pressure    REAL, away_possession REAL, away_momentum REAL,
			away_territorial REAL, away_xg_avg     REAL, away_hdc_avg  REAL,
			home_pressure    REAL, home_possession REAL, home_momentum REAL,
			home_territorial REAL, home_xg_avg     REAL, home_hdc_avg  REAL,

			actual_winner    TEXT,
			is_correct       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_resolved ON predictions(actual_winner)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_date ON predictions(game_date)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM predictions`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}

	s := &PredictionStore{db: db, rowCount: count, logger: logger.Sugar()}
	s.logger.Infow("Prediction store opened", "path", path, "rows", count)
	return s, nil
}

// Insert appends one unresolved prediction.
func (s *PredictionStore) Insert(ctx context.Context, r *models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			game_id, game_date, away_team, home_team, created_at,
			away_prob, home_prob, predicted_winner, confidence, confidence_tier,
			away_pressure, away_possession, away_momentum,
			away_territorial, away_xg_avg, away_hdc_avg,
			home_pressure, home_possession, home_momentum,
			home_territorial, home_xg_avg, home_hdc_avg
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.GameID, r.GameDate, r.AwayTeam, r.HomeTeam,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.AwayProb, r.HomeProb, r.PredictedWinner, r.Confidence, string(r.ConfidenceTier),
		r.AwayScores.Pressure, r.AwayScores.Possession, r.AwayScores.Momentum,
		r.AwayScores.Territorial, r.AwayScores.XGAvg, r.AwayScores.HDCAvg,
		r.HomeScores.Pressure, r.HomeScores.Possession, r.HomeScores.Momentum,
		r.HomeScores.Territorial, r.HomeScores.XGAvg, r.HomeScores.HDCAvg,
	)
	if err != nil {
		return fmt.Errorf("prediction insert: %w", err)
	}

	s.rowCount++
	if s.rowCount > maxPredictionRows {
		s.evict()
	}
	return nil
}

// Resolve fills in the actual winner for an open prediction and reports
// whether the forecast was correct.
func (s *PredictionStore) Resolve(ctx context.Context, gameID, actualWinner string) (correct bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var predicted string
	var resolved sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT predicted_winner, actual_winner FROM predictions WHERE game_id = ?`,
		gameID).Scan(&predicted, &resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrPredictionNotFound
	}
	if err != nil {
		return false, fmt.Errorf("prediction lookup %s: %w", gameID, err)
	}
	if resolved.Valid {
		return false, fmt.Errorf("prediction %s already resolved", gameID)
	}

	correct = predicted == actualWinner
	_, err = s.db.ExecContext(ctx,
		`UPDATE predictions SET actual_winner = ?, is_correct = ? WHERE game_id = ?`,
		actualWinner, boolToInt(correct), gameID)
	if err != nil {
		return false, fmt.Errorf("prediction resolve %s: %w", gameID, err)
	}
	return correct, nil
}

// Get returns one prediction by game ID.
func (s *PredictionStore) Get(ctx context.Context, gameID string) (*models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("prediction get %s: %w", gameID, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, ErrPredictionNotFound
	}
	return scanPrediction(rows)
}

// ResolvedOutcomes returns every resolved prediction, oldest first. This
// feeds the weight re-fit.
func (s *PredictionStore) ResolvedOutcomes(ctx context.Context) ([]models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE actual_winner IS NOT NULL ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("resolved outcomes: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRecord
	for rows.Next() {
		r, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Counts returns (total, resolved, correct) for the accuracy scoreboard.
func (s *PredictionStore) Counts(ctx context.Context) (total, resolved, correct int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(actual_winner),
		       COALESCE(SUM(is_correct), 0)
		FROM predictions
	`).Scan(&total, &resolved, &correct)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("prediction counts: %w", err)
	}
	return total, resolved, correct, nil
}

const selectColumns = `
	SELECT game_id, game_date, away_team, home_team, created_at,
	       away_prob, home_prob, predicted_winner, confidence, confidence_tier,
	       away_pressure, away_possession, away_momentum,
	       away_territorial, away_xg_avg, away_hdc_avg,
	       home_pressure, home_possession, home_momentum,
	       home_territorial, home_xg_avg, home_hdc_avg,
	       actual_winner, is_correct
	FROM predictions`

func scanPrediction(rows *sql.Rows) (*models.PredictionRecord, error) {
	var r models.PredictionRecord
	var createdAt, tier string
	var actual sql.NullString
	var isCorrect sql.NullInt64
	err := rows.Scan(&r.GameID, &r.GameDate, &r.AwayTeam, &r.HomeTeam, &createdAt,
		&r.AwayProb, &r.HomeProb, &r.PredictedWinner, &r.Confidence, &tier,
		&r.AwayScores.Pressure, &r.AwayScores.Possession, &r.AwayScores.Momentum,
		&r.AwayScores.Territorial, &r.AwayScores.XGAvg, &r.AwayScores.HDCAvg,
		&r.HomeScores.Pressure, &r.HomeScores.Possession, &r.HomeScores.Momentum,
		&r.HomeScores.Territorial, &r.HomeScores.XGAvg, &r.HomeScores.HDCAvg,
		&actual, &isCorrect)
	if err != nil {
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	r.ConfidenceTier = models.ConfidenceTier(tier)
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = ts
	}
	if actual.Valid {
		r.ActualWinner = actual.String
		r.Resolved = true
		r.IsCorrect = isCorrect.Int64 == 1
	}
	return &r, nil
}

func (s *PredictionStore) evict() {
	toDelete := int64(float64(s.rowCount) * evictShare)
	if toDelete < 1 {
		toDelete = 1
	}
	res, err := s.db.Exec(`DELETE FROM predictions WHERE id IN (
		SELECT id FROM predictions ORDER BY id ASC LIMIT ?
	)`, toDelete)
	if err != nil {
		s.logger.Warnw("Prediction log eviction failed", "error", err)
		return
	}
	deleted, _ := res.RowsAffected()
	s.rowCount -= deleted
	s.logger.Infow("Prediction log evicted oldest rows", "deleted", deleted)
}

func (s *PredictionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
