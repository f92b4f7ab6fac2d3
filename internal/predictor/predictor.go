// Package predictor turns two teams' rolling venue profiles into a
// pre-game win probability, and keeps the model honest with an online
// accuracy loop that periodically re-fits the composite weights.
package predictor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rinklab/analytics-api/internal/models"
	"github.com/rinklab/analytics-api/internal/store"
)

const (
	weightSumTolerance = 1e-6

	// Home-ice bonus in composite-score units when no home record exists.
	// Teams with a home win rate above .500 earn a learned bonus instead.
	homeIceDefault    = 1.5
	homeIceLearnScale = 10.0

	// Head-to-head edge: full scale when one team owns the matchup.
	headToHeadScale = 2.0

	// Rest multipliers: back-to-back penalty, small bonus for 3+ days off.
	restBackToBack = 0.92
	restLong       = 1.02

	tierHighThreshold   = 0.65
	tierMediumThreshold = 0.55

	// Confidence blend weights.
	confDataQuality = 0.35
	confSeparation  = 0.25
	confGamesPlayed = 0.25
	confConsistency = 0.15

	lowConfidence = 0.1
)

// predictionNamespace derives deterministic prediction IDs so a repeated
// request for the same matchup and date maps to the same record.
var predictionNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("rinklab.predictions"))

// Weights is the convex combination applied to a team's rolling-average
// composite metrics. A valid set sums to 1.0.
type Weights struct {
	Pressure    float64 `json:"pressure"`
	Possession  float64 `json:"possession"`
	Momentum    float64 `json:"momentum"`
	Territorial float64 `json:"territorial"`
	XG          float64 `json:"xg_avg"`
	HDC         float64 `json:"hdc_avg"`
}

// DefaultWeights is the hand-tuned starting point before any re-fit.
var DefaultWeights = Weights{
	Pressure:    0.28,
	Possession:  0.22,
	Momentum:    0.17,
	Territorial: 0.15,
	XG:          0.10,
	HDC:         0.08,
}

func (w Weights) Sum() float64 {
	return w.Pressure + w.Possession + w.Momentum + w.Territorial + w.XG + w.HDC
}

// Validate rejects weight sets that do not sum to 1.0.
func (w Weights) Validate() error {
	if d := math.Abs(w.Sum() - 1.0); d > weightSumTolerance {
		return fmt.Errorf("weights sum to %.9f, want 1.0", w.Sum())
	}
	return nil
}

// Score applies the weights to a team's composite averages.
func (w Weights) Score(cs models.CompositeScores) float64 {
	return w.Pressure*cs.Pressure +
		w.Possession*cs.Possession +
		w.Momentum*cs.Momentum +
		w.Territorial*cs.Territorial +
		w.XG*cs.XGAvg +
		w.HDC*cs.HDCAvg
}

// Predictor computes win probabilities from the performance store. The
// weight set is swappable at runtime; only the learning loop writes it.
type Predictor struct {
	store *store.Store

	mu      sync.RWMutex
	weights Weights

	logger *zap.SugaredLogger
}

func New(perf *store.Store, weights Weights, logger *zap.Logger) (*Predictor, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("predictor weights: %w", err)
	}
	return &Predictor{store: perf, weights: weights, logger: logger.Sugar()}, nil
}

// Weights returns the active weight set.
func (p *Predictor) Weights() Weights {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.weights
}

// SetWeights swaps the active weight set. Invalid sets are rejected so a
// bad re-fit can never poison live predictions.
func (p *Predictor) SetWeights(w Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.weights = w
	p.mu.Unlock()
	return nil
}

// PredictionID derives the deterministic ID for a matchup on a date.
func PredictionID(awayTeam, homeTeam, gameDate string) string {
	return uuid.NewSHA1(predictionNamespace,
		[]byte(gameDate+"/"+awayTeam+"@"+homeTeam)).String()
}

// Predict produces a PredictionRecord for away at home on gameDate
// (YYYY-MM-DD). Teams with no history predict off neutral defaults;
// missing data lowers confidence, it never errors.
func (p *Predictor) Predict(ctx context.Context, awayTeam, homeTeam, gameDate string) (*models.PredictionRecord, error) {
	if awayTeam == "" || homeTeam == "" || awayTeam == homeTeam {
		return nil, fmt.Errorf("invalid matchup %q at %q", awayTeam, homeTeam)
	}

	var awayProf, homeProf *models.ProfileSummary
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		awayProf = p.store.GetProfile(awayTeam, models.VenueAway)
		return nil
	})
	g.Go(func() error {
		homeProf = p.store.GetProfile(homeTeam, models.VenueHome)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weights := p.Weights()
	awayScore := weights.Score(awayProf.Averages)
	homeScore := weights.Score(homeProf.Averages) + p.homeIceBonus(homeTeam)

	edge := p.headToHeadEdge(awayTeam, homeTeam)
	awayScore += edge
	homeScore -= edge

	awayScore *= p.restFactor(awayTeam, gameDate)
	homeScore *= p.restFactor(homeTeam, gameDate)

	awayScore = math.Max(awayScore, 0)
	homeScore = math.Max(homeScore, 0)

	rec := &models.PredictionRecord{
		GameID:     PredictionID(awayTeam, homeTeam, gameDate),
		GameDate:   gameDate,
		AwayTeam:   awayTeam,
		HomeTeam:   homeTeam,
		CreatedAt:  time.Now().UTC(),
		AwayScores: awayProf.Averages,
		HomeScores: homeProf.Averages,
	}

	total := awayScore + homeScore
	if total == 0 {
		rec.AwayProb, rec.HomeProb = 50, 50
		rec.PredictedWinner = homeTeam
		rec.Confidence = lowConfidence
		rec.ConfidenceTier = models.TierLow
		return rec, nil
	}

	rec.AwayProb = awayScore / total * 100
	rec.HomeProb = homeScore / total * 100
	if rec.AwayProb > rec.HomeProb {
		rec.PredictedWinner = awayTeam
	} else {
		rec.PredictedWinner = homeTeam
	}

	rec.Confidence = p.confidence(awayProf, homeProf, rec.AwayProb, rec.HomeProb)
	rec.ConfidenceTier = tierFor(rec.Confidence)

	p.logger.Infow("Prediction computed",
		"away", awayTeam, "home", homeTeam, "date", gameDate,
		"away_prob", rec.AwayProb, "home_prob", rec.HomeProb,
		"confidence", rec.Confidence, "tier", rec.ConfidenceTier)
	return rec, nil
}

// homeIceBonus is either learned from a winning home record or the fixed
// default when the record is absent or below .500.
func (p *Predictor) homeIceBonus(team string) float64 {
	rate := p.store.HomeWinRate(team)
	if rate <= 0.5 {
		return homeIceDefault
	}
	learned := (rate - 0.5) * homeIceLearnScale
	return math.Max(learned, homeIceDefault)
}

// headToHeadEdge is positive when the away team owns the matchup history.
func (p *Predictor) headToHeadEdge(awayTeam, homeTeam string) float64 {
	awayWins, homeWins := p.store.HeadToHead(awayTeam, homeTeam)
	total := awayWins + homeWins
	if total == 0 {
		return 0
	}
	return (float64(awayWins)/float64(total) - 0.5) * 2 * headToHeadScale
}

// restFactor penalizes back-to-backs and rewards 3+ days off. Unknown
// schedules are neutral.
func (p *Predictor) restFactor(team, gameDate string) float64 {
	last := p.store.LastGameDate(team)
	if last == "" {
		return 1.0
	}
	lastDate, err := time.Parse("2006-01-02", last)
	if err != nil {
		return 1.0
	}
	game, err := time.Parse("2006-01-02", gameDate)
	if err != nil {
		return 1.0
	}
	days := int(game.Sub(lastDate).Hours() / 24)
	switch {
	case days <= 1:
		return restBackToBack
	case days >= 3:
		return restLong
	default:
		return 1.0
	}
}

func (p *Predictor) confidence(away, home *models.ProfileSummary, awayProb, homeProb float64) float64 {
	dataQuality := (away.Confidence + home.Confidence) / 2
	separation := math.Min(math.Abs(awayProb-homeProb)/25, 1)
	gamesConf := math.Min(float64(away.GamesPlayed+home.GamesPlayed)/20, 1)
	consistency := (metricConsistency(away.Averages) + metricConsistency(home.Averages)) / 2

	c := confDataQuality*dataQuality +
		confSeparation*separation +
		confGamesPlayed*gamesConf +
		confConsistency*consistency
	return math.Max(0, math.Min(c, 1))
}

// metricConsistency is a coarse proxy: a team whose composite metrics
// agree with each other is easier to trust than one pulling in opposite
// directions.
func metricConsistency(cs models.CompositeScores) float64 {
	vals := []float64{cs.Pressure, cs.Possession, cs.Momentum, cs.Territorial, cs.XGAvg, cs.HDCAvg}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	spread := (hi - lo) / 100
	return math.Max(0, 1-spread)
}

func tierFor(confidence float64) models.ConfidenceTier {
	switch {
	case confidence >= tierHighThreshold:
		return models.TierHigh
	case confidence >= tierMediumThreshold:
		return models.TierMedium
	default:
		return models.TierLow
	}
}
