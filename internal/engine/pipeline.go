package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

// Pipeline runs one game's events through classification, valuation, and
// aggregation. It holds no mutable state between games and never touches
// the performance store, so replaying the same payload is bit-identical.
type Pipeline struct {
	classifier *Classifier
	valuer     *Valuer
	aggregator *Aggregator
	possession *PossessionAnalyzer
	logger     *zap.SugaredLogger
}

// NewPipeline wires the engine components together.
func NewPipeline(logger *zap.Logger) *Pipeline {
	sugar := logger.Sugar()
	classifier := NewClassifier()
	return &Pipeline{
		classifier: classifier,
		valuer:     NewValuer(classifier, sugar),
		aggregator: NewAggregator(sugar),
		possession: NewPossessionAnalyzer(sugar),
		logger:     sugar,
	}
}

// Process computes the full GameMetrics for one game. It validates the
// payload shape first: a malformed game is rejected whole so no partial
// state can leak downstream.
func (p *Pipeline) Process(payload *models.GamePayload) (*models.GameMetrics, error) {
	if payload == nil || len(payload.Events) == 0 {
		return nil, fmt.Errorf("game %s: empty event list", gameIDOf(payload))
	}
	if payload.Boxscore.AwayTeam == "" || payload.Boxscore.HomeTeam == "" {
		return nil, fmt.Errorf("game %s: boxscore missing team identifiers", payload.GameID)
	}

	shotsByIndex := make(map[int]*models.ShotRecord)
	for i := range payload.Events {
		ev := &payload.Events[i]
		if !ev.Type.Valid() {
			p.logger.Warnw("Dropping event of unknown type", "type", ev.Type, "game_id", payload.GameID)
			continue
		}
		if !ev.Type.IsShotAttempt() {
			continue
		}
		rec := p.valuer.Value(payload.GameID, ev, payload.Events[:i])
		shotsByIndex[i] = &rec
	}

	gm := p.aggregator.Aggregate(payload, shotsByIndex)
	p.possession.Annotate(payload, gm)

	// Attach each team's shot records in event order.
	for i := 0; i < len(payload.Events); i++ {
		rec, ok := shotsByIndex[i]
		if !ok {
			continue
		}
		if t := gm.TeamMetrics(rec.TeamID); t != nil {
			t.Shots = append(t.Shots, *rec)
		}
	}

	return gm, nil
}

// Composites reduces one team's game metrics to the six profile scores,
// each on a ~0-100 scale. The opponent's totals supply the denominators
// for the share-based scores.
func (p *Pipeline) Composites(team, opp *models.TeamGameMetrics) models.CompositeScores {
	tg, og := &team.Game, &opp.Game

	return models.CompositeScores{
		Pressure:    share(float64(tg.HighDangerShots), float64(og.HighDangerShots)),
		Possession:  tg.CorsiPct(),
		Momentum:    clamp01to100(50 + 5*float64(tg.Takeaways-tg.Giveaways) + 2*float64(tg.RushShots)),
		Territorial: 0.5*share(float64(tg.OffZoneShots), float64(og.OffZoneShots)) + 0.5*tg.FaceoffPct(),
		XGAvg:       clamp01to100(regulationXG(team) / regulationPeriods * 60),
		HDCAvg:      clamp01to100(float64(tg.HighDangerShots) * 6),
	}
}

// regulationXG sums xG over periods 1-3 only; overtime stays out of the
// per-period rate.
func regulationXG(t *models.TeamGameMetrics) float64 {
	var xg float64
	for p, pm := range t.Periods {
		if p <= regulationPeriods {
			xg += pm.XG
		}
	}
	return xg
}

// share is for/(for+against) on a 0-100 scale with the neutral 50 prior.
func share(f, a float64) float64 {
	if f+a == 0 {
		return 50.0
	}
	return f / (f + a) * 100
}

func clamp01to100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func gameIDOf(p *models.GamePayload) string {
	if p == nil {
		return "<nil>"
	}
	return p.GameID
}
