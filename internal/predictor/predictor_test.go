package predictor

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
	"github.com/rinklab/analytics-api/internal/store"
)

func testPredictor(t *testing.T) (*Predictor, *store.Store) {
	t.Helper()
	perf := store.New(store.DefaultCap, nil, zap.NewNop())
	p, err := New(perf, DefaultWeights, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return p, perf
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if err := DefaultWeights.Validate(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(DefaultWeights.Sum()-1.0) > 1e-6 {
		t.Errorf("sum = %v", DefaultWeights.Sum())
	}
}

func TestInvalidWeightsRejected(t *testing.T) {
	bad := Weights{Pressure: 0.5, Possession: 0.5, Momentum: 0.5}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	perf := store.New(store.DefaultCap, nil, zap.NewNop())
	if _, err := New(perf, bad, zap.NewNop()); err == nil {
		t.Fatal("constructor accepted invalid weights")
	}

	p, _ := testPredictor(t)
	if err := p.SetWeights(bad); err == nil {
		t.Fatal("SetWeights accepted invalid weights")
	}
	if p.Weights() != DefaultWeights {
		t.Error("rejected weights replaced the active set")
	}
}

func TestPredictZeroHistoryDefaults(t *testing.T) {
	p, _ := testPredictor(t)

	rec, err := p.Predict(context.Background(), "CHI", "STL", "2025-11-01")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rec.AwayProb+rec.HomeProb-100) > 1e-6 {
		t.Errorf("probs sum to %v, want 100", rec.AwayProb+rec.HomeProb)
	}
	// Equal neutral profiles: home ice alone decides it.
	if rec.PredictedWinner != "STL" {
		t.Errorf("predicted %s, want home team with neutral histories", rec.PredictedWinner)
	}
	if rec.ConfidenceTier != models.TierLow {
		t.Errorf("tier = %s, want low with zero history", rec.ConfidenceTier)
	}
}

func TestPredictFavorsStrongerProfile(t *testing.T) {
	p, perf := testPredictor(t)
	ctx := context.Background()

	strong := models.CompositeScores{
		Pressure: 70, Possession: 65, Momentum: 68,
		Territorial: 66, XGAvg: 72, HDCAvg: 69,
	}
	weak := models.CompositeScores{
		Pressure: 38, Possession: 42, Momentum: 36,
		Territorial: 40, XGAvg: 35, HDCAvg: 39,
	}
	for i := 0; i < 10; i++ {
		if err := perf.AppendGame(ctx, "COL", models.VenueAway, strong); err != nil {
			t.Fatal(err)
		}
		if err := perf.AppendGame(ctx, "SJS", models.VenueHome, weak); err != nil {
			t.Fatal(err)
		}
	}

	rec, err := p.Predict(ctx, "COL", "SJS", "2025-11-01")
	if err != nil {
		t.Fatal(err)
	}
	if rec.PredictedWinner != "COL" {
		t.Errorf("predicted %s, want the dominant away team", rec.PredictedWinner)
	}
	if rec.AwayProb <= rec.HomeProb {
		t.Errorf("away prob %v not above home prob %v", rec.AwayProb, rec.HomeProb)
	}
	if math.Abs(rec.AwayProb+rec.HomeProb-100) > 1e-6 {
		t.Errorf("probs sum to %v", rec.AwayProb+rec.HomeProb)
	}
	if rec.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want well above the zero-history case", rec.Confidence)
	}
}

func TestPredictBackToBackPenalty(t *testing.T) {
	p, perf := testPredictor(t)
	ctx := context.Background()

	baseline, err := p.Predict(ctx, "NYR", "NJD", "2025-11-02")
	if err != nil {
		t.Fatal(err)
	}

	// Away team played the night before.
	if err := perf.RecordResult(ctx, store.GameResult{
		GameID: "g-prev", GameDate: "2025-11-01",
		HomeTeam: "NYR", AwayTeam: "BUF", Winner: "BUF",
	}); err != nil {
		t.Fatal(err)
	}

	tired, err := p.Predict(ctx, "NYR", "NJD", "2025-11-02")
	if err != nil {
		t.Fatal(err)
	}
	if tired.AwayProb >= baseline.AwayProb {
		t.Errorf("back-to-back away prob %v not below rested %v",
			tired.AwayProb, baseline.AwayProb)
	}
}

func TestPredictHeadToHeadEdge(t *testing.T) {
	p, perf := testPredictor(t)
	ctx := context.Background()

	baseline, err := p.Predict(ctx, "FLA", "TBL", "2025-12-01")
	if err != nil {
		t.Fatal(err)
	}

	// Away team has swept the season series so far.
	for i, id := range []string{"h1", "h2", "h3"} {
		date := []string{"2025-10-04", "2025-10-20", "2025-11-10"}[i]
		if err := perf.RecordResult(ctx, store.GameResult{
			GameID: id, GameDate: date,
			HomeTeam: "TBL", AwayTeam: "FLA", Winner: "FLA",
		}); err != nil {
			t.Fatal(err)
		}
	}

	edged, err := p.Predict(ctx, "FLA", "TBL", "2025-12-01")
	if err != nil {
		t.Fatal(err)
	}
	if edged.AwayProb <= baseline.AwayProb {
		t.Errorf("head-to-head away prob %v not above baseline %v",
			edged.AwayProb, baseline.AwayProb)
	}
}

func TestPredictRejectsBadMatchup(t *testing.T) {
	p, _ := testPredictor(t)
	ctx := context.Background()

	if _, err := p.Predict(ctx, "BOS", "BOS", "2025-11-01"); err == nil {
		t.Error("expected error for a team playing itself")
	}
	if _, err := p.Predict(ctx, "", "BOS", "2025-11-01"); err == nil {
		t.Error("expected error for empty away team")
	}
}

func TestPredictionIDDeterministic(t *testing.T) {
	a := PredictionID("EDM", "CGY", "2026-01-10")
	b := PredictionID("EDM", "CGY", "2026-01-10")
	if a != b {
		t.Errorf("ids differ: %s vs %s", a, b)
	}
	if c := PredictionID("CGY", "EDM", "2026-01-10"); c == a {
		t.Error("reversed matchup produced the same id")
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		conf float64
		want models.ConfidenceTier
	}{
		{0.70, models.TierHigh},
		{0.65, models.TierHigh},
		{0.60, models.TierMedium},
		{0.55, models.TierMedium},
		{0.54, models.TierLow},
		{0.10, models.TierLow},
	}
	for _, c := range cases {
		if got := tierFor(c.conf); got != c.want {
			t.Errorf("tierFor(%v) = %s, want %s", c.conf, got, c.want)
		}
	}
}
