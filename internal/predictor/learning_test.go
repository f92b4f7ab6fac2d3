package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
	"github.com/rinklab/analytics-api/internal/store"
)

func testPredictionStore(t *testing.T) *PredictionStore {
	t.Helper()
	ps, err := OpenPredictionStore(filepath.Join(t.TempDir(), "predictions.db"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ps.Close() })
	return ps
}

func samplePrediction(gameID string, homeEdge float64) *models.PredictionRecord {
	base := models.CompositeScores{
		Pressure: 50, Possession: 50, Momentum: 50,
		Territorial: 50, XGAvg: 50, HDCAvg: 50,
	}
	home := base
	home.Pressure += homeEdge
	rec := &models.PredictionRecord{
		GameID:     gameID,
		GameDate:   "2025-11-01",
		AwayTeam:   "CHI",
		HomeTeam:   "STL",
		CreatedAt:  time.Now().UTC(),
		AwayProb:   48,
		HomeProb:   52,
		Confidence: 0.5,

		ConfidenceTier: models.TierLow,
		AwayScores:     base,
		HomeScores:     home,
	}
	if homeEdge >= 0 {
		rec.PredictedWinner = "STL"
	} else {
		rec.PredictedWinner = "CHI"
	}
	return rec
}

func TestPredictionStoreRoundTrip(t *testing.T) {
	ps := testPredictionStore(t)
	ctx := context.Background()

	rec := samplePrediction("game-1", 5)
	if err := ps.Insert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := ps.Get(ctx, "game-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.HomeTeam != "STL" || got.Resolved {
		t.Errorf("got %+v, want unresolved STL prediction", got)
	}
	if got.HomeScores.Pressure != 55 {
		t.Errorf("home pressure = %v, want 55", got.HomeScores.Pressure)
	}

	correct, err := ps.Resolve(ctx, "game-1", "STL")
	if err != nil {
		t.Fatal(err)
	}
	if !correct {
		t.Error("predicted winner won but marked incorrect")
	}

	got, err = ps.Get(ctx, "game-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Resolved || !got.IsCorrect || got.ActualWinner != "STL" {
		t.Errorf("resolved record = %+v", got)
	}

	// Double resolution is a caller bug.
	if _, err := ps.Resolve(ctx, "game-1", "CHI"); err == nil {
		t.Error("expected error on second resolve")
	}
}

func TestPredictionStoreNotFound(t *testing.T) {
	ps := testPredictionStore(t)
	ctx := context.Background()

	if _, err := ps.Get(ctx, "missing"); !errors.Is(err, ErrPredictionNotFound) {
		t.Errorf("Get error = %v, want ErrPredictionNotFound", err)
	}
	if _, err := ps.Resolve(ctx, "missing", "STL"); !errors.Is(err, ErrPredictionNotFound) {
		t.Errorf("Resolve error = %v, want ErrPredictionNotFound", err)
	}
}

func TestPredictionStoreCounts(t *testing.T) {
	ps := testPredictionStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := ps.Insert(ctx, samplePrediction(fmt.Sprintf("g%d", i), 5)); err != nil {
			t.Fatal(err)
		}
	}
	// Two correct, one wrong, one open.
	ps.Resolve(ctx, "g0", "STL")
	ps.Resolve(ctx, "g1", "STL")
	ps.Resolve(ctx, "g2", "CHI")

	total, resolved, correct, err := ps.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 || resolved != 3 || correct != 2 {
		t.Errorf("counts = %d/%d/%d, want 4/3/2", total, resolved, correct)
	}
}

func TestLoopAccuracy(t *testing.T) {
	ps := testPredictionStore(t)
	perf := store.New(store.DefaultCap, nil, zap.NewNop())
	pred, err := New(perf, DefaultWeights, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	loop := NewLoop(ps, pred, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := loop.AddPrediction(ctx, samplePrediction(fmt.Sprintf("g%d", i), 5)); err != nil {
			t.Fatal(err)
		}
	}
	loop.Resolve(ctx, "g0", "STL")
	loop.Resolve(ctx, "g1", "CHI")
	loop.Resolve(ctx, "g2", "STL")

	sum, err := loop.Accuracy(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalPredictions != 4 || sum.Resolved != 3 || sum.Correct != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if math.Abs(sum.Accuracy-2.0/3) > 1e-9 {
		t.Errorf("accuracy = %v, want 2/3", sum.Accuracy)
	}

	if _, err := loop.Accuracy(ctx); err != nil {
		t.Fatal(err)
	}
	if err := loop.Resolve(ctx, "nope", "STL"); !errors.Is(err, ErrPredictionNotFound) {
		t.Errorf("Resolve missing = %v, want ErrPredictionNotFound", err)
	}
}

func TestLoopRefitShiftsWeightTowardSignal(t *testing.T) {
	ps := testPredictionStore(t)
	perf := store.New(store.DefaultCap, nil, zap.NewNop())
	pred, err := New(perf, DefaultWeights, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	loop := NewLoop(ps, pred, nil, zap.NewNop())
	ctx := context.Background()

	// Pressure differential predicts the winner perfectly; every other
	// metric is flat. The refit after 25 resolutions must shift weight
	// onto pressure.
	for i := 0; i < refitInterval; i++ {
		edge := 5.0
		winner := "STL"
		if i%2 == 1 {
			edge = -5.0
			winner = "CHI"
		}
		rec := samplePrediction(fmt.Sprintf("game-%02d", i), edge)
		if err := loop.AddPrediction(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if err := loop.Resolve(ctx, rec.GameID, winner); err != nil {
			t.Fatal(err)
		}
	}

	w := pred.Weights()
	if err := w.Validate(); err != nil {
		t.Fatalf("re-fitted weights invalid: %v", err)
	}
	if w == DefaultWeights {
		t.Fatal("refit never ran")
	}
	if w.Pressure <= DefaultWeights.Pressure {
		t.Errorf("pressure weight = %v, want above default %v",
			w.Pressure, DefaultWeights.Pressure)
	}
	// Flat metrics carry no correlation: 50/50 blend with zero halves them.
	if math.Abs(w.Possession-DefaultWeights.Possession/2) > 1e-9 {
		t.Errorf("possession weight = %v, want %v",
			w.Possession, DefaultWeights.Possession/2)
	}

	sum, err := loop.Accuracy(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.LastRefitAt != refitInterval {
		t.Errorf("last refit at %d, want %d", sum.LastRefitAt, refitInterval)
	}
}
