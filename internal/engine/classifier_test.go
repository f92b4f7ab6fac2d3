package engine

import (
	"testing"

	"github.com/rinklab/analytics-api/internal/models"
)

func TestZoneOfPartition(t *testing.T) {
	tests := []struct {
		x    float64
		want models.Zone
	}{
		{x: 80, want: models.ZoneOffensive},
		{x: 25.1, want: models.ZoneOffensive},
		{x: 25, want: models.ZoneNeutral},
		{x: 0, want: models.ZoneNeutral},
		{x: -25, want: models.ZoneNeutral},
		{x: -25.1, want: models.ZoneDefensive},
		{x: -90, want: models.ZoneDefensive},
	}
	for _, tt := range tests {
		if got := ZoneOf(tt.x, 0); got != tt.want {
			t.Errorf("ZoneOf(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestZoneOfExhaustive(t *testing.T) {
	// Every coordinate maps to exactly one of the three zones.
	for x := -100.0; x <= 100.0; x += 0.5 {
		matches := 0
		if x > offensiveZoneX {
			matches++
		}
		if x < defensiveZoneX {
			matches++
		}
		if x >= defensiveZoneX && x <= offensiveZoneX {
			matches++
		}
		if matches != 1 {
			t.Fatalf("x=%v matched %d zone predicates", x, matches)
		}
		switch ZoneOf(x, 10) {
		case models.ZoneOffensive, models.ZoneNeutral, models.ZoneDefensive:
		default:
			t.Fatalf("ZoneOf(%v) returned unknown zone", x)
		}
	}
}

func TestClassifyRushAfterTakeawayAndZoneEntry(t *testing.T) {
	// Takeaway then an immediate offensive-zone faceoff win sets both the
	// quick-transition and zone-entry flags: the shot is a rush.
	c := NewClassifier()
	window := []models.Event{
		{Type: models.EventTakeaway, TeamID: "EDM", Period: 1, X: -10, Y: 0},
		{Type: models.EventFaceoff, TeamID: "EDM", Period: 1, X: 69, Y: 22},
	}
	shot := &models.Event{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 80, Y: 1}

	if got := c.ClassifyShotOrigin(shot, window); got != models.PlayRush {
		t.Errorf("ClassifyShotOrigin = %v, want %v", got, models.PlayRush)
	}
}

func TestClassifyRushByIndicatorScore(t *testing.T) {
	c := NewClassifier()
	// Takeaway (+2) and opponent giveaway (+1) reach the score threshold
	// without any flag.
	window := []models.Event{
		{Type: models.EventTakeaway, TeamID: "EDM", Period: 2, X: 0, Y: 5},
		{Type: models.EventGiveaway, TeamID: "CGY", Period: 2, X: 10, Y: 0},
	}
	shot := &models.Event{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 2, X: 60, Y: 0}

	if got := c.ClassifyShotOrigin(shot, window); got != models.PlayRush {
		t.Errorf("ClassifyShotOrigin = %v, want %v", got, models.PlayRush)
	}
}

func TestClassifyDefaultsToForecheckCycle(t *testing.T) {
	c := NewClassifier()

	// No preceding events at all: still exactly one bucket, never empty.
	shot := &models.Event{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 40, Y: 10}
	if got := c.ClassifyShotOrigin(shot, nil); got != models.PlayForecheckCycle {
		t.Errorf("ClassifyShotOrigin(no window) = %v, want %v", got, models.PlayForecheckCycle)
	}

	// Sustained offensive-zone sequence stays a cycle shot.
	window := []models.Event{
		{Type: models.EventHit, TeamID: "EDM", Period: 1, X: 80, Y: 20},
		{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 50, Y: -10},
	}
	if got := c.ClassifyShotOrigin(shot, window); got != models.PlayForecheckCycle {
		t.Errorf("ClassifyShotOrigin(cycle window) = %v, want %v", got, models.PlayForecheckCycle)
	}
	if !c.SustainedPressure(shot, window) {
		t.Error("SustainedPressure = false, want true for offensive-zone sequence")
	}
}

func TestClassifyIgnoresOtherPeriods(t *testing.T) {
	c := NewClassifier()
	window := []models.Event{
		{Type: models.EventTakeaway, TeamID: "EDM", Period: 1, X: 0, Y: 0},
		{Type: models.EventFaceoff, TeamID: "EDM", Period: 1, X: 69, Y: 22},
	}
	shot := &models.Event{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 2, X: 80, Y: 1}

	if got := c.ClassifyShotOrigin(shot, window); got != models.PlayForecheckCycle {
		t.Errorf("indicators from a previous period leaked into classification: got %v", got)
	}
}

func TestRushLookbackWindow(t *testing.T) {
	c := NewClassifier()
	// The takeaway is pushed beyond the lookback by filler events.
	window := []models.Event{
		{Type: models.EventTakeaway, TeamID: "EDM", Period: 1, X: 0, Y: 0},
	}
	for i := 0; i < rushLookback; i++ {
		window = append(window, models.Event{Type: models.EventHit, TeamID: "CGY", Period: 1, X: 0, Y: 0})
	}
	shot := &models.Event{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 40, Y: 0}

	score, quick, _ := c.rushScore(shot, window)
	if quick || score != 0 {
		t.Errorf("rushScore looked past the window: score=%v quickTransition=%v", score, quick)
	}
}
