package models

import (
	"encoding/json"
	"testing"
)

func TestFlexUnmarshal_AllStrings(t *testing.T) {
	input := `[{"type": "goal", "team_id": "EDM", "period": "2", "time_in_period": "754.000", "x": "81.500", "y": "-3.250", "shot_type": "wrist", "situation_code": "1551", "scorer_id": "8478402"}]`

	var events []Event
	err := json.Unmarshal([]byte(input), &events)
	if err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	e := events[0]
	if e.Type != EventGoal {
		t.Errorf("Type = %q, want goal", e.Type)
	}
	if e.Period != 2 {
		t.Errorf("Period = %d, want 2", e.Period)
	}
	if e.TimeInPeriod != 754.0 {
		t.Errorf("TimeInPeriod = %f, want 754.0", e.TimeInPeriod)
	}
	if e.X != 81.5 {
		t.Errorf("X = %f, want 81.5", e.X)
	}
	if e.Y != -3.25 {
		t.Errorf("Y = %f, want -3.25", e.Y)
	}
	if e.ShotType != ShotWrist {
		t.Errorf("ShotType = %q, want wrist", e.ShotType)
	}
	if e.ScorerID != "8478402" {
		t.Errorf("ScorerID = %q, want 8478402", e.ScorerID)
	}
}

func TestFlexUnmarshal_NativeTypes(t *testing.T) {
	input := `[{"type": "shot-on-goal", "team_id": "CGY", "period": 1, "time_in_period": 312.4, "x": 55, "y": 12}]`

	var events []Event
	err := json.Unmarshal([]byte(input), &events)
	if err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	e := events[0]
	if e.TimeInPeriod != 312.4 {
		t.Errorf("TimeInPeriod = %f, want 312.4", e.TimeInPeriod)
	}
	if e.Period != 1 {
		t.Errorf("Period = %d, want 1", e.Period)
	}
}

func TestFlexUnmarshal_MixedTypes(t *testing.T) {
	input := `{"type": "penalty", "team_id": "MTL", "period": "3", "time_in_period": 100, "penalty_minutes": "2"}`

	var e Event
	if err := json.Unmarshal([]byte(input), &e); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if e.Period != 3 || e.PenaltyMinutes != 2 || e.TimeInPeriod != 100 {
		t.Errorf("mixed coercion failed: %+v", e)
	}
}
