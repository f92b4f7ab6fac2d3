package engine

import (
	"testing"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

func testPayload(events []models.Event) *models.GamePayload {
	return &models.GamePayload{
		GameID:   "2025020001",
		GameDate: "2026-01-15",
		Boxscore: models.Boxscore{AwayTeam: "EDM", HomeTeam: "CGY", AwayScore: 3, HomeScore: 2},
		Events:   events,
	}
}

func TestCorsiAndFaceoffDefaults(t *testing.T) {
	// A team with no shot attempts and no faceoffs gets the neutral 50.0
	// for both percentages, never a divide-by-zero.
	p := NewPipeline(zap.NewNop())
	gm, err := p.Process(testPayload([]models.Event{
		{Type: models.EventHit, TeamID: "EDM", Period: 1, X: 10, Y: 0},
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	pm := gm.Away.Periods[1]
	if got := pm.CorsiPct(); got != 50.0 {
		t.Errorf("CorsiPct = %v, want 50.0", got)
	}
	if got := pm.FaceoffPct(); got != 50.0 {
		t.Errorf("FaceoffPct = %v, want 50.0", got)
	}
}

func TestAggregateCountersOwningTeamOnly(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	gm, err := p.Process(testPayload([]models.Event{
		{Type: models.EventFaceoff, TeamID: "EDM", Period: 1, X: 0, Y: 0},
		{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 60, Y: 5},
		{Type: models.EventBlockedShot, TeamID: "EDM", Period: 1, X: 55, Y: 0},
		{Type: models.EventHit, TeamID: "CGY", Period: 1, X: 30, Y: 10},
		{Type: models.EventPenalty, TeamID: "CGY", Period: 1, PenaltyMinutes: 2},
		{Type: models.EventGoal, TeamID: "EDM", Period: 1, X: 80, Y: 2, SituationCode: "1541"},
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	edm := gm.Away.Periods[1]
	cgy := gm.Home.Periods[1]

	if edm.FaceoffWins != 1 || cgy.FaceoffLosses != 1 {
		t.Errorf("faceoff: wins=%d losses=%d, want 1/1", edm.FaceoffWins, cgy.FaceoffLosses)
	}
	if edm.ShotsOnGoal != 2 { // shot + goal
		t.Errorf("EDM shots on goal = %d, want 2", edm.ShotsOnGoal)
	}
	if edm.CorsiFor != 3 || cgy.CorsiAgainst != 3 {
		t.Errorf("corsi: for=%d against=%d, want 3/3", edm.CorsiFor, cgy.CorsiAgainst)
	}
	// The blocked attempt belongs to EDM; the block credit to CGY.
	if cgy.BlockedShots != 1 || edm.BlockedShots != 0 {
		t.Errorf("blocked shots: cgy=%d edm=%d, want 1/0", cgy.BlockedShots, edm.BlockedShots)
	}
	if cgy.Hits != 1 || edm.Hits != 0 {
		t.Errorf("hits: cgy=%d edm=%d, want 1/0", cgy.Hits, edm.Hits)
	}
	// CGY took the penalty: CGY gets the minutes, EDM gets the attempt.
	if cgy.PenaltyMins != 2 {
		t.Errorf("CGY penalty minutes = %d, want 2", cgy.PenaltyMins)
	}
	if edm.PPAttempts != 1 {
		t.Errorf("EDM power-play attempts = %d, want 1", edm.PPAttempts)
	}
	// The 5v4 goal with EDM (away) up a skater is a power-play goal.
	if edm.PPGoals != 1 {
		t.Errorf("EDM power-play goals = %d, want 1", edm.PPGoals)
	}
}

func TestAggregateIgnoresUnknownTeams(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	gm, err := p.Process(testPayload([]models.Event{
		{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 60, Y: 5},
		{Type: models.EventShotOnGoal, TeamID: "VAN", Period: 1, X: 60, Y: 5},
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if gm.Away.Game.ShotsOnGoal != 1 {
		t.Errorf("away shots = %d, want 1 (stray-team event must be ignored)", gm.Away.Game.ShotsOnGoal)
	}
	if gm.Home.Game.CorsiAgainst != 1 {
		t.Errorf("home corsi against = %d, want 1", gm.Home.Game.CorsiAgainst)
	}
}

func TestOvertimeKeptSeparate(t *testing.T) {
	p := NewPipeline(zap.NewNop())
	gm, err := p.Process(testPayload([]models.Event{
		{Type: models.EventShotOnGoal, TeamID: "EDM", Period: 1, X: 60, Y: 5},
		{Type: models.EventGoal, TeamID: "EDM", Period: 4, X: 80, Y: 0},
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := gm.Away.Periods[4]; !ok {
		t.Fatal("overtime period not tracked")
	}
	if gm.Away.Periods[4].Goals != 1 {
		t.Errorf("OT goals = %d, want 1", gm.Away.Periods[4].Goals)
	}
	// Game totals still include overtime; regulation xG rate does not.
	if gm.Away.Game.Goals != 1 {
		t.Errorf("game goals = %d, want 1", gm.Away.Game.Goals)
	}
	if otXG := gm.Away.Periods[4].XG; regulationXG(gm.Away) >= gm.Away.Game.XG && otXG > 0 {
		t.Error("overtime xG leaked into the regulation sum")
	}
}

func TestGameScoreAccumulation(t *testing.T) {
	a := NewAggregator(zap.NewNop().Sugar())
	payload := testPayload([]models.Event{
		{Type: models.EventGoal, TeamID: "EDM", Period: 1, X: 80, Y: 0, Assist1ID: "p1", Assist2ID: "p2"},
		{Type: models.EventFaceoff, TeamID: "CGY", Period: 1, X: 0, Y: 0},
	})
	gm := a.Aggregate(payload, nil)

	// Goal 0.75 + shot 0.075 + assists 0.70 and 0.55, minus the faceoff loss.
	want := 0.75 + 0.075 + 0.70 + 0.55 - 0.01
	if got := gm.Away.Game.GameScore; !almostEqual(got, want) {
		t.Errorf("EDM game score = %v, want %v", got, want)
	}
	if got := gm.Home.Game.GameScore; !almostEqual(got, 0.01) {
		t.Errorf("CGY game score = %v, want 0.01", got)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
