package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

// regulationPeriods is the number of periods that fold into game averages.
// Later periods (overtime, shootout) are tracked but never averaged.
const regulationPeriods = 3

// Aggregator rolls classified, valued events into per-period team totals in
// a single sequential pass. Counters are only ever incremented for the
// acting team, with two exceptions that mirror how the sport is scored:
// power-play attempts accrue to the opponent of a penalized team, and
// blocked-shot credit goes to the blocker.
type Aggregator struct {
	logger *zap.SugaredLogger
}

// NewAggregator returns an Aggregator.
func NewAggregator(logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{logger: logger}
}

// skaterCounts parses the four-digit situation code into away and home
// skater counts. ok is false when the code is absent or malformed.
func skaterCounts(code string) (away, home int, ok bool) {
	if len(code) != 4 {
		return 0, 0, false
	}
	a := int(code[1] - '0')
	h := int(code[2] - '0')
	if a < 0 || a > 6 || h < 0 || h > 6 {
		return 0, 0, false
	}
	return a, h, true
}

// onPowerPlay reports whether the acting team has a skater advantage.
func onPowerPlay(actingIsHome bool, code string) bool {
	away, home, ok := skaterCounts(code)
	if !ok {
		return false
	}
	if actingIsHome {
		return home > away
	}
	return away > home
}

// Aggregate builds both teams' per-period metrics from one game's ordered
// events. shotsByIndex carries the valued ShotRecord for every shot-class
// event, keyed by the event's position in the list. Events for teams other
// than the two boxscore teams are ignored.
func (a *Aggregator) Aggregate(payload *models.GamePayload, shotsByIndex map[int]*models.ShotRecord) *models.GameMetrics {
	box := payload.Boxscore
	gm := &models.GameMetrics{
		GameID:   payload.GameID,
		GameDate: payload.GameDate,
		Boxscore: box,
		Away:     &models.TeamGameMetrics{TeamID: box.AwayTeam, Periods: map[int]*models.PeriodMetrics{}},
		Home:     &models.TeamGameMetrics{TeamID: box.HomeTeam, Periods: map[int]*models.PeriodMetrics{}},
	}

	for i := range payload.Events {
		ev := &payload.Events[i]

		var acting, opposing *models.TeamGameMetrics
		switch ev.TeamID {
		case box.AwayTeam:
			acting, opposing = gm.Away, gm.Home
		case box.HomeTeam:
			acting, opposing = gm.Home, gm.Away
		default:
			a.logger.Debugw("Ignoring event for unknown team",
				"team_id", ev.TeamID, "type", ev.Type)
			continue
		}
		actingIsHome := acting == gm.Home

		pm := periodMetrics(acting, ev.Period)
		opm := periodMetrics(opposing, ev.Period)

		gsFor, gsOpp := gameScoreDeltas(ev)
		pm.GameScore += gsFor
		opm.GameScore += gsOpp

		switch ev.Type {
		case models.EventGoal:
			pm.Goals++
			pm.ShotsOnGoal++
			pm.CorsiFor++
			opm.CorsiAgainst++
			if onPowerPlay(actingIsHome, ev.SituationCode) {
				pm.PPGoals++
			}
		case models.EventShotOnGoal:
			pm.ShotsOnGoal++
			pm.CorsiFor++
			opm.CorsiAgainst++
		case models.EventMissedShot:
			pm.CorsiFor++
			opm.CorsiAgainst++
		case models.EventBlockedShot:
			// Attempt belongs to the shooter; the block to the opponent.
			pm.CorsiFor++
			opm.CorsiAgainst++
			opm.BlockedShots++
		case models.EventFaceoff:
			pm.FaceoffWins++
			opm.FaceoffLosses++
		case models.EventHit:
			pm.Hits++
		case models.EventGiveaway:
			pm.Giveaways++
		case models.EventTakeaway:
			pm.Takeaways++
		case models.EventPenalty:
			mins := ev.PenaltyMinutes
			if mins == 0 {
				mins = 2
			}
			pm.PenaltyMins += mins
			// The opponent gets the power play.
			opm.PPAttempts++
		}

		if rec, ok := shotsByIndex[i]; ok {
			pm.XG += rec.XG
			switch rec.ZoneOfOrigin {
			case models.ZoneOffensive:
				pm.OffZoneShots++
			case models.ZoneNeutral:
				pm.NeutralZoneShots++
			case models.ZoneDefensive:
				pm.DefZoneShots++
			}
			switch rec.PlayType {
			case models.PlayRush:
				pm.RushShots++
			case models.PlayForecheckCycle:
				pm.ForecheckShots++
			}
			if rec.HighDanger {
				pm.HighDangerShots++
			}
		}
	}

	finalize(gm.Away)
	finalize(gm.Home)
	return gm
}

// finalize sums the per-period metrics into game totals. Overtime and
// shootout periods are included in totals but have no per-period averaging
// role; regulation periods are summed in order for reproducibility.
func finalize(t *models.TeamGameMetrics) {
	t.Game = models.PeriodMetrics{TeamID: t.TeamID}
	periods := make([]int, 0, len(t.Periods))
	for p := range t.Periods {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	for _, p := range periods {
		t.Game.Add(t.Periods[p])
	}
}
