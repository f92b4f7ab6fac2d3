package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

// nzTurnoverRadius is the spatial window for attributing an opponent shot
// to a neutral-zone turnover. Proximity stands in for a true elapsed-time
// comparison; the feed's in-period clocks are not reliable enough across
// stoppages to do better, so this is a deliberate proxy.
const nzTurnoverRadius = 30.0

// PossessionAnalyzer derives the secondary possession metrics: neutral-zone
// turnovers per team per period, and which opponent shots those turnovers
// turned into.
type PossessionAnalyzer struct {
	logger *zap.SugaredLogger
}

// NewPossessionAnalyzer returns a PossessionAnalyzer.
func NewPossessionAnalyzer(logger *zap.SugaredLogger) *PossessionAnalyzer {
	return &PossessionAnalyzer{logger: logger}
}

// turnover is a lost puck in the neutral zone: either the acting team gave
// it away there, or the opponent took it away there (in the opponent's
// frame the neutral zone is the same band, so both read as |x| <= 25).
type turnover struct {
	team   string // team that lost the puck
	period int
	x, y   float64
	capped bool // already credited with a resulting shot
}

// periodMetrics returns the team's metrics for a period, creating an empty
// entry when the team had no counted events there yet.
func periodMetrics(t *models.TeamGameMetrics, p int) *models.PeriodMetrics {
	pm, ok := t.Periods[p]
	if !ok {
		pm = &models.PeriodMetrics{TeamID: t.TeamID, Period: p}
		t.Periods[p] = pm
	}
	return pm
}

// Annotate walks the event list once, counts neutral-zone turnovers, and
// attributes each at most one subsequent opponent shot taken within the
// proximity radius in the same period. Counters land on the period metrics
// of the team that lost the puck.
func (z *PossessionAnalyzer) Annotate(payload *models.GamePayload, gm *models.GameMetrics) {
	var open []turnover

	side := func(team string) *models.TeamGameMetrics { return gm.TeamMetrics(team) }
	opponentOf := func(team string) string {
		if team == payload.Boxscore.AwayTeam {
			return payload.Boxscore.HomeTeam
		}
		return payload.Boxscore.AwayTeam
	}

	for i := range payload.Events {
		ev := &payload.Events[i]
		t := side(ev.TeamID)
		if t == nil {
			continue
		}

		if ev.Type.IsShotAttempt() && ev.HasLocation() {
			// A shot by the opponent of a team with an open neutral-zone
			// turnover, close enough to where the puck was lost, is
			// attributed to that turnover.
			for j := range open {
				to := &open[j]
				if to.capped || to.period != ev.Period || ev.TeamID != opponentOf(to.team) {
					continue
				}
				// The shooter's frame is the loser's rotated a half turn.
				if math.Hypot(-ev.X-to.x, -ev.Y-to.y) <= nzTurnoverRadius {
					to.capped = true
					periodMetrics(side(to.team), to.period).NZTurnoverShots++
					break
				}
			}
			continue
		}

		lostBy := ""
		switch ev.Type {
		case models.EventGiveaway:
			lostBy = ev.TeamID
		case models.EventTakeaway:
			lostBy = opponentOf(ev.TeamID)
		default:
			continue
		}
		if !ev.HasLocation() || ZoneOf(ev.X, ev.Y) != models.ZoneNeutral {
			continue
		}

		x, y := ev.X, ev.Y
		if lostBy != ev.TeamID {
			// Takeaway coordinates are in the taker's frame; rotate into
			// the loser's frame.
			x, y = -x, -y
		}
		periodMetrics(side(lostBy), ev.Period).NZTurnovers++
		open = append(open, turnover{team: lostBy, period: ev.Period, x: x, y: y})
	}

	// Totals were summed before annotation; re-sum the turnover counters.
	for _, t := range []*models.TeamGameMetrics{gm.Away, gm.Home} {
		t.Game.NZTurnovers = 0
		t.Game.NZTurnoverShots = 0
		for _, pm := range t.Periods {
			t.Game.NZTurnovers += pm.NZTurnovers
			t.Game.NZTurnoverShots += pm.NZTurnoverShots
		}
	}
}
