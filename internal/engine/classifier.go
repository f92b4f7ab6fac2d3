// Package engine implements the per-game analytics pipeline: shot
// classification, expected-goal valuation, and per-period aggregation.
// Everything in this package is deterministic and store-free; replaying
// the same event list produces identical output.
package engine

import (
	"github.com/rinklab/analytics-api/internal/models"
)

// Rink geometry, in feed units with the attacking net on positive X.
const (
	offensiveZoneX = 25.0
	defensiveZoneX = -25.0
)

// Lookback windows for play-type classification.
const (
	rushLookback      = 6
	forecheckLookback = 8
)

// ZoneOf partitions the rink into three bands along the long axis from the
// acting team's perspective. The predicates are mutually exclusive and
// jointly exhaustive: every coordinate maps to exactly one zone.
func ZoneOf(x, y float64) models.Zone {
	switch {
	case x > offensiveZoneX:
		return models.ZoneOffensive
	case x < defensiveZoneX:
		return models.ZoneDefensive
	default:
		return models.ZoneNeutral
	}
}

// Classifier labels shot attempts with a play type from the preceding
// event sequence. The indicator weights and thresholds are the policy:
// they are deliberately heuristic and are not to be "improved" silently.
type Classifier struct{}

// NewClassifier returns a Classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// rushScore accumulates rush indicators over the last rushLookback events
// of the shot's period. Opponent events are read in the opponent's frame
// (their coordinates point at their attacking net).
func (c *Classifier) rushScore(shot *models.Event, window []models.Event) (score float64, quickTransition, zoneEntry bool) {
	start := len(window) - rushLookback
	if start < 0 {
		start = 0
	}
	for i := start; i < len(window); i++ {
		ev := &window[i]
		if ev.Period != shot.Period {
			continue
		}
		sameTeam := ev.TeamID == shot.TeamID
		switch ev.Type {
		case models.EventTakeaway:
			if sameTeam {
				score += 2
				quickTransition = true
			}
		case models.EventGiveaway:
			if !sameTeam {
				score += 1
			}
		case models.EventBlockedShot:
			// TeamID on a blocked shot is the shooter, so an opponent
			// blocked-shot event means our side just blocked one.
			if !sameTeam {
				score += 1
			}
		case models.EventFaceoff:
			if sameTeam && ev.HasLocation() {
				switch ZoneOf(ev.X, ev.Y) {
				case models.ZoneOffensive:
					score += 1
					zoneEntry = true
				case models.ZoneNeutral:
					score += 0.5
				}
			}
		case models.EventGoal, models.EventShotOnGoal, models.EventMissedShot:
			if sameTeam {
				score += 0.3
			}
		}
	}
	return score, quickTransition, zoneEntry
}

// forecheckScore accumulates sustained-pressure indicators over the last
// forecheckLookback events of the shot's period.
func (c *Classifier) forecheckScore(shot *models.Event, window []models.Event) (score float64, forecheck bool) {
	start := len(window) - forecheckLookback
	if start < 0 {
		start = 0
	}
	for i := start; i < len(window); i++ {
		ev := &window[i]
		if ev.Period != shot.Period {
			continue
		}
		sameTeam := ev.TeamID == shot.TeamID
		if sameTeam {
			if !ev.HasLocation() {
				continue
			}
			zone := ZoneOf(ev.X, ev.Y)
			switch ev.Type {
			case models.EventTakeaway:
				if zone == models.ZoneOffensive {
					score += 3
					forecheck = true
				}
			case models.EventHit:
				if zone == models.ZoneOffensive {
					score += 1
				}
			case models.EventFaceoff:
				if zone == models.ZoneOffensive {
					score += 1
				}
			case models.EventGoal, models.EventShotOnGoal, models.EventMissedShot, models.EventBlockedShot:
				if zone == models.ZoneOffensive {
					score += 0.5
				}
			}
			continue
		}
		// Opponent giveaway deep in their own end feeds the forecheck.
		// Their defensive zone in their frame is our offensive zone.
		if ev.Type == models.EventGiveaway && ev.HasLocation() &&
			ZoneOf(ev.X, ev.Y) == models.ZoneDefensive {
			score += 2
			forecheck = true
		}
	}
	return score, forecheck
}

// ClassifyShotOrigin labels a shot attempt as rush or forecheck/cycle from
// the events preceding it. A shot is rush when the quick-transition and
// zone-entry flags are both set, or the indicator score clears 3, or a zone
// entry combines with a score of 2. Anything else is forecheck/cycle: a
// positive pressure indicator or an offensive-zone origin attributes it to
// sustained pressure, and shots with neither still land in the cycle
// bucket, a documented simplification of the heuristic.
func (c *Classifier) ClassifyShotOrigin(shot *models.Event, window []models.Event) models.PlayType {
	score, quickTransition, zoneEntry := c.rushScore(shot, window)
	if (quickTransition && zoneEntry) || score >= 3 || (zoneEntry && score >= 2) {
		return models.PlayRush
	}
	// Positive pressure indicators and offensive-zone origins are cycle
	// shots, and so is everything else: there is no "neither" bucket.
	return models.PlayForecheckCycle
}

// SustainedPressure reports whether the shot came off an active forecheck:
// either the forecheck flag fired or the pressure indicators accumulated a
// positive score within the lookback.
func (c *Classifier) SustainedPressure(shot *models.Event, window []models.Event) bool {
	score, forecheck := c.forecheckScore(shot, window)
	return forecheck || score > 0
}
