package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

// Goal geometry in feed units: net centered on (goalLineX, 0) with posts
// postHalfWidth either side.
const (
	goalLineX     = 89.0
	postHalfWidth = 3.0

	// Inner-slot radius: shots inside this distance in the offensive zone
	// count as high-danger chances.
	highDangerDist = 15.0

	// Hard ceiling on any single shot's expected-goal value. Goals go
	// through the same model so period xG stays an expectation, not a
	// goal count.
	maxXG = 0.95

	// Neutral prior for shots with no location data.
	unknownLocationXG = 0.05
)

// Contextual multipliers derived from the preceding-event window.
const (
	reboundMult  = 1.25
	rushMult     = 1.15
	pressureMult = 1.05

	// A prior same-team attempt within this many seconds counts as a
	// rebound opportunity.
	reboundWindowSec = 3.0
)

// Valuer converts classified shot events into ShotRecords carrying an
// expected-goal value and a Game Score contribution.
type Valuer struct {
	classifier *Classifier
	logger     *zap.SugaredLogger
}

// NewValuer returns a Valuer sharing the given classifier.
func NewValuer(classifier *Classifier, logger *zap.SugaredLogger) *Valuer {
	return &Valuer{classifier: classifier, logger: logger}
}

// shotDistance is the Euclidean distance from the shot to the goal mouth.
func shotDistance(x, y float64) float64 {
	dx := goalLineX - x
	return math.Hypot(dx, y)
}

// shotAngle is the angle subtended by the two posts from the shot location,
// in degrees, via the law of cosines on the two post distances and the
// post separation.
func shotAngle(x, y float64) float64 {
	d1 := math.Hypot(goalLineX-x, y-postHalfWidth)
	d2 := math.Hypot(goalLineX-x, y+postHalfWidth)
	if d1 == 0 || d2 == 0 {
		return 0
	}
	sep := 2 * postHalfWidth
	cos := (d1*d1 + d2*d2 - sep*sep) / (2 * d1 * d2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// baseXGForDistance buckets distance into five bands with fixed base rates.
func baseXGForDistance(dist float64) float64 {
	switch {
	case dist <= 10:
		return 0.25
	case dist <= 20:
		return 0.15
	case dist <= 35:
		return 0.08
	case dist <= 50:
		return 0.04
	default:
		return 0.02
	}
}

// angleMultiplier buckets the subtended angle into four bands.
func angleMultiplier(angle float64) float64 {
	switch {
	case angle <= 15:
		return 1.0
	case angle <= 30:
		return 0.8
	case angle <= 45:
		return 0.5
	default:
		return 0.3
	}
}

// zoneMultiplier scales by origin zone, with the inner slot boosted and
// long-range offensive-zone shots discounted.
func zoneMultiplier(zone models.Zone, dist float64) float64 {
	switch zone {
	case models.ZoneOffensive:
		if dist <= highDangerDist {
			return 1.5
		}
		if dist <= 35 {
			return 1.2
		}
		return 0.8
	case models.ZoneNeutral:
		return 0.3
	default:
		return 0.1
	}
}

// shotTypeMultiplier scales by release type. Unrecognized types get the
// neutral 1.0; that is a tolerated condition, not an error.
func (v *Valuer) shotTypeMultiplier(st models.ShotType) float64 {
	switch st {
	case models.ShotTip, models.ShotDeflect, models.ShotBackhand:
		return 1.3
	case models.ShotOneTimer:
		return 1.2
	case models.ShotWrap:
		return 1.1
	case models.ShotWrist, models.ShotSnap, "":
		return 1.0
	case models.ShotSlap:
		return 0.9
	default:
		v.logger.Warnw("Unknown shot type, using neutral multiplier", "shot_type", st)
		return 1.0
	}
}

// eventTypeMultiplier discounts attempts that never tested the goalie.
func eventTypeMultiplier(t models.EventType) float64 {
	switch t {
	case models.EventMissedShot:
		return 0.7
	case models.EventBlockedShot:
		return 0.5
	default:
		return 1.0
	}
}

// isRebound reports whether a same-team shot attempt landed within the
// rebound window just before this one.
func isRebound(shot *models.Event, window []models.Event) bool {
	for i := len(window) - 1; i >= 0 && i >= len(window)-2; i-- {
		ev := &window[i]
		if ev.Period != shot.Period || ev.TeamID != shot.TeamID {
			continue
		}
		if !ev.Type.IsShotAttempt() {
			continue
		}
		if shot.TimeInPeriod-ev.TimeInPeriod <= reboundWindowSec {
			return true
		}
	}
	return false
}

// StrengthState renders a situation code as "<away_skaters>v<home_skaters>",
// defaulting to 5v5 when the code is absent or malformed.
func StrengthState(situationCode string) string {
	if len(situationCode) != 4 {
		return "5v5"
	}
	away := situationCode[1] - '0'
	home := situationCode[2] - '0'
	if away > 6 || home > 6 {
		return "5v5"
	}
	return fmt.Sprintf("%dv%d", away, home)
}

// Value computes the ShotRecord for one shot-class event. The preceding
// window drives the play-type label and the rebound/rush/pressure context
// adjustments. Shots without location data get the neutral prior scaled by
// the event-type discount and contribute to no zone counters.
func (v *Valuer) Value(gameID string, shot *models.Event, window []models.Event) models.ShotRecord {
	rec := models.ShotRecord{
		GameID:       gameID,
		TeamID:       shot.TeamID,
		Period:       shot.Period,
		TimeInPeriod: shot.TimeInPeriod,
		EventType:    shot.Type,
		ShotType:     shot.ShotType,
		X:            shot.X,
		Y:            shot.Y,

		StrengthState: StrengthState(shot.SituationCode),
	}
	rec.GameScoreDelta = shotGameScore(shot.Type)

	if !shot.HasLocation() {
		rec.XG = unknownLocationXG * eventTypeMultiplier(shot.Type)
		return rec
	}

	rec.Distance = shotDistance(shot.X, shot.Y)
	rec.Angle = shotAngle(shot.X, shot.Y)
	rec.ZoneOfOrigin = ZoneOf(shot.X, shot.Y)
	rec.PlayType = v.classifier.ClassifyShotOrigin(shot, window)
	rec.HighDanger = rec.ZoneOfOrigin == models.ZoneOffensive && rec.Distance <= highDangerDist

	xg := baseXGForDistance(rec.Distance) *
		angleMultiplier(rec.Angle) *
		zoneMultiplier(rec.ZoneOfOrigin, rec.Distance) *
		v.shotTypeMultiplier(shot.ShotType) *
		eventTypeMultiplier(shot.Type)

	if isRebound(shot, window) {
		xg *= reboundMult
	}
	if rec.PlayType == models.PlayRush {
		xg *= rushMult
	} else if v.classifier.SustainedPressure(shot, window) {
		xg *= pressureMult
	}

	rec.XG = math.Min(xg, maxXG)
	return rec
}
