package models

// Zone is one of the three rink bands along the long axis, relative to the
// acting team's attacking direction.
type Zone string

const (
	ZoneOffensive Zone = "offensive"
	ZoneNeutral   Zone = "neutral"
	ZoneDefensive Zone = "defensive"
)

// PlayType classifies how a shot attempt was generated. Every shot is
// exactly one of the two; there is no "neither" bucket.
type PlayType string

const (
	PlayRush           PlayType = "rush"
	PlayForecheckCycle PlayType = "forecheck_cycle"
)

// ShotType is the shooter's release as reported by the feed. Unknown
// values are tolerated and valued with a neutral multiplier.
type ShotType string

const (
	ShotWrist    ShotType = "wrist"
	ShotSnap     ShotType = "snap"
	ShotSlap     ShotType = "slap"
	ShotTip      ShotType = "tip-in"
	ShotDeflect  ShotType = "deflected"
	ShotBackhand ShotType = "backhand"
	ShotWrap     ShotType = "wrap-around"
	ShotOneTimer ShotType = "one-timer"
)

// ShotRecord is the per-shot valuation derived from a shot-class event.
// It is computed once and never updated.
type ShotRecord struct {
	GameID       string    `json:"game_id"`
	TeamID       string    `json:"team_id"`
	Period       int       `json:"period"`
	TimeInPeriod float64   `json:"time_in_period"`
	EventType    EventType `json:"event_type"`
	ShotType     ShotType  `json:"shot_type,omitempty"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`

	StrengthState  string   `json:"strength_state"`
	XG             float64  `json:"xg"`
	GameScoreDelta float64  `json:"game_score_delta"`
	ZoneOfOrigin   Zone     `json:"zone_of_origin"`
	PlayType       PlayType `json:"play_type"`
	HighDanger     bool     `json:"high_danger"`
	Distance       float64  `json:"distance"`
	Angle          float64  `json:"angle"`
}
