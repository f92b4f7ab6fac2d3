package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the closed set of play-by-play event kinds the engine
// understands. Anything else coming from the upstream feed is dropped at
// the ingest boundary.
type EventType string

const (
	EventGoal        EventType = "goal"
	EventShotOnGoal  EventType = "shot-on-goal"
	EventMissedShot  EventType = "missed-shot"
	EventBlockedShot EventType = "blocked-shot"
	EventFaceoff     EventType = "faceoff"
	EventHit         EventType = "hit"
	EventGiveaway    EventType = "giveaway"
	EventTakeaway    EventType = "takeaway"
	EventPenalty     EventType = "penalty"
)

// KnownEventTypes lists every member of the closed event set.
var KnownEventTypes = []EventType{
	EventGoal, EventShotOnGoal, EventMissedShot, EventBlockedShot,
	EventFaceoff, EventHit, EventGiveaway, EventTakeaway, EventPenalty,
}

// Valid reports whether t is a member of the closed event set.
func (t EventType) Valid() bool {
	switch t {
	case EventGoal, EventShotOnGoal, EventMissedShot, EventBlockedShot,
		EventFaceoff, EventHit, EventGiveaway, EventTakeaway, EventPenalty:
		return true
	}
	return false
}

// IsShotAttempt reports whether t counts toward Corsi (any shot attempt).
func (t EventType) IsShotAttempt() bool {
	switch t {
	case EventGoal, EventShotOnGoal, EventMissedShot, EventBlockedShot:
		return true
	}
	return false
}

// Event is one play from the upstream play-by-play feed. Events are
// immutable once ingested; the engine never writes to them.
//
// Coordinates are rink units on the long axis with the acting team's
// attacking net at positive X (the feed normalizes direction per period).
// A (0,0) coordinate pair is treated as "location unknown".
//
// For faceoffs TeamID is the winning team. For blocked shots TeamID is the
// shooting team (the attempt belongs to the shooter; the block is credited
// to the opponent).
type Event struct {
	Type         EventType `json:"type" validate:"required"`
	TeamID       string    `json:"team_id" validate:"required"`
	Period       int       `json:"period" validate:"required,min=1"`
	TimeInPeriod float64   `json:"time_in_period"`
	X            float64   `json:"x,omitempty"`
	Y            float64   `json:"y,omitempty"`

	// Shot attempts only.
	ShotType ShotType `json:"shot_type,omitempty"`

	// Four-digit skater-count code, e.g. "1551" = away goalie, 5 away
	// skaters, 5 home skaters, home goalie. Empty means even strength.
	SituationCode string `json:"situation_code,omitempty"`

	// Penalties only.
	PenaltyMinutes int `json:"penalty_minutes,omitempty"`

	// Goals only; upstream attribution when available.
	ScorerID  string `json:"scorer_id,omitempty"`
	Assist1ID string `json:"assist1_id,omitempty"`
	Assist2ID string `json:"assist2_id,omitempty"`
}

// HasLocation reports whether the event carries usable coordinates.
// The upstream feed sends 0,0 when the tracking data is missing.
func (e *Event) HasLocation() bool {
	return e.X != 0 || e.Y != 0
}

// Boxscore carries the game-level facts that arrive alongside the
// play-by-play: the two team identities and the final score.
type Boxscore struct {
	AwayTeam  string `json:"away_team" validate:"required"`
	HomeTeam  string `json:"home_team" validate:"required"`
	AwayScore int    `json:"away_score"`
	HomeScore int    `json:"home_score"`
}

// Winner returns the winning team abbreviation, or "" for a tie.
func (b *Boxscore) Winner() string {
	switch {
	case b.HomeScore > b.AwayScore:
		return b.HomeTeam
	case b.AwayScore > b.HomeScore:
		return b.AwayTeam
	}
	return ""
}

// GamePayload is the full ingest unit: one game's ordered event list plus
// its boxscore. Games are processed whole or not at all.
type GamePayload struct {
	GameID   string    `json:"game_id" validate:"required"`
	GameDate string    `json:"game_date,omitempty"`
	Boxscore Boxscore  `json:"boxscore" validate:"required"`
	Events   []Event   `json:"events" validate:"required,dive"`
	Received time.Time `json:"-"`
}

// GameUUID returns the game ID as a UUID, deriving a deterministic one
// from the raw string when the feed sends a non-UUID identifier.
func (g *GamePayload) GameUUID() uuid.UUID {
	if id, err := uuid.Parse(g.GameID); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(g.GameID))
}
