package models

// Venue distinguishes a team's home and road profiles.
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// Valid reports whether v is a recognized venue.
func (v Venue) Valid() bool { return v == VenueHome || v == VenueAway }

// CompositeScores are the six rolling metrics a game contributes to a
// team's venue profile, each on a ~0-100 scale.
type CompositeScores struct {
	Pressure    float64 `json:"pressure"`
	Possession  float64 `json:"possession"`
	Momentum    float64 `json:"momentum"`
	Territorial float64 `json:"territorial"`
	XGAvg       float64 `json:"xg_avg"`
	HDCAvg      float64 `json:"hdc_avg"`
}

// MetricNames lists the composite metric keys in their canonical order.
var MetricNames = []string{
	"pressure", "possession", "momentum", "territorial", "xg_avg", "hdc_avg",
}

// ByName returns the named composite value; ok is false for unknown names.
func (c CompositeScores) ByName(name string) (float64, bool) {
	switch name {
	case "pressure":
		return c.Pressure, true
	case "possession":
		return c.Possession, true
	case "momentum":
		return c.Momentum, true
	case "territorial":
		return c.Territorial, true
	case "xg_avg":
		return c.XGAvg, true
	case "hdc_avg":
		return c.HDCAvg, true
	}
	return 0, false
}

// TeamVenueProfile is the recency-ordered, length-capped history of one
// team's composite scores at one venue. Lists are insertion-ordered with
// the oldest game first; eviction is FIFO once the cap is exceeded.
type TeamVenueProfile struct {
	Team        string               `json:"team"`
	Venue       Venue                `json:"venue"`
	Rolling     map[string][]float64 `json:"rolling_lists"`
	GamesPlayed int                  `json:"games_played"`
}

// ProfileSummary is the averaged view the predictor consumes: composite
// means plus a games-played confidence proxy.
type ProfileSummary struct {
	Team        string          `json:"team"`
	Venue       Venue           `json:"venue"`
	Averages    CompositeScores `json:"averages"`
	GamesPlayed int             `json:"games_played"`
	Confidence  float64         `json:"confidence"`
}
