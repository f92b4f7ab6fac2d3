package models

import "fmt"

// PeriodMetrics is one team's totals for one period. Built in a single
// pass over the game's events and immutable afterward.
type PeriodMetrics struct {
	TeamID string `json:"team_id"`
	Period int    `json:"period"`

	ShotsOnGoal   int `json:"shots_on_goal"`
	Goals         int `json:"goals"`
	CorsiFor      int `json:"corsi_for"`
	CorsiAgainst  int `json:"corsi_against"`
	FaceoffWins   int `json:"faceoff_wins"`
	FaceoffLosses int `json:"faceoff_losses"`
	PPGoals       int `json:"pp_goals"`
	PPAttempts    int `json:"pp_attempts"`
	Hits          int `json:"hits"`
	BlockedShots  int `json:"blocked_shots"`
	Giveaways     int `json:"giveaways"`
	Takeaways     int `json:"takeaways"`
	PenaltyMins   int `json:"penalty_minutes"`

	XG        float64 `json:"xg"`
	GameScore float64 `json:"game_score"`

	// Zone possession counters.
	RushShots        int `json:"rush_shots"`
	ForecheckShots   int `json:"forecheck_cycle_shots"`
	HighDangerShots  int `json:"high_danger_shots"`
	OffZoneShots     int `json:"off_zone_shots"`
	NeutralZoneShots int `json:"neutral_zone_shots"`
	DefZoneShots     int `json:"def_zone_shots"`
	NZTurnovers      int `json:"nz_turnovers"`
	NZTurnoverShots  int `json:"nz_turnover_shots_against"`
}

// CorsiPct returns shot-attempt share for the period. With no attempts at
// all it returns the neutral prior 50.0 rather than dividing by zero.
func (m *PeriodMetrics) CorsiPct() float64 {
	total := m.CorsiFor + m.CorsiAgainst
	if total == 0 {
		return 50.0
	}
	return float64(m.CorsiFor) / float64(total) * 100
}

// FaceoffPct returns faceoff win share for the period, defaulting to the
// neutral 50.0 when no faceoffs were taken.
func (m *PeriodMetrics) FaceoffPct() float64 {
	total := m.FaceoffWins + m.FaceoffLosses
	if total == 0 {
		return 50.0
	}
	return float64(m.FaceoffWins) / float64(total) * 100
}

// PowerPlayPct returns PP conversion for the period, 0 with no attempts.
func (m *PeriodMetrics) PowerPlayPct() float64 {
	if m.PPAttempts == 0 {
		return 0
	}
	return float64(m.PPGoals) / float64(m.PPAttempts) * 100
}

// Add folds another period's counters into m. Used to build game totals.
func (m *PeriodMetrics) Add(o *PeriodMetrics) {
	m.ShotsOnGoal += o.ShotsOnGoal
	m.Goals += o.Goals
	m.CorsiFor += o.CorsiFor
	m.CorsiAgainst += o.CorsiAgainst
	m.FaceoffWins += o.FaceoffWins
	m.FaceoffLosses += o.FaceoffLosses
	m.PPGoals += o.PPGoals
	m.PPAttempts += o.PPAttempts
	m.Hits += o.Hits
	m.BlockedShots += o.BlockedShots
	m.Giveaways += o.Giveaways
	m.Takeaways += o.Takeaways
	m.PenaltyMins += o.PenaltyMins
	m.XG += o.XG
	m.GameScore += o.GameScore
	m.RushShots += o.RushShots
	m.ForecheckShots += o.ForecheckShots
	m.HighDangerShots += o.HighDangerShots
	m.OffZoneShots += o.OffZoneShots
	m.NeutralZoneShots += o.NeutralZoneShots
	m.DefZoneShots += o.DefZoneShots
	m.NZTurnovers += o.NZTurnovers
	m.NZTurnoverShots += o.NZTurnoverShots
}

// TeamGameMetrics is one team's full-game view: regulation periods 1-3,
// any overtime/shootout periods kept as separate non-averaged totals, and
// the regulation+OT sum.
type TeamGameMetrics struct {
	TeamID  string                 `json:"team_id"`
	Periods map[int]*PeriodMetrics `json:"periods"`
	Game    PeriodMetrics          `json:"game"`
	Shots   []ShotRecord           `json:"shots"`
}

// GameMetrics is the engine's per-game output for both teams.
type GameMetrics struct {
	GameID   string           `json:"game_id"`
	GameDate string           `json:"game_date,omitempty"`
	Boxscore Boxscore         `json:"boxscore"`
	Away     *TeamGameMetrics `json:"away"`
	Home     *TeamGameMetrics `json:"home"`
}

// TeamMetrics returns the metrics for the given team ID, or nil when the
// team did not play in this game.
func (g *GameMetrics) TeamMetrics(team string) *TeamGameMetrics {
	switch team {
	case g.Boxscore.AwayTeam:
		return g.Away
	case g.Boxscore.HomeTeam:
		return g.Home
	}
	return nil
}

// FlatMap renders both teams' game totals as a flat metric-name → value
// map, the shape the report renderer and persistence collaborators consume.
func (g *GameMetrics) FlatMap() map[string]float64 {
	out := make(map[string]float64, 64)
	put := func(side string, t *TeamGameMetrics) {
		m := t.Game
		out[side+"_shots_on_goal"] = float64(m.ShotsOnGoal)
		out[side+"_goals"] = float64(m.Goals)
		out[side+"_corsi_for"] = float64(m.CorsiFor)
		out[side+"_corsi_against"] = float64(m.CorsiAgainst)
		out[side+"_corsi_pct"] = m.CorsiPct()
		out[side+"_faceoff_pct"] = m.FaceoffPct()
		out[side+"_pp_goals"] = float64(m.PPGoals)
		out[side+"_pp_attempts"] = float64(m.PPAttempts)
		out[side+"_pp_pct"] = m.PowerPlayPct()
		out[side+"_hits"] = float64(m.Hits)
		out[side+"_blocked_shots"] = float64(m.BlockedShots)
		out[side+"_giveaways"] = float64(m.Giveaways)
		out[side+"_takeaways"] = float64(m.Takeaways)
		out[side+"_penalty_minutes"] = float64(m.PenaltyMins)
		out[side+"_xg"] = m.XG
		out[side+"_game_score"] = m.GameScore
		out[side+"_rush_shots"] = float64(m.RushShots)
		out[side+"_forecheck_cycle_shots"] = float64(m.ForecheckShots)
		out[side+"_high_danger_shots"] = float64(m.HighDangerShots)
		out[side+"_off_zone_shots"] = float64(m.OffZoneShots)
		out[side+"_nz_turnovers"] = float64(m.NZTurnovers)
		out[side+"_nz_turnover_shots_against"] = float64(m.NZTurnoverShots)
		for p, pm := range t.Periods {
			out[fmt.Sprintf("%s_p%d_xg", side, p)] = pm.XG
			out[fmt.Sprintf("%s_p%d_corsi_pct", side, p)] = pm.CorsiPct()
			out[fmt.Sprintf("%s_p%d_shots_on_goal", side, p)] = float64(pm.ShotsOnGoal)
		}
	}
	put("away", g.Away)
	put("home", g.Home)
	return out
}
