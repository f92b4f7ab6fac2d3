// Package store maintains the rolling team performance profiles: capped,
// recency-ordered composite-score history per (team, venue), plus the game
// results the predictor mines for head-to-head and rest context.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rinklab/analytics-api/internal/models"
)

const (
	// DefaultCap bounds each rolling metric list. Oldest entries are
	// evicted first once the cap is exceeded.
	DefaultCap = 25

	// confidenceDivisor: ten games on record means full confidence.
	confidenceDivisor = 10

	// Defaults handed out for teams with no history. Predictions must
	// still be possible on day one.
	defaultScore      = 50.0
	defaultConfidence = 0.1
)

// GameResult is one completed game, recorded for head-to-head, home-ice,
// and rest-day lookups.
type GameResult struct {
	GameID   string `json:"game_id"`
	GameDate string `json:"game_date"`
	AwayTeam string `json:"away_team"`
	HomeTeam string `json:"home_team"`
	Winner   string `json:"winner"`
}

type profileKey struct {
	team  string
	venue models.Venue
}

// profileEntry serializes appends per (team, venue) key. The lock is held
// only for the duration of one append or read; there is no cross-team
// contention.
type profileEntry struct {
	mu      sync.Mutex
	profile models.TeamVenueProfile
}

// Store is the team performance store. All mutation is append-only per
// key; historical entries are never edited in place. An optional
// Persistence receives write-through snapshots.
type Store struct {
	mu      sync.RWMutex
	entries map[profileKey]*profileEntry
	results []GameResult
	cap     int

	persist Persistence
	logger  *zap.SugaredLogger
}

// Persistence is the durable side of the store. Implementations must
// round-trip profiles losslessly: numeric precision and list order are
// the contract.
type Persistence interface {
	LoadProfiles(ctx context.Context) ([]models.TeamVenueProfile, error)
	SaveProfile(ctx context.Context, p *models.TeamVenueProfile) error
	SaveResult(ctx context.Context, r *GameResult) error
	LoadResults(ctx context.Context) ([]GameResult, error)
}

// New constructs an empty store. persist may be nil for a purely
// in-memory store (tests, dry runs).
func New(cap int, persist Persistence, logger *zap.Logger) *Store {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Store{
		entries: make(map[profileKey]*profileEntry),
		cap:     cap,
		persist: persist,
		logger:  logger.Sugar(),
	}
}

// Load pulls the persisted profiles and results into memory. Called once
// at process start, before the store is shared.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	profiles, err := s.persist.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	results, err := s.persist.LoadResults(ctx)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		s.entries[profileKey{p.Team, p.Venue}] = &profileEntry{profile: p}
	}
	s.results = results
	s.logger.Infow("Performance store loaded",
		"profiles", len(profiles), "results", len(results))
	return nil
}

func (s *Store) entry(team string, venue models.Venue, create bool) *profileEntry {
	k := profileKey{team, venue}
	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()
	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[k]; ok {
		return e
	}
	e = &profileEntry{profile: models.TeamVenueProfile{
		Team:    team,
		Venue:   venue,
		Rolling: make(map[string][]float64, len(models.MetricNames)),
	}}
	s.entries[k] = e
	return e
}

// Confidence maps games played to a [0,1] data-quality proxy: more history
// raises it, capped at full confidence after confidenceDivisor games.
func Confidence(gamesPlayed int) float64 {
	c := float64(gamesPlayed) / confidenceDivisor
	if c > 1 {
		return 1
	}
	return c
}

// GetProfile returns the averaged profile for a team at a venue. Unknown
// teams get the documented neutral default (50.0 scores, confidence 0.1)
// rather than an error: zero history must still produce a prediction.
func (s *Store) GetProfile(team string, venue models.Venue) *models.ProfileSummary {
	e := s.entry(team, venue, false)
	if e == nil {
		return defaultProfile(team, venue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile.GamesPlayed == 0 {
		return defaultProfile(team, venue)
	}

	sum := &models.ProfileSummary{
		Team:        team,
		Venue:       venue,
		GamesPlayed: e.profile.GamesPlayed,
		Confidence:  Confidence(e.profile.GamesPlayed),
	}
	sum.Averages = models.CompositeScores{
		Pressure:    rollingAvg(e.profile.Rolling["pressure"]),
		Possession:  rollingAvg(e.profile.Rolling["possession"]),
		Momentum:    rollingAvg(e.profile.Rolling["momentum"]),
		Territorial: rollingAvg(e.profile.Rolling["territorial"]),
		XGAvg:       rollingAvg(e.profile.Rolling["xg_avg"]),
		HDCAvg:      rollingAvg(e.profile.Rolling["hdc_avg"]),
	}
	return sum
}

// GetRolling returns a deep copy of the raw rolling profile, in insertion
// (= recency) order, for the persistence and report collaborators.
func (s *Store) GetRolling(team string, venue models.Venue) *models.TeamVenueProfile {
	e := s.entry(team, venue, false)
	if e == nil {
		return &models.TeamVenueProfile{
			Team: team, Venue: venue,
			Rolling: make(map[string][]float64),
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := models.TeamVenueProfile{
		Team:        e.profile.Team,
		Venue:       e.profile.Venue,
		GamesPlayed: e.profile.GamesPlayed,
		Rolling:     make(map[string][]float64, len(e.profile.Rolling)),
	}
	for k, v := range e.profile.Rolling {
		cp.Rolling[k] = append([]float64(nil), v...)
	}
	return &cp
}

// AppendGame appends one game's composite scores to each rolling list,
// evicting from the front once the cap is exceeded. The per-key lock is
// held only for the append; concurrent games for different teams never
// contend.
func (s *Store) AppendGame(ctx context.Context, team string, venue models.Venue, cs models.CompositeScores) error {
	if !venue.Valid() {
		return fmt.Errorf("append game: invalid venue %q", venue)
	}
	e := s.entry(team, venue, true)

	e.mu.Lock()
	for _, name := range models.MetricNames {
		v, _ := cs.ByName(name)
		list := append(e.profile.Rolling[name], v)
		if len(list) > s.cap {
			list = list[len(list)-s.cap:]
		}
		e.profile.Rolling[name] = list
	}
	e.profile.GamesPlayed++
	snapshot := s.copyLocked(&e.profile)
	e.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveProfile(ctx, snapshot); err != nil {
			return fmt.Errorf("persist profile %s/%s: %w", team, venue, err)
		}
	}
	return nil
}

func (s *Store) copyLocked(p *models.TeamVenueProfile) *models.TeamVenueProfile {
	cp := models.TeamVenueProfile{
		Team: p.Team, Venue: p.Venue, GamesPlayed: p.GamesPlayed,
		Rolling: make(map[string][]float64, len(p.Rolling)),
	}
	for k, v := range p.Rolling {
		cp.Rolling[k] = append([]float64(nil), v...)
	}
	return &cp
}

// RecordResult stores one completed game's outcome.
func (s *Store) RecordResult(ctx context.Context, r GameResult) error {
	s.mu.Lock()
	s.results = append(s.results, r)
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveResult(ctx, &r); err != nil {
			return fmt.Errorf("persist result %s: %w", r.GameID, err)
		}
	}
	return nil
}

// HeadToHead returns each team's win count against the other.
func (s *Store) HeadToHead(teamA, teamB string) (winsA, winsB int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		pair := (r.HomeTeam == teamA && r.AwayTeam == teamB) ||
			(r.HomeTeam == teamB && r.AwayTeam == teamA)
		if !pair {
			continue
		}
		switch r.Winner {
		case teamA:
			winsA++
		case teamB:
			winsB++
		}
	}
	return winsA, winsB
}

// HomeWinRate returns a team's historical home win share, or -1 when the
// team has no home games on record.
func (s *Store) HomeWinRate(team string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games, wins int
	for _, r := range s.results {
		if r.HomeTeam != team {
			continue
		}
		games++
		if r.Winner == team {
			wins++
		}
	}
	if games == 0 {
		return -1
	}
	return float64(wins) / float64(games)
}

// LastGameDate returns the most recent recorded game date (YYYY-MM-DD
// lexical order) for a team, or "" when none exists.
func (s *Store) LastGameDate(team string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last := ""
	for _, r := range s.results {
		if r.HomeTeam != team && r.AwayTeam != team {
			continue
		}
		if r.GameDate > last {
			last = r.GameDate
		}
	}
	return last
}

func defaultProfile(team string, venue models.Venue) *models.ProfileSummary {
	return &models.ProfileSummary{
		Team:       team,
		Venue:      venue,
		Confidence: defaultConfidence,
		Averages: models.CompositeScores{
			Pressure:    defaultScore,
			Possession:  defaultScore,
			Momentum:    defaultScore,
			Territorial: defaultScore,
			XGAvg:       defaultScore,
			HDCAvg:      defaultScore,
		},
	}
}

func rollingAvg(vals []float64) float64 {
	if len(vals) == 0 {
		return defaultScore
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
