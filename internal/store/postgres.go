package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rinklab/analytics-api/internal/models"
)

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresPersistence stores profile snapshots and game results in
// PostgreSQL. Rolling lists go into JSONB so list length and order
// survive restarts exactly.
type PostgresPersistence struct {
	pg PgPool
}

func NewPostgresPersistence(pg PgPool) *PostgresPersistence {
	return &PostgresPersistence{pg: pg}
}

// EnsureSchema creates the store tables if they do not exist. Safe to
// run on every start.
func (p *PostgresPersistence) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS team_venue_profiles (
			team         TEXT NOT NULL,
			venue        TEXT NOT NULL,
			rolling      JSONB NOT NULL DEFAULT '{}',
			games_played INT NOT NULL DEFAULT 0,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (team, venue)
		)`,
		`CREATE TABLE IF NOT EXISTS game_results (
			game_id    TEXT PRIMARY KEY,
			game_date  TEXT NOT NULL,
			away_team  TEXT NOT NULL,
			home_team  TEXT NOT NULL,
			winner     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_results_teams
			ON game_results (home_team, away_team)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pg.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresPersistence) LoadProfiles(ctx context.Context) ([]models.TeamVenueProfile, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT team, venue, rolling, games_played
		FROM team_venue_profiles
	`)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.TeamVenueProfile
	for rows.Next() {
		var prof models.TeamVenueProfile
		var rolling []byte
		if err := rows.Scan(&prof.Team, &prof.Venue, &rolling, &prof.GamesPlayed); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal(rolling, &prof.Rolling); err != nil {
			return nil, fmt.Errorf("decode rolling lists for %s/%s: %w", prof.Team, prof.Venue, err)
		}
		profiles = append(profiles, prof)
	}
	return profiles, rows.Err()
}

func (p *PostgresPersistence) SaveProfile(ctx context.Context, prof *models.TeamVenueProfile) error {
	rolling, err := json.Marshal(prof.Rolling)
	if err != nil {
		return fmt.Errorf("encode rolling lists: %w", err)
	}
	_, err = p.pg.Exec(ctx, `
		INSERT INTO team_venue_profiles (team, venue, rolling, games_played, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (team, venue) DO UPDATE
		SET rolling = $3, games_played = $4, updated_at = NOW()
	`, prof.Team, string(prof.Venue), rolling, prof.GamesPlayed)
	if err != nil {
		return fmt.Errorf("save profile %s/%s: %w", prof.Team, prof.Venue, err)
	}
	return nil
}

func (p *PostgresPersistence) SaveResult(ctx context.Context, r *GameResult) error {
	_, err := p.pg.Exec(ctx, `
		INSERT INTO game_results (game_id, game_date, away_team, home_team, winner)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO UPDATE SET winner = $5
	`, r.GameID, r.GameDate, r.AwayTeam, r.HomeTeam, r.Winner)
	if err != nil {
		return fmt.Errorf("save result %s: %w", r.GameID, err)
	}
	return nil
}

func (p *PostgresPersistence) LoadResults(ctx context.Context) ([]GameResult, error) {
	rows, err := p.pg.Query(ctx, `
		SELECT game_id, game_date, away_team, home_team, winner
		FROM game_results
		ORDER BY game_date, game_id
	`)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var results []GameResult
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.GameID, &r.GameDate, &r.AwayTeam, &r.HomeTeam, &r.Winner); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
