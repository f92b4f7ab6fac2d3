package worker

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/rinklab/analytics-api/internal/models"
)

// shotRecordsSchema holds every valued shot attempt for offline model
// work. MergeTree ordered by game so per-game reads stay cheap.
const shotRecordsSchema = `
	CREATE TABLE IF NOT EXISTS shot_records (
		game_id         String,
		team_id         LowCardinality(String),
		period          UInt8,
		time_in_period  Float64,
		event_type      LowCardinality(String),
		shot_type       LowCardinality(String),
		x               Float64,
		y               Float64,
		strength_state  LowCardinality(String),
		xg              Float64,
		game_score_delta Float64,
		zone_of_origin  LowCardinality(String),
		play_type       LowCardinality(String),
		high_danger     UInt8,
		distance        Float64,
		angle           Float64,
		inserted_at     DateTime DEFAULT now()
	) ENGINE = MergeTree()
	ORDER BY (game_id, team_id, period, time_in_period)
`

// ClickHouseArchive batch-inserts shot records into ClickHouse.
type ClickHouseArchive struct {
	conn driver.Conn
}

func NewClickHouseArchive(conn driver.Conn) *ClickHouseArchive {
	return &ClickHouseArchive{conn: conn}
}

// EnsureSchema creates the shot archive table. Safe to run at every start.
func (a *ClickHouseArchive) EnsureSchema(ctx context.Context) error {
	if err := a.conn.Exec(ctx, shotRecordsSchema); err != nil {
		return fmt.Errorf("ensure shot_records schema: %w", err)
	}
	return nil
}

// InsertShots appends one game's worth of shot records in a single batch.
func (a *ClickHouseArchive) InsertShots(ctx context.Context, shots []models.ShotRecord) error {
	if len(shots) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO shot_records (
			game_id, team_id, period, time_in_period,
			event_type, shot_type, x, y, strength_state,
			xg, game_score_delta, zone_of_origin, play_type,
			high_danger, distance, angle
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare shot batch: %w", err)
	}

	for i := range shots {
		s := &shots[i]
		if err := batch.Append(
			s.GameID,
			s.TeamID,
			uint8(s.Period),
			s.TimeInPeriod,
			string(s.EventType),
			string(s.ShotType),
			s.X,
			s.Y,
			s.StrengthState,
			s.XG,
			s.GameScoreDelta,
			string(s.ZoneOfOrigin),
			string(s.PlayType),
			boolToUint8(s.HighDanger),
			s.Distance,
			s.Angle,
		); err != nil {
			return fmt.Errorf("append shot %s/%d: %w", s.GameID, i, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send shot batch: %w", err)
	}
	return nil
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
