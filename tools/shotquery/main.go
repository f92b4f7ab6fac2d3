package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Quick inspection of the shot archive: per-team shot attempt counts,
// average xG, and high-danger share for one game.

func main() {
	dsn := flag.String("dsn", envOr("CLICKHOUSE_URL", "clickhouse://localhost:9000/default"), "ClickHouse DSN")
	gameID := flag.String("game", "", "game ID to inspect (empty = archive totals)")
	flag.Parse()

	ctx := context.Background()
	opts, err := clickhouse.ParseDSN(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping ClickHouse: %v", err)
	}

	if *gameID == "" {
		var count uint64
		if err := conn.QueryRow(ctx, "SELECT count() FROM shot_records").Scan(&count); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Total archived shots: %d\n", count)
		return
	}

	rows, err := conn.Query(ctx, `
		SELECT team_id, count() AS attempts, avg(xg) AS avg_xg,
		       countIf(high_danger = 1) AS high_danger
		FROM shot_records
		WHERE game_id = ?
		GROUP BY team_id
		ORDER BY attempts DESC`, *gameID)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	fmt.Printf("Game %s:\n", *gameID)
	for rows.Next() {
		var team string
		var attempts, highDanger uint64
		var avgXG float64
		if err := rows.Scan(&team, &attempts, &avgXG, &highDanger); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-4s attempts=%-3d avg_xg=%.3f high_danger=%d\n",
			team, attempts, avgXG, highDanger)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
