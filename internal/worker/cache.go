package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rinklab/analytics-api/internal/models"
)

// metricCacheTTL keeps game metrics hot for a couple of days after
// processing; history lives in the profile store and ClickHouse.
const metricCacheTTL = 48 * time.Hour

func gameMetricsKey(gameID string) string {
	return "game:metrics:" + gameID
}

// RedisMetricCache holds each processed game's flat metric map in a
// Redis hash for the read API.
type RedisMetricCache struct {
	client *redis.Client
}

func NewRedisMetricCache(client *redis.Client) *RedisMetricCache {
	return &RedisMetricCache{client: client}
}

func (c *RedisMetricCache) CacheGameMetrics(ctx context.Context, gm *models.GameMetrics) error {
	flat := gm.FlatMap()
	values := make([]any, 0, 2*len(flat)+6)
	for name, v := range flat {
		values = append(values, name, v)
	}
	values = append(values,
		"away_team", gm.Boxscore.AwayTeam,
		"home_team", gm.Boxscore.HomeTeam,
		"game_date", gm.GameDate,
	)

	key := gameMetricsKey(gm.GameID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, values...)
	pipe.Expire(ctx, key, metricCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache game metrics %s: %w", gm.GameID, err)
	}
	return nil
}

// GetGameMetrics returns the cached flat map, or redis.Nil-wrapped miss.
func (c *RedisMetricCache) GetGameMetrics(ctx context.Context, gameID string) (map[string]string, error) {
	vals, err := c.client.HGetAll(ctx, gameMetricsKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read game metrics %s: %w", gameID, err)
	}
	return vals, nil
}
