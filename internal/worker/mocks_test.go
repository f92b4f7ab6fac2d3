package worker

import (
	"context"
	"sync"

	"github.com/rinklab/analytics-api/internal/models"
)

type mockArchive struct {
	mu    sync.Mutex
	shots []models.ShotRecord
	fail  error
}

func (m *mockArchive) InsertShots(ctx context.Context, shots []models.ShotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.shots = append(m.shots, shots...)
	return nil
}

func (m *mockArchive) inserted() []models.ShotRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ShotRecord(nil), m.shots...)
}

type mockCache struct {
	mu    sync.Mutex
	games []string
}

func (m *mockCache) CacheGameMetrics(ctx context.Context, gm *models.GameMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, gm.GameID)
	return nil
}

func (m *mockCache) cached() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.games...)
}
