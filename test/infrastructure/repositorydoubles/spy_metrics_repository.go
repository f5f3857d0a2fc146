//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// SpyMetricsRepository implements repositories.MetricsRepository and keeps
// everything it is given.
type SpyMetricsRepository struct {
	FlushErr error

	mu        sync.Mutex
	Scheduled map[string]int
	Decisions []entities.UpdateDecision
	Flushed   []string
}

var _ repositories.MetricsRepository = (*SpyMetricsRepository)(nil)

func (m *SpyMetricsRepository) RecordScheduled(ecosystem string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Scheduled == nil {
		m.Scheduled = make(map[string]int)
	}
	m.Scheduled[ecosystem] += count
}

func (m *SpyMetricsRepository) RecordDecision(_ string, decision entities.UpdateDecision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions = append(m.Decisions, decision)
}

func (m *SpyMetricsRepository) Flush(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushed = append(m.Flushed, path)
	return m.FlushErr
}
