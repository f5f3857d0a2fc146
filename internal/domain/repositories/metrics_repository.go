package repositories

import "github.com/rios0rios0/updatewarden/internal/domain/entities"

// MetricsRepository records decision counters for a run.
type MetricsRepository interface {
	RecordScheduled(ecosystem string, count int)
	RecordDecision(ecosystem string, decision entities.UpdateDecision)

	// Flush writes the collected metrics to path; an empty path is a no-op.
	Flush(path string) error
}
