package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const (
	namespace       = "updatewarden"
	noStrategyLabel = "none"
)

// PrometheusMetricsRepository keeps run counters in a private registry so
// they can be written as a node-exporter textfile.
type PrometheusMetricsRepository struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	scheduled *prometheus.GaugeVec
}

// NewPrometheusMetricsRepository creates a repository with empty counters.
func NewPrometheusMetricsRepository() *PrometheusMetricsRepository {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Update decisions by ecosystem, outcome and unlock strategy.",
	}, []string{"ecosystem", "outcome", "strategy"})
	scheduled := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dependencies_scheduled",
		Help:      "Dependencies scheduled for a decision in the last run.",
	}, []string{"ecosystem"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(decisions, scheduled)

	return &PrometheusMetricsRepository{
		registry:  registry,
		decisions: decisions,
		scheduled: scheduled,
	}
}

func (r *PrometheusMetricsRepository) RecordScheduled(ecosystem string, count int) {
	r.scheduled.WithLabelValues(ecosystem).Add(float64(count))
}

func (r *PrometheusMetricsRepository) RecordDecision(ecosystem string, decision entities.UpdateDecision) {
	strategy := string(decision.UnlockStrategy)
	if strategy == "" {
		strategy = noStrategyLabel
	}
	r.decisions.WithLabelValues(ecosystem, string(decision.Outcome), strategy).Inc()
}

func (r *PrometheusMetricsRepository) Flush(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %q: %w", path, err)
	}
	logger.Debugf("Wrote metrics to %s", path)
	return nil
}

var _ repositories.MetricsRepository = (*PrometheusMetricsRepository)(nil)
