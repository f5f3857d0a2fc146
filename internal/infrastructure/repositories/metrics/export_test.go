package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *PrometheusMetricsRepository) Decisions() *prometheus.CounterVec { return r.decisions }
