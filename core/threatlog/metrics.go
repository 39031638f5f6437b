package threatlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSink counts blocked requests per category and threat.
type MetricsSink struct {
	blocked *prometheus.CounterVec
}

// NewMetricsSink registers waf_blocked_total on reg. Registering twice on
// the same registry reuses the existing collector.
func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	blocked := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waf_blocked_total",
			Help: "Total number of requests blocked by the WAF",
		},
		[]string{"category", "threat"},
	)
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(blocked); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("threatlog: register metrics: %w", err)
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("threatlog: register metrics: %w", err)
		}
		blocked = existing
	}
	return &MetricsSink{blocked: blocked}, nil
}

// Write increments the counter for r.
func (s *MetricsSink) Write(_ context.Context, r Record) error {
	category := r.Category
	if category == "" {
		category = "none"
	}
	s.blocked.WithLabelValues(category, r.Threat).Inc()
	return nil
}

// Counter exposes the underlying collector.
func (s *MetricsSink) Counter() *prometheus.CounterVec { return s.blocked }
