package workflow

import (
	"context"

	"skald/internal/queue"
	"skald/internal/stage"
)

// HealthReport aggregates queue counts with per-stage readiness.
type HealthReport struct {
	Queue  queue.HealthSummary
	Stages []stage.Health
}

// Ready reports whether every stage is ready to process documents.
func (h HealthReport) Ready() bool {
	for _, s := range h.Stages {
		if !s.Ready {
			return false
		}
	}
	return true
}

// Health checks the queue and every configured stage.
func (m *Manager) Health(ctx context.Context) (HealthReport, error) {
	summary, err := m.store.Health(ctx)
	if err != nil {
		return HealthReport{}, err
	}
	return HealthReport{
		Queue: summary,
		Stages: []stage.Health{
			m.segmenting.HealthCheck(ctx),
			m.aligning.HealthCheck(ctx),
		},
	}, nil
}
