package workflow

import (
	"log/slog"
	"sync"
	"time"

	"skald/internal/alignment"
	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/queue"
	"skald/internal/segmentation"
	"skald/internal/services/llm"
	"skald/internal/stage"
)

// Manager drives queued documents through segmentation and alignment with a
// bounded worker pool. A worker owns one document at a time and runs both
// stages back to back; parallelism exists only across documents.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	meter  *llm.Meter

	segmenting stage.Handler
	aligning   stage.Handler

	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
	lastErr error
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithStageHandlers overrides the built stages (used in tests).
func WithStageHandlers(segmenting, aligning stage.Handler) ManagerOption {
	return func(m *Manager) {
		m.segmenting = segmenting
		m.aligning = aligning
	}
}

// NewManager constructs a workflow manager with stages built from the
// configuration.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	meter := llm.NewMeter()
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	m := &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		meter:        meter,
		segmenting:   segmentation.NewStage(cfg, client, meter, logger),
		aligning:     alignment.NewStage(cfg, client, meter, logger),
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.pollInterval <= 0 {
		m.pollInterval = time.Second
	}
	return m
}

// UsageSnapshot returns the accumulated model spend across all documents.
func (m *Manager) UsageSnapshot() llm.Usage {
	return m.meter.Snapshot()
}

func (m *Manager) workers() int {
	n := m.cfg.Workflow.Workers
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

// LastError returns the most recent worker-level error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}
