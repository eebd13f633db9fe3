package workflow

import (
	"context"
	"errors"
	"time"

	"skald/internal/logging"
	"skald/internal/queue"
)

// Start launches the worker pool. Documents stranded in a processing status
// by a previous run are rolled back to their last stable status first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	reset, err := m.store.ResetStuckProcessing(ctx)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if reset > 0 {
		m.logger.Info("rolled back interrupted documents", logging.Int64("count", reset))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	workers := m.workers()
	m.wg.Add(workers)
	m.mu.Unlock()

	m.logger.Info("workflow started", logging.Int("workers", workers))
	for i := 1; i <= workers; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for workers to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Wait blocks until every worker has exited.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.claimNext(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logger.Error("failed to claim next document",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"))
			m.waitForItemOrShutdown(ctx)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processDocument(ctx, logger, item); err != nil && errors.Is(err, context.Canceled) {
			return
		}
	}
}

// claimNext prefers documents already past segmentation so restarts finish
// in-flight work before starting new documents.
func (m *Manager) claimNext(ctx context.Context) (*queue.Item, error) {
	item, err := m.store.ClaimNext(ctx, queue.StatusSegmented, queue.StatusAligning)
	if err != nil || item != nil {
		return item, err
	}
	return m.store.ClaimNext(ctx, queue.StatusPending, queue.StatusSegmenting)
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
