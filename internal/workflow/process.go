package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"skald/internal/logging"
	"skald/internal/queue"
	"skald/internal/services"
	"skald/internal/stage"
)

// processDocument drives a claimed document through its remaining stages.
// Segmentation flows straight into alignment so a document never waits in
// the queue between stages.
func (m *Manager) processDocument(ctx context.Context, logger *slog.Logger, item *queue.Item) error {
	if item.Status == queue.StatusSegmenting {
		if err := m.runStage(ctx, logger, m.segmenting, "segmentation", item, queue.StatusSegmented); err != nil {
			return err
		}
		item.Status = queue.StatusAligning
		if err := m.store.Update(ctx, item); err != nil {
			m.setLastError(err)
			logger.Error("failed to persist alignment transition", logging.Error(err))
			return err
		}
	}
	if item.Status != queue.StatusAligning {
		return nil
	}
	if err := m.runStage(ctx, logger, m.aligning, "alignment", item, queue.StatusCompleted); err != nil {
		return err
	}
	logger.Info("document completed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("title", item.Title))
	return nil
}

func (m *Manager) runStage(ctx context.Context, logger *slog.Logger, handler stage.Handler, name string, item *queue.Item, doneStatus queue.Status) error {
	stageCtx := services.WithItemID(ctx, item.ID)
	stageCtx = services.WithStage(stageCtx, name)
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, logger)

	if aware, ok := handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	started := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("title", item.Title))

	if err := handler.Prepare(stageCtx, item); err != nil {
		m.handleStageFailure(stageCtx, stageLogger, name, item, err)
		return err
	}
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		m.setLastError(wrapped)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		return wrapped
	}

	if err := handler.Execute(stageCtx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(stageCtx, stageLogger, name, item, err)
		return err
	}

	item.Status = doneStatus
	item.ErrorMessage = ""
	if err := m.store.Update(stageCtx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		m.setLastError(wrapped)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		return wrapped
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(started)))
	return nil
}

// handleStageFailure routes the document to failed or review and persists
// the outcome. The document never returns to the queue automatically; retry
// is an operator action.
func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, name string, item *queue.Item, stageErr error) {
	m.setLastError(stageErr)

	message := services.ErrorDetails(stageErr).Message
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", name)
	}
	if services.FailureStatus(stageErr) == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("resolved_status", string(item.Status)),
		logging.Error(stageErr))

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}
