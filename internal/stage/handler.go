package stage

import (
	"context"
	"log/slog"

	"skald/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the workflow manager inject a stage-scoped logger before
// execution.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
