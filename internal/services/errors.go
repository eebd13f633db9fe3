package services

import (
	"errors"
	"fmt"
	"strings"

	"skald/internal/queue"
)

var (
	// ErrParseFailure marks structured-text or JSON payloads that yielded no
	// usable records.
	ErrParseFailure = errors.New("parse failure")
	// ErrRangeOutOfBounds marks sentence or line ranges that reference text
	// outside known bounds. Never clamped: clamping would corrupt the
	// sentence-boundary content invariant.
	ErrRangeOutOfBounds = errors.New("range out of bounds")
	// ErrExternalCall marks failures of the text-generation capability.
	ErrExternalCall  = errors.New("external call failure")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a stage error to the queue status the workflow manager
// should persist after the stage fails. Bad input (missing files, invalid
// configuration) routes to review; everything else is a hard failure.
func FailureStatus(err error) queue.Status {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound):
		return queue.StatusReview
	default:
		return queue.StatusFailed
	}
}

// Details summarizes a stage error for operator-facing surfaces.
type Details struct {
	Message string
}

// ErrorDetails extracts a human-readable message from a wrapped stage error.
func ErrorDetails(err error) Details {
	if err == nil {
		return Details{}
	}
	return Details{Message: strings.TrimSpace(err.Error())}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
