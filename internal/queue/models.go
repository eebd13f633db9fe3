package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queued document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSegmenting Status = "segmenting"
	StatusSegmented  Status = "segmented"
	StatusAligning   Status = "aligning"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusSegmenting,
	StatusSegmented,
	StatusAligning,
	StatusCompleted,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusSegmenting: {},
	StatusAligning:   {},
}

type statusTransition struct {
	from Status
	to   Status
}

// stageRollbackTransitions return interrupted documents to the last stable
// status so a restarted runner can pick them up again.
var stageRollbackTransitions = []statusTransition{
	{from: StatusSegmenting, to: StatusPending},
	{from: StatusAligning, to: StatusSegmented},
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Review     int
	Completed  int
}

// Item represents a queued document persisted in SQLite.
type Item struct {
	ID                  int64
	Title               string
	SRTPath             string
	TimelinePath        string
	Status              Status
	ErrorMessage        string
	ProgressStage       string
	ProgressMessage     string
	SegmentsJSON        string
	SegmentReportPath   string
	AlignmentReportPath string
	NeedsReview         bool
	ReviewReason        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SetFailed marks the item failed with the supplied message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = strings.TrimSpace(message)
}

// SetReview routes the item to manual review with the supplied reason.
func (i *Item) SetReview(reason string) {
	i.Status = StatusReview
	i.NeedsReview = true
	i.ReviewReason = strings.TrimSpace(reason)
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// IsProcessing reports whether the status denotes an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// IsTerminal reports whether the status ends the document lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusReview
}
