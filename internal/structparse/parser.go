// Package structparse extracts typed records from the semi-structured
// bullet-list text a language model produces. It is deliberately generic:
// callers supply the header and range patterns, and the parser knows nothing
// about segmentation semantics, categories, or time.
package structparse

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"skald/internal/logging"
)

// Draft is one extracted record. Start and End are only meaningful when
// HasRange is true; a draft that never saw a range line is still emitted so
// callers can decide what a missing span means.
type Draft struct {
	Ordinal     int
	Description string
	Start       int
	End         int
	HasRange    bool
}

type scanState int

const (
	stateNoDraft scanState = iota
	stateDraftOpen
)

// Parse scans text line by line. A header match flushes the open draft (if
// any) and opens a new one; a range match fills the span of the open draft;
// every other line is ignored. The last open draft is flushed at end of
// input. Output preserves header order.
//
// headerPattern must capture (ordinal, description); rangePattern must
// capture (start, end) as integers. rangeLabel names the span kind in
// data-quality warnings (e.g. "sentence").
func Parse(text string, headerPattern, rangePattern *regexp.Regexp, rangeLabel string, logger *slog.Logger) []Draft {
	if logger == nil {
		logger = logging.NewNop()
	}

	var drafts []Draft
	var current Draft
	state := stateNoDraft

	flush := func() {
		if state != stateDraftOpen {
			return
		}
		if !current.HasRange {
			logger.Warn("draft missing range line",
				logging.String(logging.FieldDataQuality, "missing_range"),
				logging.Int("ordinal", current.Ordinal),
				logging.String("range_label", rangeLabel),
				logging.String("description", current.Description))
		}
		drafts = append(drafts, current)
		current = Draft{}
		state = stateNoDraft
	}

	for _, line := range strings.Split(text, "\n") {
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			flush()
			ordinal, err := strconv.Atoi(strings.TrimSpace(m[1]))
			if err != nil {
				continue
			}
			description := ""
			if len(m) > 2 {
				description = strings.TrimSpace(m[2])
			}
			current = Draft{Ordinal: ordinal, Description: description}
			state = stateDraftOpen
			continue
		}
		if state != stateDraftOpen {
			continue
		}
		if m := rangePattern.FindStringSubmatch(line); m != nil {
			start, errStart := strconv.Atoi(strings.TrimSpace(m[1]))
			end, errEnd := strconv.Atoi(strings.TrimSpace(m[2]))
			if errStart != nil || errEnd != nil {
				continue
			}
			current.Start = start
			current.End = end
			current.HasRange = true
		}
	}
	flush()

	reportRangeQuality(drafts, rangeLabel, logger)
	return drafts
}

// reportRangeQuality logs overlaps and gaps between consecutive draft ranges.
// Both are data-quality signals, never errors: the caller still receives every
// draft in header order.
func reportRangeQuality(drafts []Draft, rangeLabel string, logger *slog.Logger) {
	prevEnd := 0
	for _, draft := range drafts {
		if !draft.HasRange {
			continue
		}
		if draft.Start > draft.End {
			logger.Warn("draft range inverted",
				logging.String(logging.FieldDataQuality, "inverted_range"),
				logging.Int("ordinal", draft.Ordinal),
				logging.Int("start", draft.Start),
				logging.Int("end", draft.End))
			continue
		}
		if prevEnd > 0 {
			if draft.Start <= prevEnd {
				logger.Warn("draft ranges overlap",
					logging.String(logging.FieldDataQuality, "overlapping_range"),
					logging.Int("ordinal", draft.Ordinal),
					logging.String("range_label", rangeLabel),
					logging.Int("previous_end", prevEnd),
					logging.Int("start", draft.Start))
			} else if draft.Start > prevEnd+1 {
				logger.Warn("gap between draft ranges",
					logging.String(logging.FieldDataQuality, "range_gap"),
					logging.Int("ordinal", draft.Ordinal),
					logging.String("range_label", rangeLabel),
					logging.Int("previous_end", prevEnd),
					logging.Int("start", draft.Start))
			}
		}
		prevEnd = draft.End
	}
}
