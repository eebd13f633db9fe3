package alignment

import (
	"context"
	"log/slog"

	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/segmentation"
	"skald/internal/services/llm"
	"skald/internal/timeline"
)

// Engine aligns segments against the timeline, one exchange per segment.
type Engine struct {
	client *llm.Client
	meter  *llm.Meter
	logger *slog.Logger

	temperature float64
	maxTokens   int
}

// NewEngine builds an engine bound to the shared client and usage meter.
func NewEngine(client *llm.Client, meter *llm.Meter, tuning config.Alignment, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		client:      client,
		meter:       meter,
		logger:      logger,
		temperature: tuning.Temperature,
		maxTokens:   tuning.MaxOutputTokens,
	}
}

// Align produces exactly one FragmentAlignment per input segment, in order.
// A failed exchange yields an empty alignment for that segment; the document
// keeps going.
func (e *Engine) Align(ctx context.Context, segments []segmentation.Segment, tl *timeline.Timeline) []FragmentAlignment {
	alignments := make([]FragmentAlignment, 0, len(segments))
	for _, seg := range segments {
		alignment := FragmentAlignment{
			FragmentIndex: seg.Index,
			StartTime:     seg.StartTime,
			EndTime:       seg.EndTime,
			Content:       seg.Content,
		}

		resp, err := e.client.Complete(ctx, llm.Request{
			System:          alignSystemPrompt,
			User:            alignUserPrompt(seg.Content, tl),
			Temperature:     e.temperature,
			MaxOutputTokens: e.maxTokens,
		})
		if err != nil {
			e.logger.Warn("alignment call failed, recording empty alignment",
				logging.String(logging.FieldDataQuality, "alignment_call_failed"),
				logging.Int("fragment", seg.Index),
				logging.Error(err))
			alignments = append(alignments, alignment)
			continue
		}
		e.meter.Record(resp.Usage)

		events, settings, skips := parseResponse(resp.Content, e.logger)
		alignment.MatchedEvents = events
		alignment.MatchedSettings = settings
		alignment.Skipped = skips
		alignments = append(alignments, alignment)
	}
	return alignments
}
