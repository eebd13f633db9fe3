package segmentation

import (
	"context"
	"fmt"
	"log/slog"

	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/sentence"
	"skald/internal/services"
	"skald/internal/services/llm"
	"skald/internal/srt"
	"skald/internal/structparse"
	"skald/internal/timemap"
)

const stageName = "segmentation"

// Protocol drives the two-pass exchange and turns the accepted division into
// segments. It holds no per-document state; Run may be called concurrently.
type Protocol struct {
	client *llm.Client
	meter  *llm.Meter
	logger *slog.Logger

	temperature float64
	maxTokens   int
}

// NewProtocol builds a protocol bound to the shared client and usage meter.
func NewProtocol(client *llm.Client, meter *llm.Meter, tuning config.Segmentation, logger *slog.Logger) *Protocol {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Protocol{
		client:      client,
		meter:       meter,
		logger:      logger,
		temperature: tuning.Temperature,
		maxTokens:   tuning.MaxOutputTokens,
	}
}

// Result is the accepted division of one transcript.
type Result struct {
	Segments []Segment
	Mode     Mode
}

// Run executes both passes over the flattened transcript and materializes
// segments. External-call failures are fatal, as is a transcript where
// neither pass yields a parseable division; when only one pass parses, its
// division is used.
func (p *Protocol) Run(ctx context.Context, text string, lines []srt.Line) (*Result, error) {
	sentences := sentence.Split(text)
	if len(sentences) == 0 {
		return nil, services.Wrap(services.ErrValidation, stageName, "split", "transcript contains no sentences", nil)
	}
	p.logger.Info("starting two-pass segmentation",
		logging.Int("sentences", len(sentences)),
		logging.Int("chars", sentence.TotalChars(sentences)))

	draftOutput, err := p.complete(ctx, proposeSystemPrompt, proposeUserPrompt(sentences))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalCall, stageName, "propose", "draft segmentation call failed", err)
	}
	drafts := structparse.Parse(draftOutput, headerPattern, rangePattern, "sentence", p.logger)
	if len(drafts) == 0 {
		// Not yet fatal: the critique pass sees the raw draft text and may
		// answer with a parseable division of its own.
		p.logger.Warn("draft output contained no recognizable paragraphs, deferring to critique",
			logging.String(logging.FieldDataQuality, "unparseable_draft"))
	}

	critiqueOutput, err := p.complete(ctx, critiqueSystemPrompt, critiqueUserPrompt(sentences, draftOutput))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalCall, stageName, "critique", "critique call failed", err)
	}

	chosen := drafts
	mode := ModeDraft
	if len(drafts) == 0 || Decide(critiqueOutput) == DecisionUseRevision {
		revised := structparse.Parse(critiqueOutput, headerPattern, rangePattern, "sentence", p.logger)
		switch {
		case len(revised) > 0:
			chosen = revised
			mode = ModeRevision
		case len(drafts) == 0:
			return nil, services.Wrap(services.ErrParseFailure, stageName, "critique",
				"neither pass produced a recognizable paragraph", nil)
		default:
			p.logger.Warn("critique produced no parseable revision, keeping draft division",
				logging.String(logging.FieldDataQuality, "unparseable_revision"))
		}
	}

	segments, err := p.materialize(sentences, lines, chosen)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrParseFailure, stageName, "materialize",
			"no paragraph carried a usable sentence range", nil)
	}

	p.logger.Info("segmentation division accepted",
		logging.Int("segments", len(segments)),
		logging.String("mode", string(mode)))
	return &Result{Segments: segments, Mode: mode}, nil
}

func (p *Protocol) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Complete(ctx, llm.Request{
		System:          system,
		User:            user,
		Temperature:     p.temperature,
		MaxOutputTokens: p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	p.meter.Record(resp.Usage)
	return resp.Content, nil
}

// materialize converts drafts into segments. A draft without a range is
// skipped with a warning; a range outside the sentence index aborts the whole
// document because clamping would fabricate segment content.
func (p *Protocol) materialize(sentences []string, lines []srt.Line, drafts []structparse.Draft) ([]Segment, error) {
	totalChars := sentence.TotalChars(sentences)
	segments := make([]Segment, 0, len(drafts))
	for _, draft := range drafts {
		if !draft.HasRange {
			p.logger.Warn("skipping paragraph without sentence range",
				logging.String(logging.FieldDataQuality, "missing_range"),
				logging.Int("ordinal", draft.Ordinal))
			continue
		}
		content, err := sentence.Join(sentences, draft.Start, draft.End)
		if err != nil {
			return nil, services.Wrap(services.ErrRangeOutOfBounds, stageName, "materialize",
				fmt.Sprintf("paragraph %d", draft.Ordinal), err)
		}
		startChar, endChar, err := sentence.Offsets(sentences, draft.Start, draft.End)
		if err != nil {
			return nil, services.Wrap(services.ErrRangeOutOfBounds, stageName, "materialize",
				fmt.Sprintf("paragraph %d offsets", draft.Ordinal), err)
		}
		startTime, endTime := timemap.Map(startChar, endChar, totalChars, lines)
		segments = append(segments, Segment{
			Index:         len(segments) + 1,
			Content:       content,
			Description:   draft.Description,
			StartTime:     startTime,
			EndTime:       endTime,
			SentenceCount: draft.End - draft.Start + 1,
			CharCount:     len([]rune(content)),
			Category:      CategoryPlot,
		})
	}
	return segments, nil
}
