package segmentation

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/services/llm"
)

// Classifier assigns an ABC category to each segment with a single batch
// exchange. Classification is advisory: any failure leaves segments on the
// plot default rather than failing the document.
type Classifier struct {
	client *llm.Client
	meter  *llm.Meter
	logger *slog.Logger

	temperature float64
	maxTokens   int
}

// NewClassifier builds a classifier bound to the shared client and meter.
func NewClassifier(client *llm.Client, meter *llm.Meter, tuning config.Segmentation, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Classifier{
		client:      client,
		meter:       meter,
		logger:      logger,
		temperature: tuning.Temperature,
		maxTokens:   tuning.MaxOutputTokens,
	}
}

// Classify labels segments in place. Missing or unrecognized labels default
// to CategoryPlot with a data-quality warning.
func (c *Classifier) Classify(ctx context.Context, segments []Segment) {
	if len(segments) == 0 {
		return
	}

	resp, err := c.client.Complete(ctx, llm.Request{
		System:          categorySystemPrompt,
		User:            categoryUserPrompt(segments),
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxTokens,
		JSONResponse:    true,
	})
	if err != nil {
		c.logger.Warn("category call failed, defaulting all segments",
			logging.String(logging.FieldDataQuality, "category_call_failed"),
			logging.Error(err))
		return
	}
	c.meter.Record(resp.Usage)

	var labels map[string]string
	if err := llm.DecodeJSON(resp.Content, &labels); err != nil {
		c.logger.Warn("category payload unparseable, defaulting all segments",
			logging.String(logging.FieldDataQuality, "category_parse_failed"),
			logging.Error(err))
		return
	}

	for i := range segments {
		label, ok := labels[strconv.Itoa(segments[i].Index)]
		if !ok {
			c.logger.Warn("segment missing from category payload",
				logging.String(logging.FieldDataQuality, "category_missing"),
				logging.Int("segment", segments[i].Index))
			continue
		}
		category, ok := parseCategory(label)
		if !ok {
			c.logger.Warn("unrecognized category label",
				logging.String(logging.FieldDataQuality, "category_invalid"),
				logging.Int("segment", segments[i].Index),
				logging.String("label", label))
			continue
		}
		segments[i].Category = category
	}
}

func parseCategory(label string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(label))) {
	case CategorySetting:
		return CategorySetting, true
	case CategoryPlot:
		return CategoryPlot, true
	case CategoryMeta:
		return CategoryMeta, true
	default:
		return "", false
	}
}
