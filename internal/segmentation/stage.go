package segmentation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/queue"
	"skald/internal/services"
	"skald/internal/services/llm"
	"skald/internal/srt"
	"skald/internal/stage"
)

// Stage runs segmentation for one queued document at a time.
type Stage struct {
	cfg    *config.Config
	client *llm.Client
	meter  *llm.Meter
	logger *slog.Logger
}

// NewStage wires the segmentation stage into the workflow.
func NewStage(cfg *config.Config, client *llm.Client, meter *llm.Meter, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{cfg: cfg, client: client, meter: meter, logger: logger}
}

// SetLogger replaces the stage logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Prepare verifies the transcript exists before any model call is spent.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if item.SRTPath == "" {
		return services.Wrap(services.ErrValidation, stageName, "prepare", "document has no transcript path", nil)
	}
	if _, err := os.Stat(item.SRTPath); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "prepare",
			fmt.Sprintf("transcript not readable at %s", item.SRTPath), err)
	}
	item.ProgressStage = stageName
	item.ProgressMessage = "Parsing transcript"
	return nil
}

// Execute parses the transcript, runs the two-pass protocol, classifies the
// accepted segments, and writes the segmentation report.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	lines, err := srt.ParseFile(item.SRTPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "parse", "transcript parse failed", err)
	}
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "parse", "transcript contains no subtitle lines", nil)
	}
	text := srt.Flatten(lines)

	// Per-document meter so the report carries this document's spend; the
	// shared meter still sees the totals.
	docMeter := llm.NewMeter()
	protocol := NewProtocol(s.client, docMeter, s.cfg.Segmentation, logger)

	item.ProgressMessage = "Running two-pass segmentation"
	result, err := protocol.Run(ctx, text, lines)
	if err != nil {
		s.meter.Record(docMeter.Snapshot())
		return err
	}

	item.ProgressMessage = "Classifying segments"
	classifier := NewClassifier(s.client, docMeter, s.cfg.Segmentation, logger)
	classifier.Classify(ctx, result.Segments)

	usage := docMeter.Snapshot()
	s.meter.Record(usage)

	encoded, err := json.Marshal(result.Segments)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "encode", "marshal segments", err)
	}
	item.SegmentsJSON = string(encoded)

	report := BuildReport(item.Title, result, time.Since(started), usage)
	reportPath, err := s.writeReport(item.ID, report)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "report", "write segmentation report", err)
	}
	item.SegmentReportPath = reportPath
	item.ProgressMessage = fmt.Sprintf("Segmented into %d segments (%s)", len(result.Segments), result.Mode)

	logger.Info("segmentation complete",
		logging.Int("segments", len(result.Segments)),
		logging.String("mode", string(result.Mode)),
		logging.Int("llm_calls", usage.Calls),
		logging.Int("total_tokens", usage.TotalTokens()),
		logging.String("report", reportPath))
	return nil
}

// HealthCheck verifies the text-generation capability is reachable.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if err := s.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(stageName, err.Error())
	}
	return stage.Healthy(stageName)
}

func (s *Stage) writeReport(itemID int64, report Report) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.ReportDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.Paths.ReportDir, fmt.Sprintf("%d_segments.json", itemID))
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
