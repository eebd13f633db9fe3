package alignment

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
	"skald/internal/segmentation"
	"skald/internal/services"
	"skald/internal/services/llm"
	"skald/internal/stage"
	"skald/internal/timeline"
)

const stageName = "alignment"

// Stage runs alignment for one queued document at a time.
type Stage struct {
	cfg    *config.Config
	client *llm.Client
	meter  *llm.Meter
	logger *slog.Logger
}

// NewStage wires the alignment stage into the workflow.
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

// Prepare verifies the timeline exists and segmentation output is present.
func (s *Stage) Prepare(ctx context.Context, item *queue.Item) error {
	if item.TimelinePath == "" {
		return services.Wrap(services.ErrValidation, stageName, "prepare", "document has no timeline path", nil)
	}
	if _, err := os.Stat(item.TimelinePath); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "prepare",
			fmt.Sprintf("timeline not readable at %s", item.TimelinePath), err)
	}
	if item.SegmentsJSON == "" {
		return services.Wrap(services.ErrValidation, stageName, "prepare", "document carries no segments", nil)
	}
	item.ProgressStage = stageName
	item.ProgressMessage = "Loading timeline"
	return nil
}

// Execute aligns every segment against the timeline, analyzes coverage, and
// writes the alignment report.
func (s *Stage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	tl, err := timeline.LoadFile(item.TimelinePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "load", "timeline load failed", err)
	}

	var segments []segmentation.Segment
	if err := json.Unmarshal([]byte(item.SegmentsJSON), &segments); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "load", "decode stored segments", err)
	}
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, stageName, "load", "document carries no segments", nil)
	}

	docMeter := llm.NewMeter()
	engine := NewEngine(s.client, docMeter, s.cfg.Alignment, logger)

	item.ProgressMessage = fmt.Sprintf("Aligning %d fragments", len(segments))
	alignments := engine.Align(ctx, segments, tl)
	if err := ctx.Err(); err != nil {
		s.meter.Record(docMeter.Snapshot())
		return services.Wrap(services.ErrTransient, stageName, "align", "alignment interrupted", err)
	}

	analysis := Analyze(alignments, tl)
	usage := docMeter.Snapshot()
	s.meter.Record(usage)

	report := BuildReport(item.Title, alignments, analysis, time.Since(started), usage)
	reportPath, err := s.writeReport(item.ID, report)
	if err != nil {
		return services.Wrap(services.ErrTransient, stageName, "report", "write alignment report", err)
	}
	item.AlignmentReportPath = reportPath
	item.ProgressMessage = fmt.Sprintf("Aligned %d fragments, event coverage %.0f%%",
		len(alignments), analysis.Coverage.EventCoverage*100)

	logger.Info("alignment complete",
		logging.Int("fragments", len(alignments)),
		logging.Float64("event_coverage", analysis.Coverage.EventCoverage),
		logging.Float64("setting_coverage", analysis.Coverage.SettingCoverage),
		logging.Int("empty_fragments", analysis.Rewrite.EmptyFragments),
		logging.Int("llm_calls", usage.Calls),
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
	path := filepath.Join(s.cfg.Paths.ReportDir, fmt.Sprintf("%d_alignment.json", itemID))
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
