package alignment

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"skald/internal/config"
	"skald/internal/queue"
	"skald/internal/services"
	"skald/internal/services/llm"
)

func writeTimeline(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.json")
	content := `{
  "events": [
    {"id": "E1", "summary": "主角进屋", "position": 1},
    {"id": "E2", "summary": "发现信件", "position": 2}
  ],
  "settings": [
    {"id": "S1", "summary": "老宅的书房", "position": 1}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write timeline: %v", err)
	}
	return path
}

func segmentsJSON(t *testing.T) string {
	t.Helper()
	encoded, err := json.Marshal(twoSegments())
	if err != nil {
		t.Fatalf("marshal segments: %v", err)
	}
	return string(encoded)
}

func TestAlignmentStageExecute(t *testing.T) {
	server := alignServer(t,
		"【匹配事件】\nE1|完全一致|0.95|进屋\n【匹配设定】\nS1|改写|0.8\n【跳过内容】\n无",
		"【匹配事件】\nE2|概括|0.85\n【匹配设定】\n无\n【跳过内容】\n无",
	)
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	stg := NewStage(cfg, alignClient(server), llm.NewMeter(), nil)

	item := &queue.Item{
		ID:           9,
		Title:        "第一集",
		TimelinePath: writeTimeline(t),
		SegmentsJSON: segmentsJSON(t),
	}
	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stg.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(item.AlignmentReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.TotalFragments != 2 || len(report.Alignments) != 2 {
		t.Fatalf("report fragments = %d", report.TotalFragments)
	}
	if report.Analysis.Coverage.EventCoverage != 1.0 {
		t.Errorf("event coverage = %v, want 1.0", report.Analysis.Coverage.EventCoverage)
	}
	if report.Analysis.Coverage.SettingCoverage != 1.0 {
		t.Errorf("setting coverage = %v, want 1.0", report.Analysis.Coverage.SettingCoverage)
	}
	if report.Usage.Calls != 2 {
		t.Errorf("usage calls = %d, want 2", report.Usage.Calls)
	}
}

func TestAlignmentStagePrepareValidation(t *testing.T) {
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	stg := NewStage(cfg, nil, llm.NewMeter(), nil)

	missing := &queue.Item{ID: 1, TimelinePath: filepath.Join(t.TempDir(), "nope.json")}
	if err := stg.Prepare(context.Background(), missing); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	noSegments := &queue.Item{ID: 2, TimelinePath: writeTimeline(t)}
	if err := stg.Prepare(context.Background(), noSegments); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error for missing segments", err)
	}
}

func TestAlignmentStageExecuteBadTimeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write timeline: %v", err)
	}
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	stg := NewStage(cfg, nil, llm.NewMeter(), nil)

	item := &queue.Item{ID: 3, TimelinePath: path, SegmentsJSON: segmentsJSON(t)}
	if err := stg.Execute(context.Background(), item); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
