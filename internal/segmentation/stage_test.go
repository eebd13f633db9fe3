package segmentation

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

const srtSample = `1
00:00:00,000 --> 00:00:02,500
他走进屋子。

2
00:00:02,500 --> 00:00:05,000
他看到桌上的信。

3
00:00:05,000 --> 00:00:07,500
他打开了信。
`

func writeSRT(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.srt")
	if err := os.WriteFile(path, []byte(srtSample), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	return path
}

func TestStageExecute(t *testing.T) {
	server := scriptedServer(t,
		"段落1：进屋\n句子范围：1-2\n段落2：读信\n句子范围：3-3",
		"无需修改",
		`{"1": "B", "2": "B"}`,
	)
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	meter := llm.NewMeter()
	stg := NewStage(cfg, testClient(server), meter, nil)

	item := &queue.Item{ID: 7, Title: "第一集", SRTPath: writeSRT(t)}
	if err := stg.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := stg.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var segments []Segment
	if err := json.Unmarshal([]byte(item.SegmentsJSON), &segments); err != nil {
		t.Fatalf("decode segments json: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Content+segments[1].Content != transcript {
		t.Errorf("segments do not partition transcript")
	}

	data, err := os.ReadFile(item.SegmentReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Title != "第一集" || report.TotalSegments != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Usage.Calls != 3 {
		t.Errorf("report usage calls = %d, want 3", report.Usage.Calls)
	}
	if meter.Snapshot().Calls != 3 {
		t.Errorf("shared meter calls = %d, want 3", meter.Snapshot().Calls)
	}
}

func TestStagePrepareMissingTranscript(t *testing.T) {
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	stg := NewStage(cfg, nil, llm.NewMeter(), nil)

	item := &queue.Item{ID: 1, SRTPath: filepath.Join(t.TempDir(), "missing.srt")}
	err := stg.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if services.FailureStatus(err) != queue.StatusReview {
		t.Errorf("failure status = %v, want review", services.FailureStatus(err))
	}
}

func TestStageExecuteFatalLeavesNoSegments(t *testing.T) {
	server := scriptedServer(t,
		"段落1：越界\n句子范围：2-9",
		"无需修改",
	)
	cfg := &config.Config{Paths: config.Paths{ReportDir: t.TempDir()}}
	stg := NewStage(cfg, testClient(server), llm.NewMeter(), nil)

	item := &queue.Item{ID: 2, SRTPath: writeSRT(t)}
	err := stg.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrRangeOutOfBounds) {
		t.Fatalf("err = %v, want range out of bounds", err)
	}
	if item.SegmentsJSON != "" || item.SegmentReportPath != "" {
		t.Errorf("fatal error must not leave partial output: %+v", item)
	}
}
