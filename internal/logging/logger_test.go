package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"skald/internal/services"
)

func newBufferLogger(level string) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, levelVar)), buf
}

func TestConsoleHandlerIncludesStageAndItem(t *testing.T) {
	logger, buf := newBufferLogger("info")
	ctx := services.WithItemID(services.WithStage(context.Background(), "segmentation"), 7)

	WithContext(ctx, logger).Info("stage started", String("pass", "1"))

	out := buf.String()
	if !strings.Contains(out, "[segmentation #7]") {
		t.Fatalf("missing stage/item header: %q", out)
	}
	if !strings.Contains(out, "pass=1") {
		t.Fatalf("missing attr: %q", out)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	logger, buf := newBufferLogger("warn")
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
