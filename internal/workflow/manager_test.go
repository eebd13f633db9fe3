package workflow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"skald/internal/queue"
	"skald/internal/services"
	"skald/internal/stage"
	"skald/internal/testsupport"
)

type fakeStage struct {
	name     string
	prepare  func(*queue.Item) error
	execute  func(*queue.Item) error
	executed atomic.Int64
}

func (f *fakeStage) Prepare(ctx context.Context, item *queue.Item) error {
	if f.prepare != nil {
		return f.prepare(item)
	}
	return nil
}

func (f *fakeStage) Execute(ctx context.Context, item *queue.Item) error {
	f.executed.Add(1)
	if f.execute != nil {
		return f.execute(item)
	}
	return nil
}

func (f *fakeStage) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(f.name)
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(20 * time.Millisecond)
	}
	item, _ := store.GetByID(context.Background(), id)
	t.Fatalf("item %d never reached %s, last seen %+v", id, want, item)
	return nil
}

func newTestManager(t *testing.T, seg, align stage.Handler) (*Manager, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	manager := NewManager(cfg, store, nil, WithStageHandlers(seg, align))
	manager.pollInterval = 10 * time.Millisecond
	return manager, store
}

func TestManagerProcessesDocumentEndToEnd(t *testing.T) {
	seg := &fakeStage{name: "segmentation", execute: func(item *queue.Item) error {
		item.SegmentsJSON = `[{"index":1}]`
		return nil
	}}
	align := &fakeStage{name: "alignment"}
	manager, store := newTestManager(t, seg, align)

	item, err := store.NewDocument(context.Background(), "第一集", "/tmp/ep1.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if final.SegmentsJSON == "" {
		t.Error("segmentation output not persisted")
	}
	if final.ErrorMessage != "" {
		t.Errorf("error message = %q", final.ErrorMessage)
	}
	if seg.executed.Load() != 1 || align.executed.Load() != 1 {
		t.Errorf("stage executions = %d/%d", seg.executed.Load(), align.executed.Load())
	}
}

func TestManagerRoutesExternalFailureToFailed(t *testing.T) {
	seg := &fakeStage{name: "segmentation", execute: func(*queue.Item) error {
		return services.Wrap(services.ErrExternalCall, "segmentation", "propose", "model unreachable", nil)
	}}
	manager, store := newTestManager(t, seg, &fakeStage{name: "alignment"})

	item, err := store.NewDocument(context.Background(), "坏文档", "/tmp/bad.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	final := waitForStatus(t, store, item.ID, queue.StatusFailed)
	if final.ErrorMessage == "" {
		t.Error("expected error message on failed document")
	}
}

func TestManagerRoutesValidationToReview(t *testing.T) {
	seg := &fakeStage{name: "segmentation", prepare: func(*queue.Item) error {
		return services.Wrap(services.ErrValidation, "segmentation", "prepare", "transcript missing", nil)
	}}
	manager, store := newTestManager(t, seg, &fakeStage{name: "alignment"})

	item, err := store.NewDocument(context.Background(), "缺文件", "/tmp/missing.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	final := waitForStatus(t, store, item.ID, queue.StatusReview)
	if !final.NeedsReview || final.ReviewReason == "" {
		t.Errorf("review fields = %+v", final)
	}
}

func TestManagerResumesSegmentedDocument(t *testing.T) {
	seg := &fakeStage{name: "segmentation"}
	align := &fakeStage{name: "alignment"}
	manager, store := newTestManager(t, seg, align)

	item, err := store.NewDocument(context.Background(), "续跑", "/tmp/ep.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	item.Status = queue.StatusSegmented
	item.SegmentsJSON = `[{"index":1}]`
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, item.ID, queue.StatusCompleted)
	if seg.executed.Load() != 0 {
		t.Errorf("segmentation ran %d times on a segmented document", seg.executed.Load())
	}
	if align.executed.Load() != 1 {
		t.Errorf("alignment executions = %d", align.executed.Load())
	}
}

func TestManagerIsolatesDocumentFailures(t *testing.T) {
	seg := &fakeStage{name: "segmentation", execute: func(item *queue.Item) error {
		if item.Title == "坏的" {
			return errors.New("boom")
		}
		return nil
	}}
	manager, store := newTestManager(t, seg, &fakeStage{name: "alignment"})

	bad, err := store.NewDocument(context.Background(), "坏的", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	good, err := store.NewDocument(context.Background(), "好的", "/tmp/b.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer manager.Stop()

	waitForStatus(t, store, bad.ID, queue.StatusFailed)
	waitForStatus(t, store, good.ID, queue.StatusCompleted)
}

func TestManagerHealth(t *testing.T) {
	manager, store := newTestManager(t, &fakeStage{name: "segmentation"}, &fakeStage{name: "alignment"})
	if _, err := store.NewDocument(context.Background(), "x", "/tmp/x.srt", "/tmp/tl.json"); err != nil {
		t.Fatalf("new document: %v", err)
	}

	report, err := manager.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !report.Ready() {
		t.Errorf("report not ready: %+v", report)
	}
	if report.Queue.Pending != 1 {
		t.Errorf("pending = %d, want 1", report.Queue.Pending)
	}
}
