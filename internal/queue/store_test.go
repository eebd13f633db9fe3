package queue_test

import (
	"context"
	"testing"

	"skald/internal/queue"
	"skald/internal/testsupport"
)

func TestNewDocumentDefaults(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	item, err := store.NewDocument(context.Background(), "第一集", "/tmp/ep1.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected assigned id")
	}
	if item.Status != queue.StatusPending {
		t.Errorf("status = %s, want pending", item.Status)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	fetched, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Title != "第一集" || fetched.SRTPath != "/tmp/ep1.srt" || fetched.TimelinePath != "/tmp/tl.json" {
		t.Errorf("fetched = %+v", fetched)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item, err := store.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing document, got %+v", item)
	}
}

func TestClaimNext(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := store.NewDocument(ctx, "a", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if _, err := store.NewDocument(ctx, "b", "/tmp/b.srt", "/tmp/tl.json"); err != nil {
		t.Fatalf("new document: %v", err)
	}

	claimed, err := store.ClaimNext(ctx, queue.StatusPending, queue.StatusSegmenting)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("claimed = %+v, want oldest document", claimed)
	}
	if claimed.Status != queue.StatusSegmenting {
		t.Errorf("status = %s, want segmenting", claimed.Status)
	}

	// Second claim picks the next pending document; third finds nothing.
	second, err := store.ClaimNext(ctx, queue.StatusPending, queue.StatusSegmenting)
	if err != nil || second == nil {
		t.Fatalf("second claim = %+v, %v", second, err)
	}
	third, err := store.ClaimNext(ctx, queue.StatusPending, queue.StatusSegmenting)
	if err != nil {
		t.Fatalf("third claim: %v", err)
	}
	if third != nil {
		t.Fatalf("expected empty queue, got %+v", third)
	}
}

func TestUpdatePersistsMutableFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewDocument(ctx, "a", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	item.Status = queue.StatusSegmented
	item.SegmentsJSON = `[{"index":1}]`
	item.SegmentReportPath = "/tmp/report.json"
	item.ProgressStage = "segmentation"
	item.ProgressMessage = "done"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status != queue.StatusSegmented || fetched.SegmentsJSON == "" ||
		fetched.SegmentReportPath != "/tmp/report.json" || fetched.ProgressMessage != "done" {
		t.Errorf("fetched = %+v", fetched)
	}
}

func TestRetry(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewDocument(ctx, "a", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	item.SetFailed("model unreachable")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	retried, err := store.Retry(ctx, item.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.Status != queue.StatusPending || retried.ErrorMessage != "" {
		t.Errorf("retried = %+v", retried)
	}

	// A pending document cannot be retried again.
	if _, err := store.Retry(ctx, item.ID); err == nil {
		t.Fatal("expected error retrying pending document")
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seg, err := store.NewDocument(ctx, "a", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	seg.Status = queue.StatusSegmenting
	if err := store.Update(ctx, seg); err != nil {
		t.Fatalf("update: %v", err)
	}

	al, err := store.NewDocument(ctx, "b", "/tmp/b.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	al.Status = queue.StatusAligning
	if err := store.Update(ctx, al); err != nil {
		t.Fatalf("update: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if reset != 2 {
		t.Errorf("reset = %d, want 2", reset)
	}

	segAfter, _ := store.GetByID(ctx, seg.ID)
	alAfter, _ := store.GetByID(ctx, al.ID)
	if segAfter.Status != queue.StatusPending {
		t.Errorf("segmenting rolled back to %s, want pending", segAfter.Status)
	}
	if alAfter.Status != queue.StatusSegmented {
		t.Errorf("aligning rolled back to %s, want segmented", alAfter.Status)
	}
}

func TestListAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := store.NewDocument(ctx, title, "/tmp/"+title+".srt", "/tmp/tl.json"); err != nil {
			t.Fatalf("new document: %v", err)
		}
	}

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("list = %d items, want 3", len(items))
	}

	pending, err := store.List(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
}

func TestHealthSummary(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewDocument(ctx, "a", "/tmp/a.srt", "/tmp/tl.json")
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	if _, err := store.NewDocument(ctx, "b", "/tmp/b.srt", "/tmp/tl.json"); err != nil {
		t.Fatalf("new document: %v", err)
	}
	item.Status = queue.StatusCompleted
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if summary.Total != 2 || summary.Pending != 1 || summary.Completed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}
