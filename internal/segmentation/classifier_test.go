package segmentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"skald/internal/config"
	"skald/internal/services/llm"
)

func sampleSegments() []Segment {
	return []Segment{
		{Index: 1, Content: "修仙世界分为九个大陆。", Category: CategoryPlot},
		{Index: 2, Content: "主角在山脚下醒来。", Category: CategoryPlot},
		{Index: 3, Content: "这一段作者写得是真的水。", Category: CategoryPlot},
	}
}

func TestClassifyAssignsLabels(t *testing.T) {
	server := scriptedServer(t, `{"1": "A", "2": "B", "3": "c"}`)
	classifier := NewClassifier(testClient(server), llm.NewMeter(), config.Segmentation{}, nil)

	segments := sampleSegments()
	classifier.Classify(context.Background(), segments)

	want := []Category{CategorySetting, CategoryPlot, CategoryMeta}
	for i, seg := range segments {
		if seg.Category != want[i] {
			t.Errorf("segment %d category = %q, want %q", seg.Index, seg.Category, want[i])
		}
	}
}

func TestClassifyDefaultsMissingAndInvalid(t *testing.T) {
	server := scriptedServer(t, `{"1": "A", "3": "X"}`)
	classifier := NewClassifier(testClient(server), llm.NewMeter(), config.Segmentation{}, nil)

	segments := sampleSegments()
	classifier.Classify(context.Background(), segments)

	if segments[0].Category != CategorySetting {
		t.Errorf("segment 1 category = %q", segments[0].Category)
	}
	if segments[1].Category != CategoryPlot {
		t.Errorf("segment 2 category = %q, want plot default", segments[1].Category)
	}
	if segments[2].Category != CategoryPlot {
		t.Errorf("segment 3 category = %q, want plot default", segments[2].Category)
	}
}

func TestClassifyCallFailureIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	classifier := NewClassifier(testClient(server), llm.NewMeter(), config.Segmentation{}, nil)

	segments := sampleSegments()
	classifier.Classify(context.Background(), segments)
	for _, seg := range segments {
		if seg.Category != CategoryPlot {
			t.Errorf("segment %d category = %q, want plot default", seg.Index, seg.Category)
		}
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	server := scriptedServer(t)
	classifier := NewClassifier(testClient(server), llm.NewMeter(), config.Segmentation{}, nil)
	classifier.Classify(context.Background(), nil)
}
