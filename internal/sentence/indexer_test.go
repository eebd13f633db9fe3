package sentence

import (
	"errors"
	"strings"
	"testing"
)

const threeSentences = "他走进屋子。他看到桌上的信。他打开了信。"

func TestSplitRetainsTerminals(t *testing.T) {
	sentences := Split(threeSentences)
	if len(sentences) != 3 {
		t.Fatalf("got %d sentences, want 3", len(sentences))
	}
	want := []string{"他走进屋子。", "他看到桌上的信。", "他打开了信。"}
	for i, s := range sentences {
		if s != want[i] {
			t.Errorf("sentence %d = %q, want %q", i+1, s, want[i])
		}
	}
}

func TestSplitKeepsTrailingFragment(t *testing.T) {
	sentences := Split("完整的一句。未完的半句")
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(sentences))
	}
	if sentences[1] != "未完的半句" {
		t.Errorf("trailing fragment = %q", sentences[1])
	}
}

func TestSplitMixedTerminals(t *testing.T) {
	sentences := Split("真的吗？真的！好。")
	if len(sentences) != 3 {
		t.Fatalf("got %d sentences, want 3", len(sentences))
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split(""); got != nil {
		t.Fatalf("Split(\"\") = %v, want nil", got)
	}
}

func TestJoinRoundTrip(t *testing.T) {
	sentences := Split(threeSentences)
	joined, err := Join(sentences, 1, 3)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if joined != threeSentences {
		t.Fatalf("round trip mismatch: %q", joined)
	}

	// Every contiguous partition must concatenate back to the original.
	first, err := Join(sentences, 1, 2)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	second, err := Join(sentences, 3, 3)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if first+second != threeSentences {
		t.Fatalf("partition mismatch: %q + %q", first, second)
	}
}

func TestJoinOutOfBoundsFails(t *testing.T) {
	sentences := Split(threeSentences)
	cases := []struct{ start, end int }{
		{5, 6},
		{0, 2},
		{1, 4},
		{3, 2},
	}
	for _, tc := range cases {
		if _, err := Join(sentences, tc.start, tc.end); !errors.Is(err, ErrRangeOutOfBounds) {
			t.Errorf("Join(%d, %d) error = %v, want range out of bounds", tc.start, tc.end, err)
		}
	}
}

func TestRangeErrorMessage(t *testing.T) {
	_, err := Join(Split(threeSentences), 5, 6)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *RangeError, got %T", err)
	}
	if rangeErr.Count != 3 || !strings.Contains(err.Error(), "[5, 6]") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOffsets(t *testing.T) {
	sentences := Split(threeSentences)
	start, end, err := Offsets(sentences, 2, 3)
	if err != nil {
		t.Fatalf("Offsets: %v", err)
	}
	runes := []rune(threeSentences)
	if string(runes[start:end]) != "他看到桌上的信。他打开了信。" {
		t.Fatalf("offsets [%d, %d) select %q", start, end, string(runes[start:end]))
	}
	if total := TotalChars(sentences); total != len(runes) {
		t.Fatalf("TotalChars = %d, want %d", total, len(runes))
	}
}
