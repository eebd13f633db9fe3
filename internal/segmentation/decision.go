package segmentation

import "strings"

// Decision is the outcome of reading the critique pass output.
type Decision int

const (
	// DecisionKeepDraft means the critique endorsed the draft division.
	DecisionKeepDraft Decision = iota
	// DecisionUseRevision means the critique emitted a revised division.
	DecisionUseRevision
)

// acceptMarkers are the phrasings models use to endorse the draft. Matching
// is substring-based because endorsements often arrive padded with pleasantries.
var acceptMarkers = []string{
	"无需修改",
	"无需调整",
	"不需要修改",
	"不需要调整",
	"无须修改",
	"保持不变",
}

// Decide classifies the critique output. An accept marker anywhere in the
// text keeps the draft; everything else is treated as a revision attempt.
func Decide(critiqueOutput string) Decision {
	trimmed := strings.TrimSpace(critiqueOutput)
	for _, marker := range acceptMarkers {
		if strings.Contains(trimmed, marker) {
			return DecisionKeepDraft
		}
	}
	return DecisionUseRevision
}
