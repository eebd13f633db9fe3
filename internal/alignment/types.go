// Package alignment matches accepted transcript segments against the
// reference event/setting timeline, one model exchange per segment, and
// derives coverage statistics over the whole document. A failed exchange
// degrades to an empty alignment for that segment; index correspondence with
// the input segments always holds.
package alignment

// MatchType describes how the narration relates to the matched reference
// entry.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchParaphrase MatchType = "paraphrase"
	MatchSummarize  MatchType = "summarize"
	MatchExpand     MatchType = "expand"
	MatchNone       MatchType = "none"
)

// matchTypeRank orders match types for dominant-strategy tie-breaking.
// Lower rank wins.
var matchTypeRank = map[MatchType]int{
	MatchExact:      0,
	MatchParaphrase: 1,
	MatchSummarize:  2,
	MatchExpand:     3,
	MatchNone:       4,
}

// EventMatch ties a segment to one timeline event.
type EventMatch struct {
	EventID     string    `json:"event_id"`
	MatchType   MatchType `json:"match_type"`
	Confidence  float64   `json:"confidence"`
	Explanation string    `json:"explanation,omitempty"`
}

// SettingMatch ties a segment to one timeline setting entry.
type SettingMatch struct {
	SettingID   string    `json:"setting_id"`
	MatchType   MatchType `json:"match_type"`
	Confidence  float64   `json:"confidence"`
	Explanation string    `json:"explanation,omitempty"`
}

// SkipNote records narration content the model judged to match nothing in
// the timeline.
type SkipNote struct {
	Content string `json:"content"`
	Reason  string `json:"reason,omitempty"`
}

// FragmentAlignment is the alignment outcome for one segment. An entry with
// no matches and no skips means the exchange failed or matched nothing.
type FragmentAlignment struct {
	FragmentIndex   int            `json:"fragment_index"`
	StartTime       float64        `json:"start_time"`
	EndTime         float64        `json:"end_time"`
	Content         string         `json:"content"`
	MatchedEvents   []EventMatch   `json:"matched_events"`
	MatchedSettings []SettingMatch `json:"matched_settings"`
	Skipped         []SkipNote     `json:"skipped,omitempty"`
}

// IsEmpty reports whether the fragment matched nothing at all.
func (f FragmentAlignment) IsEmpty() bool {
	return len(f.MatchedEvents) == 0 && len(f.MatchedSettings) == 0
}
