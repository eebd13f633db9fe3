// Package segmentation implements the two-pass semantic segmentation
// protocol: a propose pass drafts paragraph boundaries over numbered
// sentences, a critique pass reviews them, and the accepted division is
// materialized into segments carrying exact transcript text, approximate
// time ranges, and a content category.
package segmentation

// Category labels the narrative function of a segment.
type Category string

const (
	// CategorySetting marks world or setting exposition.
	CategorySetting Category = "A"
	// CategoryPlot marks plot progression. It is also the fallback when
	// classification fails.
	CategoryPlot Category = "B"
	// CategoryMeta marks meta commentary from the narrator.
	CategoryMeta Category = "C"
)

// Mode records which pass produced the accepted division.
type Mode string

const (
	ModeDraft    Mode = "draft"
	ModeRevision Mode = "revision"
)

// Segment is one semantic unit of the transcript. Content is the exact
// substring of the flattened transcript covering the sentence range.
type Segment struct {
	Index         int      `json:"index"`
	Content       string   `json:"content"`
	Description   string   `json:"description,omitempty"`
	StartTime     float64  `json:"start_time"`
	EndTime       float64  `json:"end_time"`
	SentenceCount int      `json:"sentence_count"`
	CharCount     int      `json:"char_count"`
	Category      Category `json:"category"`
}
