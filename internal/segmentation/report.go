package segmentation

import (
	"time"

	"skald/internal/services/llm"
)

// Report is the JSON document written alongside each segmented transcript.
type Report struct {
	Title             string    `json:"title"`
	Segments          []Segment `json:"segments"`
	TotalSegments     int       `json:"total_segments"`
	TotalSentences    int       `json:"total_sentences"`
	AvgSentenceCount  float64   `json:"avg_sentence_count"`
	Mode              Mode      `json:"mode"`
	ProcessingSeconds float64   `json:"processing_seconds"`
	Usage             llm.Usage `json:"usage"`
}

// BuildReport assembles the report for one document.
func BuildReport(title string, result *Result, elapsed time.Duration, usage llm.Usage) Report {
	totalSentences := 0
	for _, seg := range result.Segments {
		totalSentences += seg.SentenceCount
	}
	avg := 0.0
	if len(result.Segments) > 0 {
		avg = float64(totalSentences) / float64(len(result.Segments))
	}
	return Report{
		Title:             title,
		Segments:          result.Segments,
		TotalSegments:     len(result.Segments),
		TotalSentences:    totalSentences,
		AvgSentenceCount:  avg,
		Mode:              result.Mode,
		ProcessingSeconds: elapsed.Seconds(),
		Usage:             usage,
	}
}
