package alignment

import (
	"time"

	"skald/internal/services/llm"
)

// Report is the JSON document written alongside each aligned transcript.
type Report struct {
	Title             string              `json:"title"`
	Alignments        []FragmentAlignment `json:"alignments"`
	TotalFragments    int                 `json:"total_fragments"`
	Analysis          CoverageReport      `json:"analysis"`
	ProcessingSeconds float64             `json:"processing_seconds"`
	Usage             llm.Usage           `json:"usage"`
}

// BuildReport assembles the alignment report for one document.
func BuildReport(title string, alignments []FragmentAlignment, analysis CoverageReport, elapsed time.Duration, usage llm.Usage) Report {
	return Report{
		Title:             title,
		Alignments:        alignments,
		TotalFragments:    len(alignments),
		Analysis:          analysis,
		ProcessingSeconds: elapsed.Seconds(),
		Usage:             usage,
	}
}
