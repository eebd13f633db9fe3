package alignment

import (
	"fmt"

	"skald/internal/timeline"
)

// CoverageStats summarizes which reference entries the narration touched.
// Ratios are 0 when the timeline side is empty.
type CoverageStats struct {
	EventCoverage     float64  `json:"event_coverage"`
	SettingCoverage   float64  `json:"setting_coverage"`
	MatchedEvents     []string `json:"matched_events"`
	UnmatchedEvents   []string `json:"unmatched_events"`
	MatchedSettings   []string `json:"matched_settings"`
	UnmatchedSettings []string `json:"unmatched_settings"`
}

// ConfidenceBuckets counts matches per confidence band.
type ConfidenceBuckets struct {
	High   int `json:"high"`   // > 0.9
	Medium int `json:"medium"` // 0.7 to 0.9
	Low    int `json:"low"`    // < 0.7
}

// RewriteStats summarizes how the narration rewrites the source.
type RewriteStats struct {
	MatchTypeCounts  map[MatchType]int `json:"match_type_counts"`
	DominantStrategy MatchType         `json:"dominant_strategy"`
	Confidence       ConfidenceBuckets `json:"confidence"`
	EmptyFragments   int               `json:"empty_fragments"`
}

// CoverageReport is the full analysis over one document's alignments.
type CoverageReport struct {
	Coverage        CoverageStats `json:"coverage"`
	Rewrite         RewriteStats  `json:"rewrite"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

// Analyze computes coverage and rewrite statistics. It is a pure function of
// its inputs; calling it twice on the same data yields identical reports.
func Analyze(alignments []FragmentAlignment, tl *timeline.Timeline) CoverageReport {
	matchedEventIDs := make(map[string]struct{})
	matchedSettingIDs := make(map[string]struct{})
	counts := make(map[MatchType]int)
	var buckets ConfidenceBuckets
	emptyFragments := 0

	record := func(matchType MatchType, confidence float64) {
		counts[matchType]++
		switch {
		case confidence > 0.9:
			buckets.High++
		case confidence >= 0.7:
			buckets.Medium++
		default:
			buckets.Low++
		}
	}

	for _, alignment := range alignments {
		if alignment.IsEmpty() {
			emptyFragments++
			continue
		}
		for _, match := range alignment.MatchedEvents {
			matchedEventIDs[match.EventID] = struct{}{}
			record(match.MatchType, match.Confidence)
		}
		for _, match := range alignment.MatchedSettings {
			matchedSettingIDs[match.SettingID] = struct{}{}
			record(match.MatchType, match.Confidence)
		}
	}

	report := CoverageReport{
		Rewrite: RewriteStats{
			MatchTypeCounts:  counts,
			DominantStrategy: dominantStrategy(counts),
			Confidence:       buckets,
			EmptyFragments:   emptyFragments,
		},
	}

	report.Coverage.MatchedEvents, report.Coverage.UnmatchedEvents =
		splitEventIDs(tl.Events, matchedEventIDs)
	report.Coverage.MatchedSettings, report.Coverage.UnmatchedSettings =
		splitSettingIDs(tl.Settings, matchedSettingIDs)
	if len(tl.Events) > 0 {
		report.Coverage.EventCoverage = float64(len(report.Coverage.MatchedEvents)) / float64(len(tl.Events))
	}
	if len(tl.Settings) > 0 {
		report.Coverage.SettingCoverage = float64(len(report.Coverage.MatchedSettings)) / float64(len(tl.Settings))
	}

	report.Recommendations = recommend(report, len(alignments))
	return report
}

// dominantStrategy picks the most frequent match type. Ties resolve toward
// the more faithful end of the taxonomy.
func dominantStrategy(counts map[MatchType]int) MatchType {
	best := MatchNone
	bestCount := 0
	for matchType, count := range counts {
		if count > bestCount || (count == bestCount && matchTypeRank[matchType] < matchTypeRank[best]) {
			best = matchType
			bestCount = count
		}
	}
	return best
}

// splitEventIDs partitions event IDs into matched and unmatched, both in
// timeline order so output is deterministic.
func splitEventIDs(events []timeline.Event, matched map[string]struct{}) ([]string, []string) {
	hit := make([]string, 0, len(matched))
	var miss []string
	for _, event := range events {
		if _, ok := matched[event.ID]; ok {
			hit = append(hit, event.ID)
		} else {
			miss = append(miss, event.ID)
		}
	}
	return hit, miss
}

func splitSettingIDs(settings []timeline.Setting, matched map[string]struct{}) ([]string, []string) {
	hit := make([]string, 0, len(matched))
	var miss []string
	for _, setting := range settings {
		if _, ok := matched[setting.ID]; ok {
			hit = append(hit, setting.ID)
		} else {
			miss = append(miss, setting.ID)
		}
	}
	return hit, miss
}

func recommend(report CoverageReport, totalFragments int) []string {
	var recs []string
	if report.Coverage.EventCoverage < 0.5 && len(report.Coverage.UnmatchedEvents) > 0 {
		recs = append(recs, fmt.Sprintf(
			"event coverage is low (%.0f%%); %d events were never narrated",
			report.Coverage.EventCoverage*100, len(report.Coverage.UnmatchedEvents)))
	}
	if totalFragments > 0 && report.Rewrite.EmptyFragments*2 > totalFragments {
		recs = append(recs, fmt.Sprintf(
			"more than half of the fragments (%d of %d) matched nothing; check timeline quality",
			report.Rewrite.EmptyFragments, totalFragments))
	}
	if report.Rewrite.Confidence.Low > report.Rewrite.Confidence.High+report.Rewrite.Confidence.Medium {
		recs = append(recs, "most matches are low confidence; consider manual review")
	}
	return recs
}
