package alignment

import (
	"log/slog"
	"strconv"
	"strings"

	"skald/internal/logging"
)

type parseSection int

const (
	sectionUnknown parseSection = iota
	sectionInEvents
	sectionInSettings
	sectionInSkipped
)

// parseResponse extracts the three pipe-delimited sections from one alignment
// exchange. Malformed records are dropped with a warning; a response with no
// recognizable sections yields an empty result, never an error.
func parseResponse(content string, logger *slog.Logger) ([]EventMatch, []SettingMatch, []SkipNote) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var events []EventMatch
	var settings []SettingMatch
	var skips []SkipNote

	section := sectionUnknown
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.Contains(line, sectionEvents):
			section = sectionInEvents
			continue
		case strings.Contains(line, sectionSettings):
			section = sectionInSettings
			continue
		case strings.Contains(line, sectionSkipped):
			section = sectionInSkipped
			continue
		}
		if line == "无" || line == "无。" {
			continue
		}

		switch section {
		case sectionInEvents:
			if id, matchType, confidence, explanation, ok := parseMatchRecord(line, logger); ok {
				events = append(events, EventMatch{
					EventID:     id,
					MatchType:   matchType,
					Confidence:  confidence,
					Explanation: explanation,
				})
			}
		case sectionInSettings:
			if id, matchType, confidence, explanation, ok := parseMatchRecord(line, logger); ok {
				settings = append(settings, SettingMatch{
					SettingID:   id,
					MatchType:   matchType,
					Confidence:  confidence,
					Explanation: explanation,
				})
			}
		case sectionInSkipped:
			fields := strings.SplitN(line, "|", 2)
			note := SkipNote{Content: strings.TrimSpace(fields[0])}
			if len(fields) > 1 {
				note.Reason = strings.TrimSpace(fields[1])
			}
			if note.Content != "" {
				skips = append(skips, note)
			}
		}
	}
	return events, settings, skips
}

// parseMatchRecord reads "ID|匹配类型|置信度|说明". The explanation is optional;
// everything else is required.
func parseMatchRecord(line string, logger *slog.Logger) (string, MatchType, float64, string, bool) {
	fields := strings.SplitN(line, "|", 4)
	if len(fields) < 3 {
		logger.Warn("dropping malformed match record",
			logging.String(logging.FieldDataQuality, "malformed_match"),
			logging.String("line", line))
		return "", "", 0, "", false
	}
	id := strings.TrimSpace(fields[0])
	if id == "" {
		logger.Warn("dropping match record without id",
			logging.String(logging.FieldDataQuality, "malformed_match"),
			logging.String("line", line))
		return "", "", 0, "", false
	}

	label := strings.ToLower(strings.TrimSpace(fields[1]))
	matchType, ok := matchTypeLabels[label]
	if !ok {
		matchType, ok = matchTypeLabels[strings.TrimSpace(fields[1])]
	}
	if !ok {
		logger.Warn("dropping match record with unknown match type",
			logging.String(logging.FieldDataQuality, "unknown_match_type"),
			logging.String("label", fields[1]))
		return "", "", 0, "", false
	}

	confidence, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		logger.Warn("dropping match record with unparseable confidence",
			logging.String(logging.FieldDataQuality, "malformed_match"),
			logging.String("line", line))
		return "", "", 0, "", false
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	explanation := ""
	if len(fields) > 3 {
		explanation = strings.TrimSpace(fields[3])
	}
	return id, matchType, confidence, explanation, true
}
