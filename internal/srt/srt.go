// Package srt parses SubRip subtitle files into timed source lines and
// flattens them into the transcript blob the segmentation protocol consumes.
package srt

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Line is one timed unit of input. Immutable once parsed; the timestamp
// mapper consumes lines read-only.
type Line struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ParseFile reads an SRT file and returns its cues in file order.
func ParseFile(path string) ([]Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return Parse(string(data))
}

// Parse extracts cues from SRT content. Blank blocks and malformed cues are
// skipped rather than failing the whole file.
func Parse(content string) ([]Line, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	blocks := strings.Split(content, "\n\n")
	var lines []Line

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		rows := strings.Split(block, "\n")
		if len(rows) < 2 {
			continue
		}

		var index int
		if _, err := fmt.Sscanf(strings.TrimSpace(rows[0]), "%d", &index); err != nil {
			continue
		}

		if !strings.Contains(rows[1], "-->") {
			continue
		}
		parts := strings.Split(rows[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := parseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := parseTimestamp(parts[1])
		if err != nil {
			continue
		}

		text := ""
		if len(rows) > 2 {
			text = strings.TrimSpace(strings.Join(rows[2:], "\n"))
		}

		lines = append(lines, Line{Index: index, Start: start, End: end, Text: text})
	}

	return lines, nil
}

// Flatten concatenates cue texts into the transcript blob, dropping
// intra-cue line breaks so sentence indexing sees one continuous text.
func Flatten(lines []Line) string {
	var sb strings.Builder
	for _, line := range lines {
		text := strings.ReplaceAll(line.Text, "\n", "")
		sb.WriteString(text)
	}
	return sb.String()
}

func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// SRT standard uses comma for milliseconds; tolerate periods.
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}
