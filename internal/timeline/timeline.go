// Package timeline models the reference event/setting timeline extracted
// upstream from the source novel. The alignment engine reads identifiers and
// summaries only; nothing in this package is mutated after loading.
package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Event is one plot event in story order.
type Event struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Position int    `json:"position"`
}

// Setting is one world/setting entry in story order.
type Setting struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Position int    `json:"position"`
}

// Timeline bundles the reference entries for one document.
type Timeline struct {
	Events   []Event   `json:"events"`
	Settings []Setting `json:"settings"`
}

// LoadFile decodes a timeline JSON document.
func LoadFile(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timeline: %w", err)
	}
	var tl Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("parse timeline %s: %w", path, err)
	}
	for i, event := range tl.Events {
		if strings.TrimSpace(event.ID) == "" {
			return nil, fmt.Errorf("timeline %s: event %d has no id", path, i)
		}
	}
	for i, setting := range tl.Settings {
		if strings.TrimSpace(setting.ID) == "" {
			return nil, fmt.Errorf("timeline %s: setting %d has no id", path, i)
		}
	}
	return &tl, nil
}
