package llm

import "sync"

// Usage is the token accounting delta from one completed call.
type Usage struct {
	Calls            int `json:"calls"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// TotalTokens returns prompt plus completion tokens.
func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// Add folds another usage delta into this one.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		Calls:            u.Calls + other.Calls,
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
	}
}

// Meter accumulates usage across calls. Stages record the deltas returned by
// the client instead of mutating shared counters, so concurrent document
// tasks can share one meter safely.
type Meter struct {
	mu    sync.Mutex
	total Usage
}

// NewMeter returns an empty usage accumulator.
func NewMeter() *Meter {
	return &Meter{}
}

// Record folds a usage delta into the running total.
func (m *Meter) Record(usage Usage) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = m.total.Add(usage)
}

// Snapshot returns the accumulated usage so far.
func (m *Meter) Snapshot() Usage {
	if m == nil {
		return Usage{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}
