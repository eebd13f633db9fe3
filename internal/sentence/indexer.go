// Package sentence splits transcript text into sentence units with stable
// 1-based ordinals and reconstructs exact substrings from ordinal ranges.
// Round-trip exactness is the load-bearing invariant: joining any range must
// reproduce the original text byte for byte, which is what lets segments
// carry original wording with zero loss.
package sentence

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRangeOutOfBounds marks sentence ranges that reference ordinals outside
// the indexed text. Callers must abort the enclosing segment: clamping would
// silently corrupt segment content.
var ErrRangeOutOfBounds = errors.New("sentence range out of bounds")

// RangeError carries the offending range alongside the known sentence count.
type RangeError struct {
	Start int
	End   int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sentence range [%d, %d] outside [1, %d]", e.Start, e.End, e.Count)
}

func (e *RangeError) Unwrap() error { return ErrRangeOutOfBounds }

// terminal marks that close a sentence.
var terminals = map[rune]struct{}{
	'。': {},
	'！': {},
	'？': {},
}

// Split breaks text into sentences. Each sentence runs from the previous
// break up to and including its terminal mark; a trailing fragment with no
// terminal mark is kept as a final partial sentence.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if _, ok := terminals[r]; ok {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// Join concatenates sentences start through end (1-based, inclusive). The
// result is the exact substring of the original flattened text covering that
// span.
func Join(sentences []string, start, end int) (string, error) {
	if err := checkRange(sentences, start, end); err != nil {
		return "", err
	}
	return strings.Join(sentences[start-1:end], ""), nil
}

// Offsets returns the rune offsets [startChar, endChar) of a sentence range
// in the flattened text, for proportional timestamp mapping.
func Offsets(sentences []string, start, end int) (int, int, error) {
	if err := checkRange(sentences, start, end); err != nil {
		return 0, 0, err
	}
	startChar := 0
	for i := 0; i < start-1; i++ {
		startChar += len([]rune(sentences[i]))
	}
	endChar := startChar
	for i := start - 1; i < end; i++ {
		endChar += len([]rune(sentences[i]))
	}
	return startChar, endChar, nil
}

// TotalChars returns the rune length of the flattened text.
func TotalChars(sentences []string) int {
	total := 0
	for _, s := range sentences {
		total += len([]rune(s))
	}
	return total
}

func checkRange(sentences []string, start, end int) error {
	if start < 1 || end > len(sentences) || start > end {
		return &RangeError{Start: start, End: end, Count: len(sentences)}
	}
	return nil
}
