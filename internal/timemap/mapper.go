// Package timemap assigns approximate time ranges to character spans of the
// flattened transcript by proportional interpolation over the timed source
// lines. The contract is monotonicity and boundedness, not sub-segment
// precision: in-order spans always receive non-decreasing start times and
// every span receives some range.
package timemap

import (
	"math"

	"skald/internal/srt"
)

// Map converts a character span [startChar, endChar) of a text with
// totalChars characters into a time range over the source lines.
func Map(startChar, endChar, totalChars int, lines []srt.Line) (float64, float64) {
	if len(lines) == 0 || totalChars <= 0 {
		return 0, 0
	}

	startIdx := lineIndex(startChar, totalChars, lines)
	endIdx := lineIndex(endChar, totalChars, lines)
	if endIdx < startIdx {
		endIdx = startIdx
	}

	return lines[startIdx].Start, lines[endIdx].End
}

func lineIndex(charPos, totalChars int, lines []srt.Line) int {
	ratio := float64(charPos) / float64(totalChars)
	idx := int(math.Round(ratio * float64(len(lines))))
	if idx < 0 {
		idx = 0
	}
	if idx > len(lines)-1 {
		idx = len(lines) - 1
	}
	return idx
}
