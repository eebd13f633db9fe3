// Package queue persists documents moving through the segmentation and
// alignment pipeline. Each document tracks one subtitle transcript plus an
// optional reference timeline, and advances through the statuses pending →
// segmenting → segmented → aligning → completed, with failed and review as
// terminal error states.
package queue
