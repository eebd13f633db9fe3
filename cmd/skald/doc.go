// Command skald queues subtitle transcripts, segments them with a two-pass
// model protocol, and aligns the segments against a novel-derived timeline.
package main
