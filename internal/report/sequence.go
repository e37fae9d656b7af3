package report

import "sync/atomic"

// Sequencer numbers report requests so a caller can drop responses that
// arrive after a newer request was issued.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number; it becomes the only current one.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Current reports whether seq is the most recently issued number.
func (s *Sequencer) Current(seq uint64) bool {
	return seq == s.latest.Load()
}
