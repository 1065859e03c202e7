// Package sequence numbers the samples of a run. The sampler draws on
// the writer thread; publishers and metrics read the high-water mark
// from their own goroutines.
package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic sample sequence numbers.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer. The first Next after New(0) returns 1,
// matching the journal's first key of a run.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
