package search

import "sync/atomic"

// Sequencer hands out monotonically increasing request tags. A response is
// applied only if its tag is still the latest one issued.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new tag.
func (s *Sequencer) Next() uint64 { return s.last.Add(1) }

// Latest returns the most recently issued tag, 0 before the first request.
func (s *Sequencer) Latest() uint64 { return s.last.Load() }

// IsLatest reports whether seq is the most recently issued tag.
func (s *Sequencer) IsLatest(seq uint64) bool { return seq != 0 && seq == s.last.Load() }
