package search

import (
	"sync"
	"testing"
)

func TestSequencerLatestWins(t *testing.T) {
	var s Sequencer
	if s.IsLatest(0) || s.Latest() != 0 {
		t.Fatalf("zero tag must never be latest")
	}
	first := s.Next()
	second := s.Next()
	if s.IsLatest(first) || !s.IsLatest(second) {
		t.Fatalf("only the newest tag is latest: first=%d second=%d", first, second)
	}
}

func TestSequencerConcurrentTagsAreUnique(t *testing.T) {
	var s Sequencer
	var mu sync.Mutex
	seen := make(map[uint64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag := s.Next()
			mu.Lock()
			seen[tag] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 50 || s.Latest() != 50 {
		t.Fatalf("tags=%d latest=%d", len(seen), s.Latest())
	}
}
