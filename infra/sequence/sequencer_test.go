package sequence

import (
	"runtime"
	"sync"
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := New(0)
	if got := s.Current(); got != 0 {
		t.Fatalf("fresh current: got %d want 0", got)
	}
	for want := uint64(1); want <= 100; want++ {
		if got := s.Next(); got != want {
			t.Fatalf("next: got %d want %d", got, want)
		}
	}
	if got := s.Current(); got != 100 {
		t.Fatalf("current after 100 draws: got %d want 100", got)
	}
}

func TestSequencerCurrentFromOtherGoroutines(t *testing.T) {
	s := New(0)
	const draws = 10000

	var wg sync.WaitGroup
	wg.Add(runtime.GOMAXPROCS(0))
	for w := 0; w < runtime.GOMAXPROCS(0); w++ {
		go func() {
			defer wg.Done()
			var last uint64
			for i := 0; i < 1000; i++ {
				c := s.Current()
				if c < last {
					t.Errorf("current went backwards: %d then %d", last, c)
					return
				}
				last = c
			}
		}()
	}

	for i := 0; i < draws; i++ {
		s.Next()
	}
	wg.Wait()

	if got := s.Current(); got != draws {
		t.Fatalf("current: got %d want %d", got, draws)
	}
}
