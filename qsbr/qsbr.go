package qsbr

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrActiveReaders is returned by Close while reader handles are still
// registered.
var ErrActiveReaders = errors.New("qsbr: active readers at close")

// unbounded is the scan result when no readers are registered; every
// pending entry is then safe to free.
const unbounded = ^uint64(0)

// Reclaimer is the shared reclamation authority. One writer thread
// retires superseded values and collects; any number of reader threads
// register handles and quiesce through them. Construct one Reclaimer
// and hand it to every participating thread; it is never reached
// through hidden global state.
type Reclaimer struct {
	epoch atomic.Uint64

	mu      sync.Mutex
	readers []*Reader

	// garbage is owned by the writer thread; pending mirrors its
	// size so other goroutines can observe it.
	garbage garbageQueue
	pending atomic.Int64
}

// New returns a Reclaimer at its initial generation.
func New() *Reclaimer {
	rc := &Reclaimer{}
	rc.epoch.Store(1)
	return rc
}

// Retire hands g to the reclaimer, stamped with the current epoch.
// The caller must already have unlinked the value from shared state.
// Writer-only.
func (rc *Reclaimer) Retire(g Garbage) {
	rc.garbage.push(rc.epoch.Load(), g)
	rc.pending.Add(1)
}

// Collect advances the epoch and frees every entry retired strictly
// before the slowest registered reader's recorded epoch. An empty
// registry frees everything. The returned lag counts how many
// advances that slowest reader has not yet acknowledged, zero when
// fully caught up. Writer-only.
func (rc *Reclaimer) Collect() uint64 {
	min := rc.minReaderEpoch()
	prev := rc.epoch.Add(1) - 1

	for {
		e := rc.garbage.front()
		if e == nil || e.epoch >= min {
			// Entries sit in retirement order; the first one that
			// must wait shields everything behind it.
			break
		}
		rc.garbage.pop().Free()
		rc.pending.Add(-1)
	}

	if min > prev {
		return 0
	}
	return prev - min
}

func (rc *Reclaimer) minReaderEpoch() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	min := unbounded
	for _, r := range rc.readers {
		if e := r.local.Load(); e < min {
			min = e
		}
	}
	return min
}

// PendingGarbage reports how many retired entries await destruction.
// Safe from any goroutine.
func (rc *Reclaimer) PendingGarbage() int {
	return int(rc.pending.Load())
}

// Generation reports the current epoch. Safe from any goroutine.
func (rc *Reclaimer) Generation() uint64 {
	return rc.epoch.Load()
}

// ActiveReaders reports how many reader handles are registered.
func (rc *Reclaimer) ActiveReaders() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.readers)
}

// Close tears the reclaimer down. While handles remain registered it
// refuses, returning ErrActiveReaders without touching the queue.
// Otherwise it drains the queue, freeing every pending entry, and
// returns nil. Writer-only.
func (rc *Reclaimer) Close() error {
	if rc.ActiveReaders() != 0 {
		return ErrActiveReaders
	}
	for rc.garbage.front() != nil {
		rc.garbage.pop().Free()
		rc.pending.Add(-1)
	}
	return nil
}
