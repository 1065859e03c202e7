package stats

import "sync/atomic"

// Ring is a lock-free single-producer single-consumer queue handing
// samples from the engine thread to the publishing side. Enqueue
// refuses when full; the producer drops the sample rather than block
// the reclamation loop.
type Ring struct {
	head  atomic.Uint64
	_pad1 [56]byte
	tail  atomic.Uint64
	_pad2 [56]byte
	buf   []*Sample
	mask  uint64
}

// NewRing returns a ring of the given power-of-two size.
func NewRing(size uint64) *Ring {
	if size == 0 || size&(size-1) != 0 {
		panic("stats: ring size must be a power of two")
	}
	return &Ring{
		buf:  make([]*Sample, size),
		mask: size - 1,
	}
}

// Enqueue publishes s. It returns false when the ring is full.
// Producer side only.
func (r *Ring) Enqueue(s *Sample) bool {
	h := r.head.Load()
	t := r.tail.Load()
	if h-t == uint64(len(r.buf)) {
		return false
	}
	r.buf[h&r.mask] = s
	r.head.Store(h + 1)
	return true
}

// Dequeue takes the oldest sample, nil when empty. Consumer side only.
func (r *Ring) Dequeue() *Sample {
	t := r.tail.Load()
	h := r.head.Load()
	if t == h {
		return nil
	}
	s := r.buf[t&r.mask]
	r.buf[t&r.mask] = nil // release the reference
	r.tail.Store(t + 1)
	return s
}
