package qsbr

// Garbage is a retired value: a single-method capability that destroys
// the concrete payload it captured. Free runs exactly once, on the
// writer thread, after no reader can still observe the payload.
type Garbage interface {
	Free()
}

// FreeFunc adapts a plain function to Garbage.
type FreeFunc func()

func (f FreeFunc) Free() { f() }

type entry struct {
	epoch uint64
	item  Garbage
}

// garbageQueue is the writer-owned FIFO of retired entries. Epochs are
// non-decreasing front to back because only the writer appends and the
// stamp it uses never moves backwards. No internal locking.
type garbageQueue struct {
	buf  []entry
	head int
}

func (q *garbageQueue) push(epoch uint64, item Garbage) {
	q.buf = append(q.buf, entry{epoch: epoch, item: item})
}

// front returns the oldest entry without removing it, nil when empty.
func (q *garbageQueue) front() *entry {
	if q.head == len(q.buf) {
		return nil
	}
	return &q.buf[q.head]
}

func (q *garbageQueue) pop() Garbage {
	g := q.buf[q.head].item
	q.buf[q.head] = entry{} // release the reference
	q.head++
	switch {
	case q.head == len(q.buf):
		q.buf = q.buf[:0]
		q.head = 0
	case q.head >= 32 && q.head > len(q.buf)/2:
		// Most of the slice is dead slots; shift the live tail down.
		n := copy(q.buf, q.buf[q.head:])
		for i := n; i < len(q.buf); i++ {
			q.buf[i] = entry{}
		}
		q.buf = q.buf[:n]
		q.head = 0
	}
	return g
}

func (q *garbageQueue) size() int {
	return len(q.buf) - q.head
}
