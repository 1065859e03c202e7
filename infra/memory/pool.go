package memory

// Pool is a fixed-capacity free stack of *T. Get falls back to the
// constructor once the stack drains; Put drops values once it is full.
// A Pool belongs to a single goroutine, by contract the same writer
// that collects retired values.
type Pool[T any] struct {
	free []*T
	ctor func() *T
}

// NewPool returns a Pool prefilled to capacity.
func NewPool[T any](capacity int, ctor func() *T) *Pool[T] {
	p := &Pool[T]{
		free: make([]*T, capacity),
		ctor: ctor,
	}
	for i := range p.free {
		p.free[i] = ctor()
	}
	return p
}

// Get pops a pooled value, allocating a fresh one when the stack is
// empty.
func (p *Pool[T]) Get() *T {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return v
	}
	return p.ctor()
}

// Put pushes v back; values beyond capacity are dropped.
func (p *Pool[T]) Put(v *T) {
	if len(p.free) == cap(p.free) {
		return
	}
	p.free = append(p.free, v)
}

// Idle reports how many values sit in the stack.
func (p *Pool[T]) Idle() int {
	return len(p.free)
}
