package memory

import "testing"

type thing struct{ n int }

func TestPoolPrefillsAndReuses(t *testing.T) {
	built := 0
	p := NewPool(2, func() *thing {
		built++
		return &thing{}
	})
	if built != 2 {
		t.Fatalf("prefill built %d values, want 2", built)
	}

	a := p.Get()
	b := p.Get()
	if built != 2 {
		t.Fatalf("gets from a full stack built %d extra values", built-2)
	}
	if p.Idle() != 0 {
		t.Fatalf("idle after draining: got %d want 0", p.Idle())
	}

	c := p.Get() // drained, must fall back to the constructor
	if built != 3 {
		t.Fatalf("get on empty stack built %d values, want 3 total", built)
	}

	p.Put(a)
	p.Put(b)
	if p.Idle() != 2 {
		t.Fatalf("idle after two puts: got %d want 2", p.Idle())
	}
	p.Put(c) // beyond capacity, dropped
	if p.Idle() != 2 {
		t.Fatalf("put past capacity must drop: idle %d", p.Idle())
	}

	if got := p.Get(); got != b {
		t.Fatal("expected the most recently returned value first")
	}
}
