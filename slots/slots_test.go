package slots

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/suspend0/hullabaloo-darren/qsbr"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func TestSwapReturnsPrevious(t *testing.T) {
	rng := testRNG()
	tbl := NewTable(4, 8)
	tbl.Fill(rng)

	old := tbl.Load(2)
	if old == nil {
		t.Fatal("fill left slot 2 empty")
	}

	next := tbl.NewValue(rng)
	prev := tbl.Swap(2, next)
	if prev != old {
		t.Fatal("swap must return the superseded value")
	}
	if got := tbl.Load(2); got != next {
		t.Fatal("swap did not publish the new value")
	}
}

func TestFreeReturnsValueToPool(t *testing.T) {
	rng := testRNG()
	tbl := NewTable(1, 4)
	tbl.Fill(rng) // one value drawn for the slot
	if got := tbl.PoolIdle(); got != 3 {
		t.Fatalf("idle after fill: got %d want 3", got)
	}

	prev := tbl.Swap(0, tbl.NewValue(rng))
	if got := tbl.PoolIdle(); got != 2 {
		t.Fatalf("idle after swap: got %d want 2", got)
	}

	prev.Free()
	if got := tbl.PoolIdle(); got != 3 {
		t.Fatalf("idle after free: got %d want 3", got)
	}

	// The freed value is the next one drawn.
	if got := tbl.NewValue(rng); got != prev {
		t.Fatal("expected the freed value to be reused")
	}
}

func TestNewValueBounds(t *testing.T) {
	rng := testRNG()
	tbl := NewTable(1, 2)

	for i := 0; i < 1000; i++ {
		v := tbl.NewValue(rng)
		if v.Len() > MaxValueLen {
			t.Fatalf("payload length %d exceeds %d", v.Len(), MaxValueLen)
		}
		for _, c := range v.Bytes() {
			if strings.IndexByte(alphabet, c) < 0 {
				t.Fatalf("payload byte %q outside the charset", c)
			}
		}
		v.Free()
	}
}

func TestRetiredValueReturnsThroughReclaimer(t *testing.T) {
	rng := testRNG()
	rc := qsbr.New()
	tbl := NewTable(2, 8)
	tbl.Fill(rng)
	idle := tbl.PoolIdle()

	// Swap and retire with no registered readers: one collect brings
	// the value straight back to the pool.
	prev := tbl.Swap(1, tbl.NewValue(rng))
	rc.Retire(prev)
	if got := tbl.PoolIdle(); got != idle-1 {
		t.Fatalf("idle before collect: got %d want %d", got, idle-1)
	}
	rc.Collect()
	if got := tbl.PoolIdle(); got != idle {
		t.Fatalf("idle after collect: got %d want %d", got, idle)
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
