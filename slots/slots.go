package slots

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/suspend0/hullabaloo-darren/infra/memory"
	"github.com/suspend0/hullabaloo-darren/qsbr"
)

// alphabet is the demo payload charset: digits and ASCII letters.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// MaxValueLen bounds a generated payload.
const MaxValueLen = 62

// Value is one pooled payload. The writer fills it before publishing;
// readers touch only values reached through Table.Load. A retired
// Value is the unit the reclaimer destroys: Free hands it back to the
// table's pool.
type Value struct {
	data  []byte
	owner *Table
}

var _ qsbr.Garbage = (*Value)(nil)

// Bytes exposes the payload, valid until the value is retired.
func (v *Value) Bytes() []byte { return v.data }

// Len reports the payload length.
func (v *Value) Len() int { return len(v.data) }

// Free returns the value to its pool. Runs on the writer thread, from
// the reclaimer, once no reader can still hold the value.
func (v *Value) Free() { v.owner.pool.Put(v) }

// Table is the shared array the demo mutates: one atomic pointer per
// slot, a single writer swapping, any number of readers loading.
type Table struct {
	slots []atomic.Pointer[Value]
	pool  *memory.Pool[Value]
}

// NewTable returns a table of n empty slots backed by a value pool of
// the given capacity.
func NewTable(n, poolCapacity int) *Table {
	t := &Table{slots: make([]atomic.Pointer[Value], n)}
	t.pool = memory.NewPool(poolCapacity, func() *Value {
		return &Value{data: make([]byte, 0, MaxValueLen), owner: t}
	})
	return t
}

// Fill publishes a fresh random value into every slot. Writer-only.
func (t *Table) Fill(rng *rand.Rand) {
	for i := range t.slots {
		t.slots[i].Store(t.NewValue(rng))
	}
}

// NewValue draws a pooled value refilled with random bytes.
// Writer-only.
func (t *Table) NewValue(rng *rand.Rand) *Value {
	v := t.pool.Get()
	n := rng.IntN(MaxValueLen + 1)
	b := v.data[:0]
	for i := 0; i < n; i++ {
		b = append(b, alphabet[rng.IntN(len(alphabet))])
	}
	v.data = b
	return v
}

// Load returns the current value of slot i. Safe from any reader.
func (t *Table) Load(i int) *Value { return t.slots[i].Load() }

// Swap publishes v into slot i and returns the superseded value for
// retirement. Writer-only.
func (t *Table) Swap(i int, v *Value) *Value { return t.slots[i].Swap(v) }

// Len reports the slot count.
func (t *Table) Len() int { return len(t.slots) }

// PoolIdle reports how many values sit unused in the pool.
func (t *Table) PoolIdle() int { return t.pool.Idle() }
