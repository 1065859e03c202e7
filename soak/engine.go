package soak

import (
	"context"
	"log"
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/suspend0/hullabaloo-darren/infra/sequence"
	"github.com/suspend0/hullabaloo-darren/qsbr"
	"github.com/suspend0/hullabaloo-darren/slots"
	"github.com/suspend0/hullabaloo-darren/stats"
)

// Engine drives one soak run over a shared table. Single use: build
// with NewEngine, execute with Run.
type Engine struct {
	cfg   Config
	runID string

	rc    *qsbr.Reclaimer
	table *slots.Table
	seq   *sequence.Sequencer
	ring  *stats.Ring
	sinks []stats.Sink

	retired   atomic.Uint64
	reclaimed atomic.Uint64
	lag       atomic.Uint64
	dropped   atomic.Uint64
}

// NewEngine wires a run from cfg. The table starts fully populated so
// every writer swap retires a value.
func NewEngine(cfg Config, sinks ...stats.Sink) *Engine {
	if cfg.Slots <= 0 {
		cfg.Slots = 256
	}
	if cfg.Readers <= 0 {
		cfg.Readers = 4
	}
	if cfg.PoolCapacity <= 0 {
		cfg.PoolCapacity = 4 * cfg.Slots
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 250 * time.Millisecond
	}
	if cfg.RingSize == 0 {
		cfg.RingSize = 1024
	}
	cfg.RingSize = nextPow2(cfg.RingSize)

	e := &Engine{
		cfg:   cfg,
		runID: uuid.NewString(),
		rc:    qsbr.New(),
		table: slots.NewTable(cfg.Slots, cfg.PoolCapacity),
		seq:   sequence.New(0),
		ring:  stats.NewRing(cfg.RingSize),
		sinks: sinks,
	}
	e.table.Fill(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	return e
}

// RunID identifies this run in samples, journal keys and Kafka
// messages.
func (e *Engine) RunID() string { return e.runID }

// -------------------- Run --------------------

// Run executes the soak until ctx is cancelled or the configured
// duration elapses, then drains and tears the engine down.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Duration)
	defer cancel()

	log.Printf("[soak] run %s starting: slots=%d readers=%d interval=%v",
		e.runID, e.cfg.Slots, e.cfg.Readers, e.cfg.SampleInterval)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.writerLoop(ctx) })
	g.Go(func() error { return e.pumpLoop(ctx) })
	for i := 0; i < e.cfg.Readers; i++ {
		g.Go(func() error { return e.readerLoop(ctx) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Every loop is done and every reader handle closed; teardown
	// drains whatever the last collect could not free.
	if err := e.rc.Close(); err != nil {
		return err
	}
	e.reclaimed.Store(e.retired.Load())

	// Closing sample records the drained end state. This goroutine is
	// the only one left, so it may work both ends of the ring.
	e.sample(time.Now())
	e.drain()

	log.Printf("[soak] run %s done: generation=%d retired=%d reclaimed=%d dropped=%d",
		e.runID, e.rc.Generation(), e.retired.Load(), e.reclaimed.Load(), e.dropped.Load())
	return nil
}

// -------------------- Loops --------------------

func (e *Engine) writerLoop(ctx context.Context) error {
	// The writer owns its OS thread; it is the loop everything else
	// is measured against.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	next := time.Now().Add(e.cfg.SampleInterval)

	for i := 0; ; i++ {
		if i&1023 == 0 {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if now := time.Now(); !now.Before(next) {
				e.sample(now)
				next = now.Add(e.cfg.SampleInterval)
			}
		}

		v := e.table.NewValue(rng)
		if prev := e.table.Swap(rng.IntN(e.table.Len()), v); prev != nil {
			e.rc.Retire(prev)
			e.retired.Add(1)
		}
		e.lag.Store(e.rc.Collect())
		e.reclaimed.Store(e.retired.Load() - uint64(e.rc.PendingGarbage()))
	}
}

func (e *Engine) readerLoop(ctx context.Context) error {
	r := e.rc.CreateReader()
	defer r.Close()

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	var touched uint64

	for i := 0; ; i++ {
		if i&1023 == 0 {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
		}

		// A loaded value stays valid until the quiesce that follows
		// its use, never past it.
		if v := e.table.Load(rng.IntN(e.table.Len())); v != nil {
			touched += uint64(v.Len())
		}
		r.Quiesce()
	}
}

func (e *Engine) pumpLoop(ctx context.Context) error {
	period := e.cfg.SampleInterval / 2
	if period < time.Millisecond {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Run drains the leftovers once the writer has stopped.
			return nil
		case <-ticker.C:
			e.drain()
		}
	}
}

// -------------------- Samples --------------------

// sample snapshots the engine figures into the ring. Writer side.
func (e *Engine) sample(now time.Time) {
	s := &stats.Sample{
		RunID:      e.runID,
		Seq:        e.seq.Next(),
		UnixNanos:  now.UnixNano(),
		Generation: e.rc.Generation(),
		Pending:    uint64(e.rc.PendingGarbage()),
		Lag:        e.lag.Load(),
		Readers:    uint64(e.rc.ActiveReaders()),
		Retired:    e.retired.Load(),
		Reclaimed:  e.reclaimed.Load(),
	}
	if !e.ring.Enqueue(s) {
		e.dropped.Add(1)
	}
}

func (e *Engine) drain() {
	for s := e.ring.Dequeue(); s != nil; s = e.ring.Dequeue() {
		for _, snk := range e.sinks {
			if err := snk.Publish(s); err != nil {
				log.Printf("[soak] sink %T: %v", snk, err)
			}
		}
	}
}

// -------------------- Introspection --------------------

// These are safe from any goroutine; the metrics collectors and the
// RPC surface read them while the run is live.

func (e *Engine) Generation() uint64 { return e.rc.Generation() }

func (e *Engine) PendingGarbage() int { return e.rc.PendingGarbage() }

func (e *Engine) ActiveReaders() int { return e.rc.ActiveReaders() }

func (e *Engine) Lag() uint64 { return e.lag.Load() }

func (e *Engine) Retired() uint64 { return e.retired.Load() }

func (e *Engine) Reclaimed() uint64 { return e.reclaimed.Load() }

func (e *Engine) DroppedSamples() uint64 { return e.dropped.Load() }
