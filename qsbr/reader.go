package qsbr

import "sync/atomic"

// Reader is a per-thread registration handle. The owning thread calls
// Quiesce at points where it holds no reference into shared state; the
// writer reads the recorded epoch during Collect. The struct fills one
// cache line so neighbouring handles do not false-share.
type Reader struct {
	local atomic.Uint64
	rc    *Reclaimer
	_pad  [48]byte
}

// CreateReader registers a new reader and returns its handle. A new
// reader starts at the current epoch: it gates only garbage retired
// after it joined. Never fails.
func (rc *Reclaimer) CreateReader() *Reader {
	r := &Reader{rc: rc}
	rc.mu.Lock()
	r.local.Store(rc.epoch.Load())
	rc.readers = append(rc.readers, r)
	rc.mu.Unlock()
	return r
}

// Quiesce records that the reader currently holds no reference into
// shared state. Lock-free, a single atomic store.
func (r *Reader) Quiesce() {
	r.local.Store(r.rc.epoch.Load())
}

// Epoch reports the reader's last quiesced epoch.
func (r *Reader) Epoch() uint64 {
	return r.local.Load()
}

// Close deregisters the reader, removing exactly its own record.
// Idempotent, and safe at any time, including while a Collect scan is
// in flight.
func (r *Reader) Close() {
	rc := r.rc
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for i, rd := range rc.readers {
		if rd == r {
			last := len(rc.readers) - 1
			rc.readers[i] = rc.readers[last]
			rc.readers[last] = nil
			rc.readers = rc.readers[:last]
			return
		}
	}
}
