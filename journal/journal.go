// Package journal persists engine samples in a pebble outbox so a run
// survives publisher downtime: entries land in state NEW, move through
// SENT to ACKED as the broadcaster gets them out, and acked prefixes
// are truncated away.
package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/suspend0/hullabaloo-darren/stats"
)

// ErrCorruptEntry marks a value or key this package cannot decode.
var ErrCorruptEntry = errors.New("journal: corrupt entry")

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Entry --------------------

// Entry is one journaled sample with its outbox bookkeeping. Payload
// holds the sample in protobuf wire form.
type Entry struct {
	RunID       string
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

// binary value layout: [state:1][retries:4][lastAttempt:8][payload...]
func encodeValue(e *Entry) []byte {
	buf := make([]byte, 13+len(e.Payload))
	buf[0] = byte(e.State)
	binary.BigEndian.PutUint32(buf[1:5], e.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(e.LastAttempt))
	copy(buf[13:], e.Payload)
	return buf
}

// decodeValue copies the payload: pebble value buffers are only valid
// until the closer or the next iterator step.
func decodeValue(b []byte, e *Entry) error {
	if len(b) < 13 {
		return ErrCorruptEntry
	}
	e.State = State(b[0])
	e.Retries = binary.BigEndian.Uint32(b[1:5])
	e.LastAttempt = int64(binary.BigEndian.Uint64(b[5:13]))
	e.Payload = append([]byte(nil), b[13:]...)
	return nil
}

// -------------------- Journal --------------------

// Journal is the durable sample outbox. Append runs on the sampler
// side; Scan/Mark/Truncate on the broadcaster side. pebble serializes
// the concurrent access.
type Journal struct {
	db *pebble.DB
}

func Open(dir string) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", dir, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// -------------------- API --------------------

// Append journals s in state NEW, keyed by its run id and sequence.
func (j *Journal) Append(s *stats.Sample) error {
	e := Entry{State: StateNew, Payload: stats.Marshal(s)}
	return j.db.Set(key(s.RunID, s.Seq), encodeValue(&e), pebble.Sync)
}

// Get returns the entry for one sample.
func (j *Journal) Get(runID string, seq uint64) (Entry, error) {
	val, closer, err := j.db.Get(key(runID, seq))
	if err != nil {
		return Entry{}, err
	}
	defer closer.Close()

	e := Entry{RunID: runID, Seq: seq}
	if err := decodeValue(val, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// MarkSent records a publish attempt: state SENT, one more retry,
// fresh attempt timestamp. Idempotent from the broadcaster's view.
func (j *Journal) MarkSent(runID string, seq uint64) error {
	return j.mark(runID, seq, StateSent)
}

// MarkAcked records broker acknowledgement.
func (j *Journal) MarkAcked(runID string, seq uint64) error {
	return j.mark(runID, seq, StateAcked)
}

func (j *Journal) mark(runID string, seq uint64, state State) error {
	k := key(runID, seq)
	val, closer, err := j.db.Get(k)
	if err != nil {
		return err
	}
	var e Entry
	decErr := decodeValue(val, &e)
	closer.Close()
	if decErr != nil {
		return decErr
	}

	e.State = state
	if state == StateSent {
		e.Retries++
	}
	e.LastAttempt = time.Now().UnixNano()
	return j.db.Set(k, encodeValue(&e), pebble.Sync)
}

// -------------------- Scan --------------------

// ScanPending walks a run's entries that are not yet acked, oldest
// first. Returning an error from fn stops the scan.
func (j *Journal) ScanPending(runID string, fn func(e *Entry) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("sample/" + runID + "/"),
		UpperBound: []byte("sample/" + runID + "/~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var e Entry
		if err := decodeValue(iter.Value(), &e); err != nil {
			return err
		}
		if e.State == StateAcked {
			continue
		}

		id, seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		e.RunID, e.Seq = id, seq

		if err := fn(&e); err != nil {
			return err
		}
	}
	return iter.Error()
}

// TruncateAckedUpTo deletes a run's acked entries with seq <= through.
func (j *Journal) TruncateAckedUpTo(runID string, through uint64) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte("sample/" + runID + "/"),
		UpperBound: append(key(runID, through), '~'),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	batch := j.db.NewBatch()
	defer batch.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if len(iter.Value()) < 1 || State(iter.Value()[0]) != StateAcked {
			continue
		}
		if err := batch.Delete(iter.Key(), nil); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return j.db.Apply(batch, pebble.Sync)
}

// -------------------- Keys --------------------

// Keys order a run's samples lexicographically: sample/<run>/<seq>,
// sequence zero-padded so byte order matches numeric order.
func key(runID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("sample/%s/%020d", runID, seq))
}

func parseKey(k []byte) (string, uint64, error) {
	s, ok := strings.CutPrefix(string(k), "sample/")
	if !ok {
		return "", 0, ErrCorruptEntry
	}
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return "", 0, ErrCorruptEntry
	}
	seq, err := strconv.ParseUint(s[i+1:], 10, 64)
	if err != nil {
		return "", 0, ErrCorruptEntry
	}
	return s[:i], seq, nil
}
