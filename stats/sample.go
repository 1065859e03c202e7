package stats

// Sample is one observation of the reclamation engine, taken on the
// writer thread after a collect.
type Sample struct {
	RunID      string
	Seq        uint64
	UnixNanos  int64
	Generation uint64
	Pending    uint64
	Lag        uint64
	Readers    uint64
	Retired    uint64
	Reclaimed  uint64
}
