// Package slots holds the shared table the reclamation demo mutates:
// a fixed array of atomically swappable byte payloads. The writer
// swaps fresh values in and retires the superseded ones; readers load
// slots and quiesce between reads. Payloads are pooled, so a reclaimed
// value is reused rather than reallocated.
package slots
