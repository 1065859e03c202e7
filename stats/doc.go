// Package stats carries the engine's observability record: one Sample
// per sampling tick with the generation, pending-garbage and lag
// figures of the reclamation loop. Samples cross from the engine
// thread to the publishing side over a lock-free ring, are encoded in
// protobuf wire format for the journal and Kafka, and fan out to
// pluggable sinks.
package stats
