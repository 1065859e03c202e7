// Package statsrpc exposes the engine's sample stream over gRPC.
//
// The service speaks the same protobuf wire form the journal and the
// Kafka paths use, moved as raw bytes through a passthrough codec, so
// no generated stubs are involved. Server implements stats.Sink and
// plugs into the sampler fan-out like any other sink: Get answers with
// the most recent sample, Watch streams each one as it is published.
package statsrpc
