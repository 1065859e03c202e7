package stats

import "log"

// Sink consumes engine samples.
type Sink interface {
	Publish(*Sample) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(*Sample) error

func (f SinkFunc) Publish(s *Sample) error { return f(s) }

// LogSink prints samples to the process log, the demo's default sink.
type LogSink struct{}

func (LogSink) Publish(s *Sample) error {
	log.Printf("[stats] run=%s seq=%d generation=%d pending=%d lag=%d readers=%d retired=%d reclaimed=%d",
		s.RunID, s.Seq, s.Generation, s.Pending, s.Lag, s.Readers, s.Retired, s.Reclaimed)
	return nil
}
