// Package kafka holds the live tap: a best-effort async producer that
// streams samples the moment they are gathered. Delivery is not
// guaranteed on this path; the journaled broadcaster owns that.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/suspend0/hullabaloo-darren/stats"
)

type Tap struct {
	writer  *kafka.Writer
	dropped atomic.Uint64
}

var _ stats.Sink = (*Tap)(nil)

func NewTap(brokers []string, topic string) *Tap {
	t := &Tap{}
	t.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				t.dropped.Add(uint64(len(msgs)))
			}
		},
	}
	return t
}

// Publish enqueues one sample for async delivery.
func (t *Tap) Publish(s *stats.Sample) error {
	return t.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(s.RunID),
		Value: stats.Marshal(s),
	})
}

// Dropped reports how many samples failed delivery.
func (t *Tap) Dropped() uint64 {
	return t.dropped.Load()
}

// Close flushes buffered messages and shuts the writer down.
func (t *Tap) Close() error {
	return t.writer.Close()
}
