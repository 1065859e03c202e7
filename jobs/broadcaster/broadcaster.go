// Package broadcaster drains the sample journal into Kafka with an
// acknowledged producer: each pending entry is marked SENT, published,
// then marked ACKED, and the acked prefix is truncated away. Entries
// that fail to send stay pending and go out on a later pass.
package broadcaster

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"github.com/suspend0/hullabaloo-darren/journal"
)

// producer is the slice of sarama.SyncProducer the broadcaster needs;
// tests stub it without a broker.
type producer interface {
	SendMessage(*sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

type Broadcaster struct {
	journal   *journal.Journal
	producer  producer
	topic     string
	runID     string
	interval  time.Duration
	published atomic.Uint64
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	j *journal.Journal,
	brokers []string,
	topic string,
	runID string,
	interval time.Duration,
) (*Broadcaster, error) {

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		journal:  j,
		producer: p,
		topic:    topic,
		runID:    runID,
		interval: interval,
	}, nil
}

// ------------------------------------------------
// PUBLISH LOOP
// ------------------------------------------------

// Run ticks until ctx is cancelled, draining the journal each pass.
func (b *Broadcaster) Run(ctx context.Context) error {
	log.Println("[broadcaster] started")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// One last pass so a clean shutdown leaves nothing behind.
			b.publishPending()
			return nil

		case <-ticker.C:
			b.publishPending()
		}
	}
}

func (b *Broadcaster) publishPending() {
	var highest uint64
	err := b.journal.ScanPending(b.runID, func(e *journal.Entry) error {
		// Mark SENT first; a crash between send and ack then resends
		// rather than losing the sample.
		if err := b.journal.MarkSent(e.RunID, e.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(e.RunID),
			Value: sarama.ByteEncoder(e.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			return nil // stays SENT, retried next pass
		}

		if err := b.journal.MarkAcked(e.RunID, e.Seq); err != nil {
			return err
		}
		b.published.Add(1)
		if e.Seq > highest {
			highest = e.Seq
		}
		return nil
	})
	if err != nil {
		log.Printf("[broadcaster] publish pass: %v", err)
		return
	}

	if highest > 0 {
		if err := b.journal.TruncateAckedUpTo(b.runID, highest); err != nil {
			log.Printf("[broadcaster] truncate: %v", err)
		}
	}
}

// Published reports how many samples reached the broker.
func (b *Broadcaster) Published() uint64 {
	return b.published.Load()
}

// ------------------------------------------------
// SHUTDOWN
// ------------------------------------------------

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
