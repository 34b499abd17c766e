// Package publisher mirrors activity log entries onto the event stream so
// other dataspace participants can follow the narrative.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"vms/internal/activitylog"
	"vms/pkg/platform/circuit"
)

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// StreamPublisher writes each entry as JSON, keyed by action so one action's
// entries stay ordered on a partition.
type StreamPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
}

// Option configures a StreamPublisher.
type Option func(*StreamPublisher)

// WithBreaker skips producing while the broker keeps failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *StreamPublisher) {
		p.breaker = b
	}
}

func NewStreamPublisher(producer Producer, topic string, opts ...Option) *StreamPublisher {
	p := &StreamPublisher{producer: producer, topic: topic}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish returns circuit.ErrOpen without contacting the broker while the
// breaker is open.
func (p *StreamPublisher) Publish(ctx context.Context, entry *activitylog.Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	if p.breaker != nil && !p.breaker.Allow() {
		return fmt.Errorf("publish %s: %w", entry.ID, circuit.ErrOpen)
	}
	err = p.producer.Produce(ctx, p.topic, []byte(entry.Action), value)
	if p.breaker != nil {
		if err != nil {
			p.breaker.RecordFailure()
		} else {
			p.breaker.RecordSuccess()
		}
	}
	return err
}
