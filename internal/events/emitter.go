package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Transport delivers an encoded event to a broker. Key is used for
// partitioning where the broker supports it.
type Transport interface {
	Publish(ctx context.Context, topic, key string, body []byte) error
}

// Emitter wraps order events in an Envelope and hands them to a Transport.
type Emitter struct {
	transport Transport
	producer  string
	now       func() time.Time
}

// NewEmitter creates an emitter that stamps envelopes with producer.
func NewEmitter(transport Transport, producer string) *Emitter {
	return &Emitter{transport: transport, producer: producer, now: time.Now}
}

// Emit publishes evt on topic.
func (e *Emitter) Emit(ctx context.Context, topic string, evt OrderEvent) error {
	eventType, ok := eventTypes[topic]
	if !ok {
		return fmt.Errorf("unknown event topic %q", topic)
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	body, err := json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    e.now().UTC(),
		Producer:      e.producer,
		CorrelationID: evt.OrderID,
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", topic, err)
	}
	if err := e.transport.Publish(ctx, topic, evt.OrderID, body); err != nil {
		return fmt.Errorf("failed to publish %s for order %s: %w", topic, evt.OrderID, err)
	}
	return nil
}
