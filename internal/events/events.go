// Package events publishes order lifecycle notifications to a message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated   = "order.created"
	TopicOrderCompleted = "order.completed"
	TopicOrderCancelled = "order.cancelled"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCompleted = "OrderCompleted"
	EventOrderCancelled = "OrderCancelled"
)

var eventTypes = map[string]string{
	TopicOrderCreated:   EventOrderCreated,
	TopicOrderCompleted: EventOrderCompleted,
	TopicOrderCancelled: EventOrderCancelled,
}

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// OrderEvent is the payload of every order.* event.
type OrderEvent struct {
	OrderID         string          `json:"order_id"`
	UserID          string          `json:"user_id,omitempty"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Items           []OrderEventRow `json:"items,omitempty"`
}

// OrderEventRow is one line item inside an OrderEvent.
type OrderEventRow struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Decode unwraps an envelope produced by Emitter.
func Decode(body []byte) (Envelope, OrderEvent, error) {
	var env Envelope
	var evt OrderEvent
	if err := json.Unmarshal(body, &env); err != nil {
		return env, evt, err
	}
	if err := json.Unmarshal(env.Payload, &evt); err != nil {
		return env, evt, err
	}
	return env, evt, nil
}
