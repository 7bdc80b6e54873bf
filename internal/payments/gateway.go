// Package payments talks to the external payment processor: it creates and
// inspects payment intents and decodes the processor's webhook events.
package payments

import (
	"context"
	"errors"
)

// Intent statuses the store cares about.
const (
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Metadata keys attached to every payment intent.
const (
	MetadataOrderID = "orderId"
	MetadataItems   = "items"
)

// ErrProvider wraps every failure reported by the processor.
var ErrProvider = errors.New("payment provider error")

// IntentRequest describes a charge attempt.
type IntentRequest struct {
	AmountMinor int64 // integer minor currency units
	Currency    string
	Metadata    map[string]string
}

// Intent is the processor's handle for an in-progress charge.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountMinor  int64
	Currency     string
	Metadata     map[string]string
}

// OrderID returns the order id carried in the intent metadata.
func (i *Intent) OrderID() string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	return i.Metadata[MetadataOrderID]
}

// Gateway is the client side of the payment processor.
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CancelIntent(ctx context.Context, id string) error
}
