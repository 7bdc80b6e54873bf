package payments

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Webhook event types handled by the store.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentCanceled  = "payment_intent.canceled"
)

// WebhookEvent is a decoded processor callback. Intent is set for
// payment_intent.* events.
type WebhookEvent struct {
	ID     string
	Type   string
	Intent *Intent
}

// WebhookVerifier decodes webhook payloads. With an empty secret signatures
// are not checked.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the endpoint signing secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Signed reports whether signatures are enforced.
func (v *WebhookVerifier) Signed() bool {
	return v.secret != ""
}

// Parse verifies (when configured) and decodes a webhook payload.
func (v *WebhookVerifier) Parse(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	var event stripe.Event
	if v.Signed() {
		var err error
		event, err = webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("invalid webhook signature: %w", err)
		}
	} else if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}
	switch out.Type {
	case EventPaymentSucceeded, EventPaymentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("invalid payment intent in webhook: %w", err)
		}
		out.Intent = fromStripe(&pi)
	}
	return out, nil
}
