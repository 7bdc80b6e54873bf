package handlers

import (
	"errors"
	"log"

	"storefront/internal/middleware"
	"storefront/internal/payments"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler starts payments and receives the processor's webhooks.
type CheckoutHandler struct {
	orderService *services.OrderService
	verifier     *payments.WebhookVerifier
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(orderService *services.OrderService, verifier *payments.WebhookVerifier) *CheckoutHandler {
	return &CheckoutHandler{
		orderService: orderService,
		verifier:     verifier,
	}
}

// RegisterRoutes registers the checkout routes. Both are open to guests.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/create-payment-intent", h.HandleCreatePaymentIntent)
	router.Post("/stripe-webhook", h.HandleWebhook)
}

// HandleCreatePaymentIntent stores a pending order for the submitted cart
// and returns the client secret of its payment intent.
func (h *CheckoutHandler) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	res, err := h.orderService.BeginCheckout(c.UserContext(), in, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Could not create payment intent")
	}
	return c.JSON(res)
}

// HandleWebhook applies payment_intent events to their orders. Events for
// unknown, already paid or cancelled orders and unhandled types are
// acknowledged without side effects.
func (h *CheckoutHandler) HandleWebhook(c *fiber.Ctx) error {
	event, err := h.verifier.Parse(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("Rejected webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	switch {
	case event.Intent == nil:
		log.Printf("Unhandled webhook event type %s (%s)", event.Type, event.ID)
	case event.Type == payments.EventPaymentSucceeded:
		err = h.orderService.ConfirmPayment(c.UserContext(), event.Intent.OrderID(), event.Intent.ID)
		if errors.Is(err, services.ErrInvalidTransition) {
			// the processor redelivers anything but a 2xx
			log.Printf("Payment %s succeeded for an order that cannot be completed: %v", event.Intent.ID, err)
			err = nil
		}
	case event.Type == payments.EventPaymentCanceled:
		err = h.orderService.PaymentCanceled(c.UserContext(), event.Intent.OrderID())
	}
	if err != nil {
		return respondError(c, err, "Could not process webhook")
	}
	return c.JSON(fiber.Map{"received": true})
}
