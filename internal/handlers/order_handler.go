package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for single orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/order")
	orderRoutes.Get("/:orderId", h.HandleGetOrder)
	orderRoutes.Post("/:orderId/confirm", h.HandleConfirmOrder)
	orderRoutes.Post("/:orderId/cancel", middleware.AuthRequired(), h.HandleCancelOrder)
}

// HandleGetOrder returns an order with its items. Guest checkouts need it
// too, so it is not restricted to the owner.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("orderId"))
	if err != nil {
		return respondError(c, err, "Order")
	}
	return c.JSON(order)
}

// ConfirmRequest is the body sent after the client is redirected back from
// the payment page.
type ConfirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// HandleConfirmOrder completes the order once the processor confirms the
// payment intent.
func (h *OrderHandler) HandleConfirmOrder(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	order, err := h.service.ConfirmClientPayment(c.UserContext(), c.Params("orderId"), req.PaymentIntentID)
	if err != nil {
		return respondError(c, err, "Could not confirm order")
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels a pending order of the logged-in user.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), c.Params("orderId"), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Could not cancel order")
	}
	return c.JSON(order)
}
