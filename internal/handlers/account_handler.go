package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves the profile, address and order history of the
// logged-in user.
type AccountHandler struct {
	accountService *services.AccountService
	orderService   *services.OrderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService, orderService *services.OrderService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		orderService:   orderService,
	}
}

// RegisterRoutes registers the account routes. All of them need a session.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	user := router.Group("/user", middleware.AuthRequired())
	user.Put("/", h.HandleUpdateProfile)
	user.Get("/address", h.HandleGetAddress)
	user.Post("/address", h.HandleSaveAddress)
	user.Get("/orders", h.HandleListOrders)
}

// HandleUpdateProfile updates name, email and phone.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var in services.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	user, err := h.accountService.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(user)
}

// HandleGetAddress returns the user's address.
func (h *AccountHandler) HandleGetAddress(c *fiber.Ctx) error {
	address, err := h.accountService.GetAddress(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Address")
	}
	return c.JSON(address)
}

// HandleSaveAddress creates or replaces the user's address.
func (h *AccountHandler) HandleSaveAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	address, err := h.accountService.SaveAddress(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return respondError(c, err, "Could not save address")
	}
	return c.JSON(address)
}

// HandleListOrders returns the user's orders, newest first.
func (h *AccountHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.ListUserOrders(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}
