package handlers

import (
	"log"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and sessions.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *middleware.Sessions
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		validate:    services.NewValidator(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Post("/logout", h.HandleLogout)
	router.Get("/user", middleware.AuthRequired(), h.HandleCurrentUser)
}

// HandleRegister creates the user and logs them in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Could not register user")
	}
	if err := h.sessions.Login(c, user.ID); err != nil {
		log.Printf("Error starting session for new user %s: %v", user.ID, err)
		return respondError(c, err, "Could not start session")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks the credentials and binds the user to a new session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondError(c, services.FromValidator("Invalid login data", err), "Could not log in")
	}

	user, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Printf("Failed login for user %s: %v", req.Username, err)
		return respondError(c, err, "Could not log in")
	}
	if err := h.sessions.Login(c, user.ID); err != nil {
		return respondError(c, err, "Could not start session")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c); err != nil {
		return respondError(c, err, "Could not log out")
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// HandleCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) HandleCurrentUser(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}
