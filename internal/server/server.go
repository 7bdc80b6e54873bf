// Package server assembles the Fiber application: middleware, sessions and
// the API routes.
package server

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/payments"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "storefront.sid"

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth     *services.AuthService
	Accounts *services.AccountService
	Products *services.ProductService
	Orders   *services.OrderService
	Webhooks *payments.WebhookVerifier
	// SessionStorage persists sessions; nil keeps them in memory.
	SessionStorage fiber.Storage
	// Quiet disables the request logger.
	Quiet bool
}

// NewSessionStore builds the session store for cfg.
func NewSessionStore(cfg *config.Config, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		Storage:        storage,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		CookieSecure:   cfg.Production(),
	})
}

// cookieKey derives the 32 byte encryptcookie key from the session secret.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// New creates the Fiber app with every route registered.
func New(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "storefront",
	})

	app.Use(recover.New())
	if !deps.Quiet {
		app.Use(logger.New())
	}
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey(cfg.SessionSecret),
	}))

	sessions := middleware.NewSessions(NewSessionStore(cfg, deps.SessionStorage))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group("/api", middleware.LoadUser(sessions, deps.Auth))
	handlers.NewAuthHandler(deps.Auth, sessions).RegisterRoutes(api)
	handlers.NewAccountHandler(deps.Accounts, deps.Orders).RegisterRoutes(api)
	handlers.NewProductHandler(deps.Products).RegisterRoutes(api)
	handlers.NewCheckoutHandler(deps.Orders, deps.Webhooks).RegisterRoutes(api)
	handlers.NewOrderHandler(deps.Orders).RegisterRoutes(api)

	return app
}
