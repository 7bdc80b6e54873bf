package middleware

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	sessionUserKey = "user_id"
	localsUserKey  = "user"
)

// Sessions binds authenticated users to server-side sessions.
type Sessions struct {
	store *session.Store
}

// NewSessions wraps a session store.
func NewSessions(store *session.Store) *Sessions {
	return &Sessions{store: store}
}

// Login stores userID in a freshly regenerated session.
func (s *Sessions) Login(c *fiber.Ctx, userID string) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(sessionUserKey, userID)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Logout destroys the current session, if any.
func (s *Sessions) Logout(c *fiber.Ctx) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// UserID returns the user id stored in the session, or "" for anonymous requests.
func (s *Sessions) UserID(c *fiber.Ctx) (string, error) {
	sess, err := s.store.Get(c)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	id, _ := sess.Get(sessionUserKey).(string)
	return id, nil
}

// LoadUser resolves the session's user and stores it in the request locals.
// Requests without a valid session continue anonymously.
func LoadUser(sessions *Sessions, authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := sessions.UserID(c)
		if err != nil {
			log.Printf("Session lookup failed: %v", err)
			return c.Next()
		}
		if userID == "" {
			return c.Next()
		}

		user, err := authService.CurrentUser(c.UserContext(), userID)
		if errors.Is(err, services.ErrUnauthorized) {
			return c.Next()
		}
		if err != nil {
			log.Printf("Error loading user %s for session: %v", userID, err)
			return c.Next()
		}
		c.Locals(localsUserKey, user)
		return c.Next()
	}
}

// AuthRequired rejects requests that LoadUser did not authenticate.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user of the request, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUserKey).(*models.User)
	return user
}

// CurrentUserID returns the authenticated user's id, or "".
func CurrentUserID(c *fiber.Ctx) string {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}
