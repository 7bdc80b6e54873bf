package repositories

import (
	"context"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create stores the user, and user.Address when set, atomically.
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdateProfile writes name, email and phone of the given user.
	UpdateProfile(ctx context.Context, user *models.User) error
}

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
}
