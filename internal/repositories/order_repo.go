package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// CreateWithItems stores the order and all of order.Items in one transaction.
	CreateWithItems(ctx context.Context, order *models.Order) error
	// GetByID returns the order with its items.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// ListByUser returns the user's orders, newest first, with their items.
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// UpdateStatus sets the status, and the payment intent id when it is not empty.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, paymentIntentID string) error
}
