package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatedAtLayout is the text layout of Order.CreatedAt. It sorts
// lexicographically in creation order.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// OrderItem represents a single line within an order. Price is the unit price
// captured at checkout time.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"orderId" gorm:"index;type:varchar(36);not null"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:text;not null"`
}

// Subtotal returns price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents one checkout attempt. UserID is nil for guest checkouts.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          *string         `json:"userId" gorm:"index;type:varchar(36)"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:text;not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentIntentID *string         `json:"paymentIntentId" gorm:"type:varchar(255);index"`
	CreatedAt       string          `json:"createdAt" gorm:"type:text;not null;index"`
	Items           []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// NewOrderTimestamp formats t the way orders store their creation time.
func NewOrderTimestamp(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}
