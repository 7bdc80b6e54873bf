// Package cart is the shopper-side cart: a reducer over the cart lines, its
// persisted snapshot and the checkout request built from it.
package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the lines in insertion order. Total is recomputed by every
// mutation.
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (c *Cart) index(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	c.Total = total
}

// Add appends item, or adds its quantity to the line with the same id.
// Items with a quantity below one are ignored.
func (c *Cart) Add(item Item) {
	if item.Quantity <= 0 {
		return
	}
	if i := c.index(item.ID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	c.recompute()
}

// Remove drops the line with the given id.
func (c *Cart) Remove(id string) {
	if i := c.index(id); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	c.recompute()
}

// SetQuantity replaces the quantity of a line. A quantity of zero or less
// removes it.
func (c *Cart) SetQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	if i := c.index(id); i >= 0 {
		c.Items[i].Quantity = quantity
	}
	c.recompute()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
	c.Total = decimal.Zero
}

// Count returns the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Line is one entry of a CheckoutRequest.
type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CheckoutRequest is the body of POST /api/create-payment-intent.
type CheckoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Items  []Line          `json:"items"`
}

// CheckoutRequest mirrors the cart for checkout.
func (c *Cart) CheckoutRequest() CheckoutRequest {
	req := CheckoutRequest{Amount: c.Total, Items: make([]Line, 0, len(c.Items))}
	for _, item := range c.Items {
		req.Items = append(req.Items, Line{ID: item.ID, Name: item.Name, Price: item.Price, Quantity: item.Quantity})
	}
	return req
}
