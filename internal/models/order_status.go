package models

import "sort"

// OrderStatus is the closed set of states an order can be in.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusCompleted: true, OrderStatusCancelled: true},
	OrderStatusProcessing: {OrderStatusCompleted: true, OrderStatusCancelled: true},
	// completed -> completed keeps provider replays harmless
	OrderStatusCompleted: {OrderStatusCompleted: true, OrderStatusShipped: true},
	OrderStatusShipped:   {OrderStatusDelivered: true},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	_, ok := validNext[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Paid reports whether the order's payment has been confirmed.
func (s OrderStatus) Paid() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Transitions lists every allowed move as "from -> to", sorted. Same-state
// moves are left out.
func Transitions() []string {
	var out []string
	for from, next := range validNext {
		for to := range next {
			if from != to {
				out = append(out, string(from)+" -> "+string(to))
			}
		}
	}
	sort.Strings(out)
	return out
}
