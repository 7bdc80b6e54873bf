package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// Stripe rejects metadata values longer than this.
const maxMetadataValue = 500

// EventEmitter publishes order lifecycle events.
type EventEmitter interface {
	Emit(ctx context.Context, topic string, evt events.OrderEvent) error
}

// LineItem is one cart line submitted at checkout. Price is the unit price
// the client saw and is stored as the order's price snapshot.
type LineItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// CheckoutInput is the cart mirrored to the server at checkout.
type CheckoutInput struct {
	Amount decimal.Decimal `json:"amount"`
	Items  []LineItem      `json:"items"`
}

// CheckoutResult is what the client needs to complete the payment.
type CheckoutResult struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
}

// OrderService creates orders and reconciles them with the payment processor.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	gateway     payments.Gateway
	emitter     EventEmitter // optional
	currency    string
}

// NewOrderService creates a new OrderService. emitter may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, gateway payments.Gateway, emitter EventEmitter, currency string) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		gateway:     gateway,
		emitter:     emitter,
		currency:    currency,
	}
}

func (s *OrderService) validateCheckout(ctx context.Context, in CheckoutInput) error {
	ve := &ValidationError{Message: "Invalid request data", Fields: map[string]string{}}
	if !in.Amount.IsPositive() || payments.MinorUnits(in.Amount) < 1 {
		ve.Fields["amount"] = "must be at least 0.01"
	}
	if len(in.Items) == 0 {
		ve.Fields["items"] = "at least one item is required"
	}
	for i, item := range in.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.Quantity < 1 {
			ve.Fields[prefix+"quantity"] = "must be at least 1"
		}
		if item.Price.IsNegative() {
			ve.Fields[prefix+"price"] = "must not be negative"
		}
		if item.ProductID == "" {
			ve.Fields[prefix+"id"] = "is required"
			continue
		}
		if _, err := s.productRepo.GetByID(ctx, item.ProductID); errors.Is(err, repositories.ErrNotFound) {
			ve.Fields[prefix+"id"] = "unknown product"
		} else if err != nil {
			return err
		}
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// BeginCheckout stores a pending order with its items, opens a payment intent
// for it and returns the intent's client secret. userID is empty for guests.
//
// The order and its items are written in one transaction. When the processor
// call or the follow-up write fails, the order is cancelled (and the intent
// too, if it exists) so no half-initialised pending order is left behind.
func (s *OrderService) BeginCheckout(ctx context.Context, in CheckoutInput, userID string) (*CheckoutResult, error) {
	if err := s.validateCheckout(ctx, in); err != nil {
		return nil, err
	}

	order := &models.Order{
		Amount: in.Amount,
		Status: models.OrderStatusPending,
		Items:  make([]models.OrderItem, 0, len(in.Items)),
	}
	if userID != "" {
		order.UserID = &userID
	}
	for _, item := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create pending order: %w", err)
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.IntentRequest{
		AmountMinor: payments.MinorUnits(order.Amount),
		Currency:    s.currency,
		Metadata:    intentMetadata(order),
	})
	if err != nil {
		s.abandon(ctx, order.ID)
		return nil, providerError(fmt.Errorf("order %s: %w", order.ID, err))
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusPending, intent.ID); err != nil {
		if cancelErr := s.gateway.CancelIntent(ctx, intent.ID); cancelErr != nil {
			log.Printf("Warning: failed to cancel payment intent %s of order %s: %v", intent.ID, order.ID, cancelErr)
		}
		s.abandon(ctx, order.ID)
		return nil, fmt.Errorf("failed to attach payment intent to order %s: %w", order.ID, err)
	}
	order.PaymentIntentID = &intent.ID

	log.Printf("Created pending order %s (%s, %d items) with payment intent %s", order.ID, order.Amount, len(order.Items), intent.ID)
	s.publish(ctx, events.TopicOrderCreated, order)

	return &CheckoutResult{ClientSecret: intent.ClientSecret, OrderID: order.ID}, nil
}

func intentMetadata(order *models.Order) map[string]string {
	md := map[string]string{payments.MetadataOrderID: order.ID}
	type ref struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	refs := make([]ref, 0, len(order.Items))
	for _, item := range order.Items {
		refs = append(refs, ref{ID: item.ProductID, Quantity: item.Quantity})
	}
	if b, err := json.Marshal(refs); err == nil && len(b) <= maxMetadataValue {
		md[payments.MetadataItems] = string(b)
	} else {
		log.Printf("Order %s: item list does not fit in payment metadata, sending order id only", order.ID)
	}
	return md
}

// abandon cancels an order whose checkout could not be completed.
func (s *OrderService) abandon(ctx context.Context, orderID string) {
	if err := s.orderRepo.UpdateStatus(ctx, orderID, models.OrderStatusCancelled, ""); err != nil {
		log.Printf("Error: failed to cancel abandoned order %s: %v", orderID, err)
		return
	}
	log.Printf("Cancelled abandoned order %s", orderID)
}

func providerError(err error) error {
	if errors.Is(err, ErrPaymentProvider) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
}

// ConfirmPayment marks an order completed after the processor reported a
// successful payment. Unknown orders are ignored, and orders that are already
// paid (completed, shipped or delivered) are left untouched, so processor
// redeliveries have no effect.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID, paymentIntentID string) error {
	if orderID == "" {
		log.Printf("Ignoring payment confirmation without order id (intent %s)", paymentIntentID)
		return nil
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Ignoring payment confirmation for unknown order %s (intent %s)", orderID, paymentIntentID)
		return nil
	}
	if err != nil {
		return err
	}
	return s.complete(ctx, order, paymentIntentID)
}

func (s *OrderService) complete(ctx context.Context, order *models.Order, paymentIntentID string) error {
	if order.Status.Paid() {
		log.Printf("Order %s is already %s, ignoring payment confirmation (intent %s)", order.ID, order.Status, paymentIntentID)
		return nil
	}
	if !models.CanTransition(order.Status, models.OrderStatusCompleted) {
		return fmt.Errorf("order %s is %s: %w", order.ID, order.Status, ErrInvalidTransition)
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted, paymentIntentID); err != nil {
		return fmt.Errorf("failed to complete order %s: %w", order.ID, err)
	}

	log.Printf("Order %s completed (intent %s)", order.ID, paymentIntentID)
	order.Status = models.OrderStatusCompleted
	if paymentIntentID != "" {
		order.PaymentIntentID = &paymentIntentID
	}
	s.publish(ctx, events.TopicOrderCompleted, order)
	return nil
}

// ConfirmClientPayment is the redirect path of ConfirmPayment: the client
// reports the intent id, and the intent is checked with the processor before
// the order is completed. The intent must belong to the order, have
// succeeded and cover the order amount.
func (s *OrderService) ConfirmClientPayment(ctx context.Context, orderID, paymentIntentID string) (*models.Order, error) {
	if paymentIntentID == "" {
		return nil, NewValidationError("Invalid request data", "paymentIntentId", "is required")
	}
	intent, err := s.gateway.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, providerError(err)
	}
	if intent.OrderID() != orderID {
		return nil, NewValidationError("Payment does not belong to this order", "paymentIntentId", "order mismatch")
	}
	if intent.Status != payments.StatusSucceeded {
		return nil, NewValidationError("Payment not completed", "paymentIntentId", "status is "+intent.Status)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if paid := payments.FromMinorUnits(intent.AmountMinor); !paid.Equal(order.Amount) {
		return nil, NewValidationError("Payment amount does not match the order", "paymentIntentId",
			fmt.Sprintf("paid %s, order total %s", paid.StringFixed(2), order.Amount.StringFixed(2)))
	}
	if err := s.complete(ctx, order, intent.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder cancels a pending order on behalf of its owner, voiding the
// payment intent first.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, fmt.Errorf("order with ID %s not found: %w", orderID, ErrNotFound)
	}
	if order.Status == models.OrderStatusCancelled {
		return order, nil
	}
	if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, ErrInvalidTransition)
	}
	if order.PaymentIntentID != nil {
		if err := s.gateway.CancelIntent(ctx, *order.PaymentIntentID); err != nil {
			return nil, providerError(err)
		}
	}
	if err := s.markCancelled(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// PaymentCanceled cancels the order of an intent the processor voided.
// Unknown orders and orders past pending are left alone.
func (s *OrderService) PaymentCanceled(ctx context.Context, orderID string) error {
	if orderID == "" {
		return nil
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Ignoring payment cancellation for unknown order %s", orderID)
		return nil
	}
	if err != nil {
		return err
	}
	if !models.CanTransition(order.Status, models.OrderStatusCancelled) {
		log.Printf("Ignoring payment cancellation for order %s in status %s", orderID, order.Status)
		return nil
	}
	return s.markCancelled(ctx, order)
}

func (s *OrderService) markCancelled(ctx context.Context, order *models.Order) error {
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, ""); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", order.ID, err)
	}
	order.Status = models.OrderStatusCancelled
	log.Printf("Order %s cancelled", order.ID)
	s.publish(ctx, events.TopicOrderCancelled, order)
	return nil
}

// UpdateOrderStatus moves an order along the fulfilment states
// (processing, shipped, delivered).
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, NewValidationError("Invalid order status", "status", string(status))
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("order %s cannot go from %s to %s: %w", orderID, order.Status, status, ErrInvalidTransition)
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, status, ""); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", orderID, err)
	}
	order.Status = status
	return order, nil
}

// GetOrder returns the order with its items, or ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

// ListUserOrders returns the order history of a user, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *OrderService) publish(ctx context.Context, topic string, order *models.Order) {
	if s.emitter == nil {
		return
	}
	evt := events.OrderEvent{
		OrderID: order.ID,
		Status:  string(order.Status),
		Amount:  order.Amount,
	}
	if order.UserID != nil {
		evt.UserID = *order.UserID
	}
	if order.PaymentIntentID != nil {
		evt.PaymentIntentID = *order.PaymentIntentID
	}
	for _, item := range order.Items {
		evt.Items = append(evt.Items, events.OrderEventRow{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price})
	}
	if err := s.emitter.Emit(ctx, topic, evt); err != nil {
		log.Printf("Warning: %v", err)
	}
}
