package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	mugID    = "7b0c5a4e-2f64-4c8a-9d43-1c7f4c2a9e10"
	posterID = "0f5a3c1d-6b8e-4a2f-9c7d-3e1b5a9f8c42"
)

type orderFixture struct {
	orders   *MockOrderRepository
	products *MockProductRepository
	gateway  *MockGateway
	emitter  *MockEmitter
	service  *services.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:   new(MockOrderRepository),
		products: new(MockProductRepository),
		gateway:  new(MockGateway),
		emitter:  new(MockEmitter),
	}
	f.service = services.NewOrderService(f.orders, f.products, f.gateway, f.emitter, "usd")
	f.products.On("GetByID", mugID).Return(&models.Product{ID: mugID}, nil).Maybe()
	f.products.On("GetByID", posterID).Return(&models.Product{ID: posterID}, nil).Maybe()
	return f
}

func twoItemCart() services.CheckoutInput {
	return services.CheckoutInput{
		Amount: decimal.RequireFromString("49.98"),
		Items: []services.LineItem{
			{ProductID: mugID, Name: "Mug", Price: decimal.RequireFromString("19.99"), Quantity: 2},
			{ProductID: posterID, Name: "Poster", Price: decimal.RequireFromString("10.00"), Quantity: 1},
		},
	}
}

func assignOrderID(id string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = id
	}
}

func TestOrderService_BeginCheckout(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	var stored *models.Order
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			stored = args.Get(0).(*models.Order)
			stored.ID = "order-1"
		}).Return(nil).Once()
	f.gateway.On("CreateIntent", mock.MatchedBy(func(req payments.IntentRequest) bool {
		return req.AmountMinor == 4998 && req.Currency == "usd" && req.Metadata[payments.MetadataOrderID] == "order-1"
	})).Return(&payments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusPending, "pi_1").Return(nil).Once()
	f.emitter.On("Emit", events.TopicOrderCreated, mock.MatchedBy(func(evt events.OrderEvent) bool {
		return evt.OrderID == "order-1" && evt.UserID == "user-1" && evt.PaymentIntentID == "pi_1" && len(evt.Items) == 2
	})).Return(nil).Once()

	res, err := f.service.BeginCheckout(ctx, twoItemCart(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)

	require.NotNil(t, stored)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, "user-1", *stored.UserID)
	require.Len(t, stored.Items, 2)
	sum := decimal.Zero
	for _, item := range stored.Items {
		sum = sum.Add(item.Subtotal())
	}
	assert.True(t, sum.Equal(stored.Amount), "items sum to %s, order amount %s", sum, stored.Amount)

	f.orders.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
	f.emitter.AssertExpectations(t)
}

func TestOrderService_BeginCheckoutMetadata(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("CreateWithItems", mock.Anything).Run(assignOrderID("order-1")).Return(nil)
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusPending, "pi_1").Return(nil)
	f.emitter.On("Emit", mock.Anything, mock.Anything).Return(nil)

	var md map[string]string
	f.gateway.On("CreateIntent", mock.Anything).Run(func(args mock.Arguments) {
		md = args.Get(0).(payments.IntentRequest).Metadata
	}).Return(&payments.Intent{ID: "pi_1"}, nil)

	_, err := f.service.BeginCheckout(context.Background(), twoItemCart(), "")
	require.NoError(t, err)

	var refs []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal([]byte(md[payments.MetadataItems]), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, mugID, refs[0].ID)
	assert.Equal(t, 2, refs[0].Quantity)
}

func TestOrderService_BeginCheckoutGuest(t *testing.T) {
	f := newOrderFixture()
	var stored *models.Order
	f.orders.On("CreateWithItems", mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(0).(*models.Order)
		stored.ID = "order-1"
	}).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything).Return(&payments.Intent{ID: "pi_1"}, nil)
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusPending, "pi_1").Return(nil)
	f.emitter.On("Emit", events.TopicOrderCreated, mock.Anything).Return(errors.New("broker down"))

	// A failing broker does not fail the checkout.
	_, err := f.service.BeginCheckout(context.Background(), twoItemCart(), "")
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
}

func TestOrderService_BeginCheckoutValidation(t *testing.T) {
	f := newOrderFixture()
	unknown := "11111111-1111-1111-1111-111111111111"
	f.products.On("GetByID", unknown).Return(nil, repositories.ErrNotFound)

	tests := []struct {
		name  string
		in    services.CheckoutInput
		field string
	}{
		{"empty cart", services.CheckoutInput{Amount: decimal.RequireFromString("1")}, "items"},
		{"zero amount", func() services.CheckoutInput { in := twoItemCart(); in.Amount = decimal.Zero; return in }(), "amount"},
		{"sub-cent amount", func() services.CheckoutInput {
			in := twoItemCart()
			in.Amount = decimal.RequireFromString("0.004")
			return in
		}(), "amount"},
		{"zero quantity", func() services.CheckoutInput { in := twoItemCart(); in.Items[1].Quantity = 0; return in }(), "items[1].quantity"},
		{"negative price", func() services.CheckoutInput {
			in := twoItemCart()
			in.Items[0].Price = decimal.RequireFromString("-1")
			return in
		}(), "items[0].price"},
		{"unknown product", func() services.CheckoutInput { in := twoItemCart(); in.Items[0].ProductID = unknown; return in }(), "items[0].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.BeginCheckout(context.Background(), tt.in, "")
			var ve *services.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
	f.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything)
	f.gateway.AssertNotCalled(t, "CreateIntent", mock.Anything)
}

func TestOrderService_BeginCheckoutProviderFailure(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("CreateWithItems", mock.Anything).Run(assignOrderID("order-1")).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything).Return(nil, errors.New("card network unreachable")).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusCancelled, "").Return(nil).Once()

	_, err := f.service.BeginCheckout(context.Background(), twoItemCart(), "user-1")
	assert.ErrorIs(t, err, services.ErrPaymentProvider)
	f.orders.AssertExpectations(t)
	f.emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestOrderService_BeginCheckoutAttachFailure(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("CreateWithItems", mock.Anything).Run(assignOrderID("order-1")).Return(nil)
	f.gateway.On("CreateIntent", mock.Anything).Return(&payments.Intent{ID: "pi_1"}, nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusPending, "pi_1").Return(errors.New("db gone")).Once()
	f.gateway.On("CancelIntent", "pi_1").Return(nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusCancelled, "").Return(nil).Once()

	_, err := f.service.BeginCheckout(context.Background(), twoItemCart(), "user-1")
	assert.Error(t, err)
	f.orders.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestOrderService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	pending := &models.Order{ID: "order-1", Status: models.OrderStatusPending, Amount: decimal.RequireFromString("49.98")}
	f.orders.On("GetByID", "order-1").Return(pending, nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusCompleted, "pi_1").Return(nil).Once()
	f.emitter.On("Emit", events.TopicOrderCompleted, mock.Anything).Return(nil).Once()

	require.NoError(t, f.service.ConfirmPayment(ctx, "order-1", "pi_1"))

	// Delivered again: nothing is written or published.
	completed := &models.Order{ID: "order-1", Status: models.OrderStatusCompleted}
	f.orders.On("GetByID", "order-1").Return(completed, nil).Once()
	require.NoError(t, f.service.ConfirmPayment(ctx, "order-1", "pi_1"))

	f.orders.AssertExpectations(t)
	f.orders.AssertNumberOfCalls(t, "UpdateStatus", 1)
	f.emitter.AssertNumberOfCalls(t, "Emit", 1)
}

func TestOrderService_ConfirmPaymentAfterFulfilment(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByID", "shipped").Return(&models.Order{ID: "shipped", Status: models.OrderStatusShipped}, nil)
	f.orders.On("GetByID", "delivered").Return(&models.Order{ID: "delivered", Status: models.OrderStatusDelivered}, nil)

	assert.NoError(t, f.service.ConfirmPayment(ctx, "shipped", "pi_1"))
	assert.NoError(t, f.service.ConfirmPayment(ctx, "delivered", "pi_2"))
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmPaymentUnknownOrder(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", "missing").Return(nil, repositories.ErrNotFound)

	assert.NoError(t, f.service.ConfirmPayment(context.Background(), "missing", "pi_1"))
	assert.NoError(t, f.service.ConfirmPayment(context.Background(), "", "pi_1"))
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmPaymentCancelledOrder(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", "order-1").Return(&models.Order{ID: "order-1", Status: models.OrderStatusCancelled}, nil)

	err := f.service.ConfirmPayment(context.Background(), "order-1", "pi_1")
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOrderService_ConfirmClientPayment(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	intent := func(id, status, orderID string, minor int64) *payments.Intent {
		return &payments.Intent{ID: id, Status: status, AmountMinor: minor, Metadata: map[string]string{payments.MetadataOrderID: orderID}}
	}
	f.gateway.On("GetIntent", "pi_ok").Return(intent("pi_ok", payments.StatusSucceeded, "order-1", 4998), nil)
	f.gateway.On("GetIntent", "pi_other").Return(intent("pi_other", payments.StatusSucceeded, "order-2", 4998), nil)
	f.gateway.On("GetIntent", "pi_open").Return(intent("pi_open", "requires_payment_method", "order-1", 4998), nil)
	f.gateway.On("GetIntent", "pi_short").Return(intent("pi_short", payments.StatusSucceeded, "order-3", 100), nil)

	amount := decimal.RequireFromString("49.98")
	f.orders.On("GetByID", "order-1").Return(&models.Order{ID: "order-1", Status: models.OrderStatusPending, Amount: amount}, nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusCompleted, "pi_ok").Return(nil).Once()
	f.emitter.On("Emit", events.TopicOrderCompleted, mock.Anything).Return(nil).Once()
	f.orders.On("GetByID", "order-3").Return(&models.Order{ID: "order-3", Status: models.OrderStatusPending, Amount: amount}, nil).Once()

	order, err := f.service.ConfirmClientPayment(ctx, "order-1", "pi_ok")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	require.NotNil(t, order.PaymentIntentID)
	assert.Equal(t, "pi_ok", *order.PaymentIntentID)

	var ve *services.ValidationError
	_, err = f.service.ConfirmClientPayment(ctx, "order-1", "pi_other")
	assert.True(t, errors.As(err, &ve))
	_, err = f.service.ConfirmClientPayment(ctx, "order-1", "pi_open")
	assert.True(t, errors.As(err, &ve))
	_, err = f.service.ConfirmClientPayment(ctx, "order-1", "")
	assert.True(t, errors.As(err, &ve))
	_, err = f.service.ConfirmClientPayment(ctx, "order-3", "pi_short")
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields["paymentIntentId"], "paid 1.00")
	f.orders.AssertExpectations(t)
	f.orders.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	order := &models.Order{ID: "order-1", UserID: strPtr("user-1"), Status: models.OrderStatusPending, PaymentIntentID: strPtr("pi_1")}
	f.orders.On("GetByID", "order-1").Return(order, nil)
	f.gateway.On("CancelIntent", "pi_1").Return(nil).Once()
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusCancelled, "").Return(nil).Once()
	f.emitter.On("Emit", events.TopicOrderCancelled, mock.Anything).Return(nil).Once()

	_, err := f.service.CancelOrder(ctx, "order-1", "user-2")
	assert.ErrorIs(t, err, services.ErrNotFound)

	cancelled, err := f.service.CancelOrder(ctx, "order-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// Cancelling again is a no-op.
	_, err = f.service.CancelOrder(ctx, "order-1", "user-1")
	require.NoError(t, err)

	f.gateway.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestOrderService_CancelOrderProviderFailure(t *testing.T) {
	f := newOrderFixture()
	order := &models.Order{ID: "order-1", UserID: strPtr("user-1"), Status: models.OrderStatusPending, PaymentIntentID: strPtr("pi_1")}
	f.orders.On("GetByID", "order-1").Return(order, nil)
	f.gateway.On("CancelIntent", "pi_1").Return(errors.New("timeout"))

	_, err := f.service.CancelOrder(context.Background(), "order-1", "user-1")
	assert.ErrorIs(t, err, services.ErrPaymentProvider)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PaymentCanceled(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByID", "missing").Return(nil, repositories.ErrNotFound)
	f.orders.On("GetByID", "done").Return(&models.Order{ID: "done", Status: models.OrderStatusCompleted}, nil)
	f.orders.On("GetByID", "open").Return(&models.Order{ID: "open", Status: models.OrderStatusPending}, nil)
	f.orders.On("UpdateStatus", "open", models.OrderStatusCancelled, "").Return(nil).Once()
	f.emitter.On("Emit", events.TopicOrderCancelled, mock.Anything).Return(nil).Once()

	assert.NoError(t, f.service.PaymentCanceled(ctx, "missing"))
	assert.NoError(t, f.service.PaymentCanceled(ctx, "done"))
	assert.NoError(t, f.service.PaymentCanceled(ctx, "open"))
	f.orders.AssertExpectations(t)
	f.gateway.AssertNotCalled(t, "CancelIntent", mock.Anything)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.orders.On("GetByID", "order-1").Return(&models.Order{ID: "order-1", Status: models.OrderStatusCompleted}, nil)
	f.orders.On("UpdateStatus", "order-1", models.OrderStatusShipped, "").Return(nil).Once()

	order, err := f.service.UpdateOrderStatus(ctx, "order-1", models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	_, err = f.service.UpdateOrderStatus(ctx, "order-1", models.OrderStatusPending)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	_, err = f.service.UpdateOrderStatus(ctx, "order-1", models.OrderStatus("lost"))
	var ve *services.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestOrderService_GetOrderNotFound(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", "missing").Return(nil, repositories.ErrNotFound)

	_, err := f.service.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
