package main

import (
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/spf13/cobra"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and advance orders",
	}
	cmd.AddCommand(orderShowCmd(), orderStatusCmd())
	return cmd
}

func newOrderService() (*services.OrderService, error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, err
	}
	return services.NewOrderService(
		repositories.NewGORMOrderRepository(db),
		repositories.NewGORMProductRepository(db),
		payments.NewStripeGateway(cfg.StripeSecretKey),
		nil,
		cfg.Currency,
	), nil
}

func orderShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [order-id]",
		Short: "Print an order and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newOrderService()
			if err != nil {
				return err
			}
			order, err := svc.GetOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrder(cmd, order)
			return nil
		},
	}
}

func orderStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [order-id] [status]",
		Short: "Move an order to another status",
		Long: "Move an order along the order states.\n\nAllowed moves:\n  " +
			strings.Join(models.Transitions(), "\n  ") +
			"\n\nAnything else is rejected. Moving to cancelled does not void the payment intent.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newOrderService()
			if err != nil {
				return err
			}
			order, err := svc.UpdateOrderStatus(cmd.Context(), args[0], models.OrderStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %s\n", order.ID, order.Status)
			return nil
		},
	}
}

func printOrder(cmd *cobra.Command, order *models.Order) {
	out := cmd.OutOrStdout()
	user := "guest"
	if order.UserID != nil {
		user = *order.UserID
	}
	intent := "-"
	if order.PaymentIntentID != nil {
		intent = *order.PaymentIntentID
	}
	fmt.Fprintf(out, "Order %s  %s  %s  user=%s  intent=%s  created=%s\n",
		order.ID, order.Status, order.Amount.StringFixed(2), user, intent, order.CreatedAt)
	for _, item := range order.Items {
		fmt.Fprintf(out, "  %-36s x%-3d %10s  %10s\n", item.ProductID, item.Quantity, item.Price.StringFixed(2), item.Subtotal().StringFixed(2))
	}
}
