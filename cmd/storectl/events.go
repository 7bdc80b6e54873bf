package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/pkg/rabbitmq"

	"github.com/spf13/cobra"
	amqp "github.com/streadway/amqp"
)

func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with order events",
	}
	cmd.AddCommand(eventsTailCmd())
	return cmd
}

func eventsTailCmd() *cobra.Command {
	var (
		limit int
		drain bool
	)
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print order events from RabbitMQ until interrupted",
		Long: `Print order events from RabbitMQ until interrupted.

By default tail binds its own exclusive, auto-deleted queue to the order
exchange and only sees events published while it runs. Other consumers of
the shared "` + rabbitmq.DefaultQueue + `" queue are not affected.

With --drain tail consumes the shared durable queue instead. Every message it
prints is acknowledged and removed from that queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			out := cmd.OutOrStdout()
			seen := 0
			consume := client.TailOrderEvents
			if drain {
				consume = client.ConsumeOrderEvents
			}
			return consume(ctx, func(msg amqp.Delivery) error {
				env, evt, err := events.Decode(msg.Body)
				if err != nil {
					fmt.Fprintf(out, "undecodable message on %s: %v\n", msg.RoutingKey, err)
					return err
				}
				fmt.Fprintf(out, "%s %-15s order=%s status=%s amount=%s items=%d\n",
					env.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), msg.RoutingKey,
					evt.OrderID, evt.Status, evt.Amount.StringFixed(2), len(evt.Items))
				seen++
				if limit > 0 && seen >= limit {
					cancel()
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "max", "n", 0, "stop after this many events (0 = no limit)")
	cmd.Flags().BoolVar(&drain, "drain", false, "consume and acknowledge the shared order queue")
	return cmd
}
