package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"storefront/internal/cart"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/spf13/cobra"
)

func cartCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Build a cart against the catalog and print its checkout request",
		Long: `Build a cart against the catalog and print its checkout request.

The cart is kept in a JSON file between invocations. Product names and prices
are read from the database when a line is added.`,
	}
	cmd.PersistentFlags().StringVar(&file, "file", "cart.json", "cart file")

	open := func() (*cart.Store, error) {
		return cart.Open(cart.NewFileStorage(file))
	}

	var qty int
	add := &cobra.Command{
		Use:   "add [product-id]",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			product, err := services.NewProductService(repositories.NewGORMProductRepository(db)).GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			store, err := open()
			if err != nil {
				return err
			}
			err = store.Add(cart.Item{ID: product.ID, Name: product.Name, Price: product.Price, Image: product.Image, Quantity: qty})
			if err != nil {
				return err
			}
			printCart(cmd, store.Cart())
			return nil
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove [product-id]",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			if err := store.Remove(args[0]); err != nil {
				return err
			}
			printCart(cmd, store.Cart())
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set [product-id] [quantity]",
		Short: "Change the quantity of a line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			store, err := open()
			if err != nil {
				return err
			}
			if err := store.SetQuantity(args[0], n); err != nil {
				return err
			}
			printCart(cmd, store.Cart())
			return nil
		},
	}

	empty := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			printCart(cmd, store.Cart())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			printCart(cmd, store.Cart())
			return nil
		},
	}

	checkout := &cobra.Command{
		Use:   "checkout",
		Short: "Print the body for POST /api/create-payment-intent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			if store.Cart().Count() == 0 {
				return fmt.Errorf("cart %s is empty", file)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.Cart().CheckoutRequest())
		},
	}

	cmd.AddCommand(add, remove, set, empty, show, checkout)
	return cmd
}

func printCart(cmd *cobra.Command, c *cart.Cart) {
	out := cmd.OutOrStdout()
	for _, item := range c.Items {
		fmt.Fprintf(out, "  %-36s %-24s x%-3d %10s\n", item.ID, item.Name, item.Quantity, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(out, "%d items, total %s\n", c.Count(), c.Total.StringFixed(2))
}
