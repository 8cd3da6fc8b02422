package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/api"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping bag",
	}

	var qty int
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the bag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !p.IsActive || p.Stock < 1 {
				return fmt.Errorf("%s is not available", p.Name)
			}
			if err := a.cart.AddItem(*p, qty); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s to your bag\n", p.Name)
			return nil
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity")

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the bag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.RemoveItem(args[0])
		},
	}

	set := &cobra.Command{
		Use:   "set PRODUCT_ID QUANTITY",
		Short: "Change the quantity of a product in the bag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			return a.cart.UpdateQuantity(args[0], n)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the bag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.cart.Items()
			if err != nil {
				return err
			}
			return a.printCart(items)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the bag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cart.Clear()
		},
	}

	cmd.AddCommand(add, remove, set, show, clearCmd)
	return cmd
}

func newCheckoutCmd(a *app) *cobra.Command {
	var (
		addr    api.ShippingAddress
		payment string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the bag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := a.cart.Checkout(cmd.Context(), a.svc.Orders, addr, payment)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Order %s placed: %s, %s\n", order.ID, formatPrice(order.TotalAmount), order.OrderStatus)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr.FullName, "name", "", "full name")
	f.StringVar(&addr.Phone, "phone", "", "phone number")
	f.StringVar(&addr.Line1, "line1", "", "address line 1")
	f.StringVar(&addr.Line2, "line2", "", "address line 2")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.State, "state", "", "state")
	f.StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&addr.Country, "country", "India", "country")
	f.StringVar(&payment, "payment", "COD", "payment method")
	return cmd
}
