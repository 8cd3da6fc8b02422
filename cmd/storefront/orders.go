package main

import (
	"github.com/spf13/cobra"
)

func newOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Your orders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "mine",
			Short: "List your orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				orders, err := a.svc.Orders.Mine(cmd.Context())
				if err != nil {
					return err
				}
				return a.printOrders(orders)
			},
		},
		&cobra.Command{
			Use:   "get ID",
			Short: "Show one order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				order, err := a.svc.Orders.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printOrder(order)
			},
		},
	)
	return cmd
}
