package cart

import (
	"context"
	"fmt"

	"github.com/aviravastra/storefront/internal/api"
)

// OrderCreator places orders; *api.OrdersAPI satisfies it
type OrderCreator interface {
	Create(ctx context.Context, req api.CheckoutRequest) (*api.Order, error)
}

// Checkout places an order for everything in the cart and empties the cart once the order is accepted.
// The cart is left untouched when the order fails.
func (c *Cart) Checkout(ctx context.Context, orders OrderCreator, address api.ShippingAddress, paymentMethod string) (*api.Order, error) {
	lines, err := c.CheckoutItems()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	order, err := orders.Create(ctx, api.CheckoutRequest{
		Items:           lines,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		return nil, err
	}

	if err := c.Clear(); err != nil {
		return order, fmt.Errorf("order %s placed but the cart could not be cleared: %w", order.ID, err)
	}
	return order, nil
}
