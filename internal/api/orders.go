package api

import (
	"context"
	"fmt"

	"github.com/aviravastra/storefront/internal/apiclient"
)

type OrdersAPI struct {
	client *apiclient.Client
}

// List returns all orders for the back office. An empty status returns every order.
func (o *OrdersAPI) List(ctx context.Context, status OrderStatus) ([]Order, error) {
	var query apiclient.Query
	if status != "" {
		query = apiclient.Query{"status": string(status)}
	}

	var orders []Order
	if err := o.client.Get(ctx, "/admin/orders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order to status. Unknown statuses are rejected without calling the API.
func (o *OrdersAPI) UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error) {
	if _, err := ParseOrderStatus(string(status)); err != nil {
		return nil, err
	}

	var order Order
	body := map[string]string{"status": string(status)}
	if err := o.client.Put(ctx, "/admin/orders/"+pathID(id)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create places an order for the logged in customer
func (o *OrdersAPI) Create(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cannot place an order with no items")
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shipping address: %w", err)
	}

	var order Order
	if err := o.client.Post(ctx, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Mine returns the logged in customer's orders
func (o *OrdersAPI) Mine(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := o.client.Get(ctx, "/orders/my", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (o *OrdersAPI) Get(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := o.client.Get(ctx, "/orders/"+pathID(id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
