// Package cart is the customer's shopping bag, persisted under cart-storage
// so it survives between runs.
package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aviravastra/storefront/internal/api"
	"github.com/aviravastra/storefront/internal/credentials"
)

var (
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Item is a product in the cart with the quantity wanted
type Item struct {
	api.Product
	Quantity int `json:"quantity"`
}

// LineTotal is the unit price times the quantity
func (i Item) LineTotal() float64 {
	return i.UnitPrice() * float64(i.Quantity)
}

type state struct {
	Items []Item `json:"items"`
}

// Cart reads and writes the persisted cart. Every operation loads the stored
// state first so that concurrent commands see each other's changes.
type Cart struct {
	mu    sync.Mutex
	store credentials.Store
}

func New(store credentials.Store) *Cart {
	return &Cart{store: store}
}

func (c *Cart) load() (state, error) {
	var s state
	if _, err := credentials.LoadJSON(c.store, credentials.CartKey, &s); err != nil {
		return state{}, fmt.Errorf("loading cart: %w", err)
	}
	return s, nil
}

func (c *Cart) save(s state) error {
	if s.Items == nil {
		s.Items = []Item{}
	}
	if err := credentials.SaveJSON(c.store, credentials.CartKey, s); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

func (c *Cart) update(fn func(*state) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.load()
	if err != nil {
		return err
	}
	if err := fn(&s); err != nil {
		return err
	}
	return c.save(s)
}

func find(items []Item, productID string) int {
	for i, it := range items {
		if it.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds quantity of product, increasing the quantity if it is already in the cart
func (c *Cart) AddItem(product api.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return c.update(func(s *state) error {
		if i := find(s.Items, product.ID); i >= 0 {
			s.Items[i].Quantity += quantity
			return nil
		}
		s.Items = append(s.Items, Item{Product: product, Quantity: quantity})
		return nil
	})
}

func (c *Cart) RemoveItem(productID string) error {
	return c.update(func(s *state) error {
		i := find(s.Items, productID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, productID)
		}
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
		return nil
	})
}

// UpdateQuantity sets the quantity of an item already in the cart
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return c.update(func(s *state) error {
		i := find(s.Items, productID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, productID)
		}
		s.Items[i].Quantity = quantity
		return nil
	})
}

func (c *Cart) Clear() error {
	return c.update(func(s *state) error {
		s.Items = nil
		return nil
	})
}

func (c *Cart) Items() ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.load()
	if err != nil {
		return nil, err
	}
	return s.Items, nil
}

// Total sums the line totals, using the discounted price where one is set
func (c *Cart) Total() (float64, error) {
	items, err := c.Items()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total, nil
}

// Count is the number of units in the cart
func (c *Cart) Count() (int, error) {
	items, err := c.Items()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n, nil
}

// CheckoutItems converts the cart into order lines
func (c *Cart) CheckoutItems() ([]api.CheckoutItem, error) {
	items, err := c.Items()
	if err != nil {
		return nil, err
	}
	lines := make([]api.CheckoutItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, api.CheckoutItem{ProductID: it.ID, Quantity: it.Quantity})
	}
	return lines, nil
}
