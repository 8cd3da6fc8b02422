package fakeapi

import "time"

// refView is a populated reference
type refView struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type productView struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	DiscountedPrice *float64  `json:"discountedPrice,omitempty"`
	Category        any       `json:"category"`
	WeaveType       string    `json:"weaveType,omitempty"`
	Stock           int       `json:"stock"`
	IsActive        bool      `json:"isActive"`
	Occasions       []string  `json:"occasions"`
	Collections     []string  `json:"collections"`
	Images          []string  `json:"images"`
	CreatedAt       time.Time `json:"createdAt"`
}

// productView renders p with its category populated when it still exists, as the
// listing endpoints do. Unknown categories are left as the bare id.
func (s *store) productView(p product) productView {
	v := productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		WeaveType:   p.WeaveType,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		Occasions:   nonNil(p.Occasions),
		Collections: nonNil(p.Collections),
		Images:      nonNil(p.Images),
		CreatedAt:   p.CreatedAt,
	}
	if p.DiscountedPrice > 0 {
		d := p.DiscountedPrice
		v.DiscountedPrice = &d
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.terms[resourceCategories][p.Category]; ok {
		v.Category = refView{ID: t.ID, Name: t.Name, Slug: t.Slug}
	}
	return v
}

type orderView struct {
	ID              string          `json:"_id"`
	User            any             `json:"user"`
	Items           []orderItem     `json:"items"`
	ShippingAddress shippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	TotalAmount     float64         `json:"totalAmount"`
	OrderStatus     string          `json:"orderStatus"`
	PaymentStatus   string          `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// orderView renders o; populate expands the user the way the admin listing does
func (s *store) orderView(o order, populate bool) orderView {
	v := orderView{
		ID:              o.ID,
		User:            o.User,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		TotalAmount:     o.TotalAmount,
		OrderStatus:     o.OrderStatus,
		PaymentStatus:   o.PaymentStatus,
		CreatedAt:       o.CreatedAt,
	}
	if v.Items == nil {
		v.Items = []orderItem{}
	}
	if populate {
		if u, err := s.getUser(o.User); err == nil {
			v.User = refView{ID: u.ID, Name: u.Name}
		}
	}
	return v
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
