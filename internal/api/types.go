package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// =============================================================================
// SHARED TYPES
// =============================================================================
// Shapes are defined by the storefront backend; only the fields the client uses are declared.

// Ref is a reference to another document. The backend sends either the bare id
// or the populated document, depending on the endpoint; both decode into Ref.
// A Ref is always sent back as the bare id.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type populated Ref
	var p populated
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("reference must be an id or a document: %w", err)
	}
	*r = Ref(p)
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// Label returns the name when the reference was populated, otherwise the id
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// IDs returns the ids of refs
func IDs(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

// RefsFromIDs builds unpopulated references
func RefsFromIDs(ids []string) []Ref {
	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Ref{ID: id})
	}
	return refs
}

// =============================================================================
// AUTH
// =============================================================================

type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role,omitempty"`
}

// AuthResponse is returned by the login endpoints: the token alongside the user fields
type AuthResponse struct {
	Token string `json:"token"`
	User
}

// =============================================================================
// CATALOG
// =============================================================================

type Product struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Price           float64   `json:"price"`
	DiscountedPrice float64   `json:"discountedPrice,omitempty"`
	Category        Ref       `json:"category"`
	WeaveType       string    `json:"weaveType,omitempty"`
	Stock           int       `json:"stock"`
	IsActive        bool      `json:"isActive"`
	Occasions       []Ref     `json:"occasions,omitempty"`
	Collections     []Ref     `json:"collections,omitempty"`
	Images          []string  `json:"images,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
}

// UnitPrice is the price charged: the discounted price when one is set
func (p Product) UnitPrice() float64 {
	if p.DiscountedPrice > 0 {
		return p.DiscountedPrice
	}
	return p.Price
}

// DiscountPercent returns the rounded discount, 0 when there is none
func (p Product) DiscountPercent() int {
	if p.DiscountedPrice <= 0 || p.Price <= 0 {
		return 0
	}
	return int(math.Round((p.Price - p.DiscountedPrice) / p.Price * 100))
}

// ProductInput is the body for creating or updating a product
type ProductInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	Category        string   `json:"category"`
	WeaveType       string   `json:"weaveType,omitempty"`
	Stock           int      `json:"stock"`
	IsActive        bool     `json:"isActive"`
	Occasions       []string `json:"occasions"`
	Collections     []string `json:"collections"`
	Images          []string `json:"images"`
}

// InputFromProduct converts a fetched product into an editable input
func InputFromProduct(p Product) ProductInput {
	in := ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category.ID,
		WeaveType:   p.WeaveType,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		Occasions:   IDs(p.Occasions),
		Collections: IDs(p.Collections),
		Images:      append([]string{}, p.Images...),
	}
	if p.DiscountedPrice > 0 {
		d := p.DiscountedPrice
		in.DiscountedPrice = &d
	}
	return in
}

// Normalize clamps prices and stock at zero. A nil discounted price is an empty form field
// and is not sent; a filled one is sent even when it clamps to zero, which clears the discount.
func (in ProductInput) Normalize() ProductInput {
	in.Price = math.Max(0, in.Price)
	if in.DiscountedPrice != nil {
		d := math.Max(0, *in.DiscountedPrice)
		in.DiscountedPrice = &d
	}
	if in.Stock < 0 {
		in.Stock = 0
	}
	if in.Occasions == nil {
		in.Occasions = []string{}
	}
	if in.Collections == nil {
		in.Collections = []string{}
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	return in
}

// Validate checks the fields the admin form requires
func (in ProductInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if in.Category == "" {
		return fmt.Errorf("product category is required")
	}
	if in.DiscountedPrice != nil && *in.DiscountedPrice > in.Price {
		return fmt.Errorf("discounted price %.2f is above the price %.2f", *in.DiscountedPrice, in.Price)
	}
	return nil
}

// Term is a taxonomy entry: a category, occasion or collection
type Term struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type TermInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// =============================================================================
// ORDERS
// =============================================================================

type OrderStatus string

const (
	OrderAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderPlaced          OrderStatus = "PLACED"
	OrderConfirmed       OrderStatus = "CONFIRMED"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderCancelled       OrderStatus = "CANCELLED"
)

// OrderStatuses lists the statuses in fulfilment order
var OrderStatuses = []OrderStatus{
	OrderAwaitingPayment,
	OrderPlaced,
	OrderConfirmed,
	OrderShipped,
	OrderDelivered,
	OrderCancelled,
}

// ParseOrderStatus accepts a status name in any case
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

type OrderItem struct {
	Product  Ref     `json:"product"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"addressLine1"`
	Line2      string `json:"addressLine2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Validate checks the address has the fields needed for delivery
func (a ShippingAddress) Validate() error {
	switch {
	case a.FullName == "":
		return fmt.Errorf("full name is required")
	case a.Phone == "":
		return fmt.Errorf("phone is required")
	case a.Line1 == "":
		return fmt.Errorf("address line 1 is required")
	case a.City == "":
		return fmt.Errorf("city is required")
	case a.PostalCode == "":
		return fmt.Errorf("postal code is required")
	}
	return nil
}

type Order struct {
	ID              string          `json:"_id"`
	User            Ref             `json:"user"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	TotalAmount     float64         `json:"totalAmount"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	CreatedAt       time.Time       `json:"createdAt,omitzero"`
}

type CheckoutItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// =============================================================================
// UPLOADS
// =============================================================================

type UploadResult struct {
	URL string `json:"url"`
}
