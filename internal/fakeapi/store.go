package fakeapi

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	errNotFound      = errors.New("not found")
	errAlreadyExists = errors.New("already exists")
	errOutOfStock    = errors.New("insufficient stock")
)

// taxonomy resources served under /{resource} and /admin/{resource}
const (
	resourceCategories  = "categories"
	resourceOccasions   = "occasions"
	resourceCollections = "collections"
)

var taxonomyResources = []string{resourceCategories, resourceOccasions, resourceCollections}

// order and payment statuses as stored by the backend
var orderStatuses = []string{"AWAITING_PAYMENT", "PLACED", "CONFIRMED", "SHIPPED", "DELIVERED", "CANCELLED"}

const (
	roleCustomer = "customer"
	roleAdmin    = "admin"
)

type user struct {
	ID      string    `json:"_id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Picture string    `json:"picture,omitempty"`
	Role    string    `json:"role"`
	Created time.Time `json:"createdAt"`
}

type term struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type termInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	IsActive    *bool   `json:"isActive"`
}

type product struct {
	ID              string
	Name            string
	Description     string
	Price           float64
	DiscountedPrice float64
	Category        string
	WeaveType       string
	Stock           int
	IsActive        bool
	Occasions       []string
	Collections     []string
	Images          []string
	CreatedAt       time.Time
}

type productInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice"`
	Category        string   `json:"category"`
	WeaveType       string   `json:"weaveType"`
	Stock           int      `json:"stock"`
	IsActive        *bool    `json:"isActive"`
	Occasions       []string `json:"occasions"`
	Collections     []string `json:"collections"`
	Images          []string `json:"images"`
}

type shippingAddress struct {
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

type orderItem struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type order struct {
	ID              string
	User            string
	Items           []orderItem
	ShippingAddress shippingAddress
	PaymentMethod   string
	TotalAmount     float64
	OrderStatus     string
	PaymentStatus   string
	CreatedAt       time.Time
}

type orderRequest struct {
	Items []struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
	ShippingAddress shippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

type upload struct {
	ContentType string
	Data        []byte
}

type productFilter struct {
	Search     string
	Occasion   string
	Collection string
	Category   string
	IsActive   *bool
	Limit      int
}

// store is the in-memory document database behind the development API
type store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]*user
	products map[string]*product
	terms    map[string]map[string]*term
	orders   map[string]*order
	uploads  map[string]upload
}

func newStore(now func() time.Time) *store {
	s := &store{
		now:      now,
		users:    make(map[string]*user),
		products: make(map[string]*product),
		terms:    make(map[string]map[string]*term),
		orders:   make(map[string]*order),
		uploads:  make(map[string]upload),
	}
	for _, r := range taxonomyResources {
		s.terms[r] = make(map[string]*term)
	}
	return s
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// titleCaser is stateful; only use it while holding store.mu
var titleCaser = cases.Title(language.English)

// stripMarks removes combining marks after decomposition, so "Paithaṇī" becomes "Paithani"
var stripMarks = runes.Remove(runes.In(unicode.Mn))

// slugify lower-cases name, drops diacritics and joins its words with hyphens
func slugify(name string) string {
	plain, _, err := transform.String(transform.Chain(norm.NFD, stripMarks), name)
	if err != nil {
		plain = name
	}

	var b strings.Builder
	dash := false
	for _, r := range cases.Lower(language.Und).String(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// =============================================================================
// USERS
// =============================================================================

// upsertUser returns the user with email, creating it on first login
func (s *store) upsertUser(email, name, picture, role string) *user {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			if picture != "" {
				u.Picture = picture
			}
			return u
		}
	}

	u := &user{ID: newID(), Name: name, Email: email, Picture: picture, Role: role, Created: s.now()}
	s.users[u.ID] = u
	return u
}

func (s *store) getUser(id string) (*user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

// =============================================================================
// TAXONOMY
// =============================================================================

func (s *store) listTerms(resource string) []term {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := make([]term, 0, len(s.terms[resource]))
	for _, t := range s.terms[resource] {
		terms = append(terms, *t)
	}
	slices.SortFunc(terms, func(a, b term) int { return cmp.Compare(a.Name, b.Name) })
	return terms
}

// findTerm matches an id or a slug
func (s *store) findTerm(resource, key string) (*term, bool) {
	if t, ok := s.terms[resource][key]; ok {
		return t, true
	}
	for _, t := range s.terms[resource] {
		if t.Slug == key {
			return t, true
		}
	}
	return nil, false
}

func (s *store) createTerm(resource string, in termInput) (*term, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := titleCaser.String(strings.TrimSpace(*in.Name))
	slug := slugify(name)
	if _, exists := s.findTerm(resource, slug); exists {
		return nil, fmt.Errorf("%s %q %w", resource, name, errAlreadyExists)
	}

	t := &term{ID: newID(), Name: name, Slug: slug, IsActive: true, CreatedAt: s.now()}
	applyTermInput(t, in)
	s.terms[resource][t.ID] = t
	cp := *t
	return &cp, nil
}

func applyTermInput(t *term, in termInput) {
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Image != nil {
		t.Image = *in.Image
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
}

func (s *store) updateTerm(resource, id string, in termInput) (*term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.terms[resource][id]
	if !ok {
		return nil, errNotFound
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		t.Name = titleCaser.String(strings.TrimSpace(*in.Name))
		t.Slug = slugify(t.Name)
	}
	applyTermInput(t, in)
	cp := *t
	return &cp, nil
}

func (s *store) deleteTerm(resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.terms[resource][id]; !ok {
		return errNotFound
	}
	delete(s.terms[resource], id)
	return nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *store) listProducts(f productFilter) []product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matchTerm := func(resource, key string, ids []string) bool {
		t, ok := s.findTerm(resource, key)
		return ok && slices.Contains(ids, t.ID)
	}

	var out []product
	for _, p := range s.products {
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.WeaveType), search) {
			continue
		}
		if f.Category != "" && !matchTerm(resourceCategories, f.Category, []string{p.Category}) {
			continue
		}
		if f.Occasion != "" && !matchTerm(resourceOccasions, f.Occasion, p.Occasions) {
			continue
		}
		if f.Collection != "" && !matchTerm(resourceCollections, f.Collection, p.Collections) {
			continue
		}
		out = append(out, *p)
	}

	// newest first
	slices.SortFunc(out, func(a, b product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (s *store) getProduct(id string) (*product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *store) validateProduct(in productInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if in.Price < 0 || in.Stock < 0 {
		return fmt.Errorf("price and stock cannot be negative")
	}
	if in.DiscountedPrice != nil && *in.DiscountedPrice > in.Price {
		return fmt.Errorf("discounted price cannot exceed price")
	}
	if _, ok := s.terms[resourceCategories][in.Category]; !ok {
		return fmt.Errorf("unknown category %q", in.Category)
	}
	return nil
}

func applyProductInput(p *product, in productInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.DiscountedPrice = 0
	if in.DiscountedPrice != nil {
		p.DiscountedPrice = *in.DiscountedPrice
	}
	p.Category = in.Category
	p.WeaveType = in.WeaveType
	p.Stock = in.Stock
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.Occasions = slices.Clone(in.Occasions)
	p.Collections = slices.Clone(in.Collections)
	p.Images = slices.Clone(in.Images)
}

func (s *store) createProduct(in productInput) (*product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateProduct(in); err != nil {
		return nil, err
	}
	p := &product{ID: newID(), IsActive: true, CreatedAt: s.now()}
	applyProductInput(p, in)
	s.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *store) updateProduct(id string, in productInput) (*product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, errNotFound
	}
	if err := s.validateProduct(in); err != nil {
		return nil, err
	}
	applyProductInput(p, in)
	cp := *p
	return &cp, nil
}

func (s *store) deleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return errNotFound
	}
	delete(s.products, id)
	return nil
}

// =============================================================================
// ORDERS
// =============================================================================

// placeOrder prices the items from the catalog and reserves stock.
// Cash on delivery orders are placed immediately, others wait for payment.
func (s *store) placeOrder(userID string, req orderRequest) (*order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("no order items")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o := &order{
		ID:              newID(),
		User:            userID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		OrderStatus:     "AWAITING_PAYMENT",
		PaymentStatus:   "PENDING",
		CreatedAt:       s.now(),
	}
	if strings.EqualFold(req.PaymentMethod, "COD") {
		o.OrderStatus = "PLACED"
	}

	for _, it := range req.Items {
		p, ok := s.products[it.Product]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: product %s", errNotFound, it.Product)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("quantity for %s must be at least 1", p.Name)
		}
		if p.Stock < it.Quantity {
			return nil, fmt.Errorf("%w for %s", errOutOfStock, p.Name)
		}

		price := p.Price
		if p.DiscountedPrice > 0 {
			price = p.DiscountedPrice
		}
		item := orderItem{Product: p.ID, Name: p.Name, Price: price, Quantity: it.Quantity}
		if len(p.Images) > 0 {
			item.Image = p.Images[0]
		}
		o.Items = append(o.Items, item)
		o.TotalAmount += price * float64(it.Quantity)
	}

	for _, it := range o.Items {
		s.products[it.Product].Stock -= it.Quantity
	}
	s.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

// listOrders returns orders newest first, optionally restricted to a status or a user
func (s *store) listOrders(status, userID string) []order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []order
	for _, o := range s.orders {
		if status != "" && o.OrderStatus != status {
			continue
		}
		if userID != "" && o.User != userID {
			continue
		}
		out = append(out, *o)
	}
	slices.SortFunc(out, func(a, b order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (s *store) getOrder(id string) (*order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *o
	return &cp, nil
}

// updateOrderStatus moves an order to status. A delivered order is considered paid.
func (s *store) updateOrderStatus(id, status string) (*order, error) {
	if !slices.Contains(orderStatuses, status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, errNotFound
	}
	o.OrderStatus = status
	if status == "DELIVERED" {
		o.PaymentStatus = "PAID"
	}
	cp := *o
	return &cp, nil
}

// =============================================================================
// UPLOADS
// =============================================================================

func (s *store) saveUpload(name string, u upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[name] = u
}

func (s *store) getUpload(name string) (upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[name]
	return u, ok
}
