package api

import (
	"context"
	"fmt"

	"github.com/aviravastra/storefront/internal/apiclient"
)

type ProductsAPI struct {
	client *apiclient.Client
}

// ProductFilter narrows a product listing; zero values are not sent
type ProductFilter struct {
	Search     string
	Occasion   string
	Collection string
	Category   string
	IsActive   *bool
	Limit      int
}

func (f ProductFilter) query() apiclient.Query {
	q := apiclient.Query{}
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.Occasion != "" {
		q["occasion"] = f.Occasion
	}
	if f.Collection != "" {
		q["collection"] = f.Collection
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.IsActive != nil {
		q["isActive"] = *f.IsActive
	}
	if f.Limit > 0 {
		q["limit"] = f.Limit
	}
	return q
}

// ActiveOnly is the filter used by the storefront pages
func ActiveOnly() *bool {
	t := true
	return &t
}

func (p *ProductsAPI) List(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var products []Product
	if err := p.client.Get(ctx, "/products", filter.query(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (p *ProductsAPI) Get(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := p.client.Get(ctx, "/products/"+pathID(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create normalizes and validates in before sending it
func (p *ProductsAPI) Create(ctx context.Context, in ProductInput) (*Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}

	var product Product
	if err := p.client.Post(ctx, "/admin/products", in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update normalizes and validates in before sending it
func (p *ProductsAPI) Update(ctx context.Context, id string, in ProductInput) (*Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}

	var product Product
	if err := p.client.Put(ctx, "/admin/products/"+pathID(id), in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductsAPI) Delete(ctx context.Context, id string) error {
	return p.client.Delete(ctx, "/admin/products/"+pathID(id), nil)
}
