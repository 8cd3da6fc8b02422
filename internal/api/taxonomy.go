package api

import (
	"context"
	"fmt"

	"github.com/aviravastra/storefront/internal/apiclient"
)

// TaxonomyAPI manages one of the taxonomy resources: categories, occasions or collections.
// Listing is public, changes go through the admin endpoints.
type TaxonomyAPI struct {
	client   *apiclient.Client
	resource string
}

// Resource returns the resource name, e.g. "occasions"
func (t *TaxonomyAPI) Resource() string {
	return t.resource
}

func (t *TaxonomyAPI) List(ctx context.Context) ([]Term, error) {
	var terms []Term
	if err := t.client.Get(ctx, "/"+t.resource, nil, &terms); err != nil {
		return nil, err
	}
	return terms, nil
}

func (t *TaxonomyAPI) Create(ctx context.Context, in TermInput) (*Term, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%s name is required", t.resource)
	}

	var term Term
	if err := t.client.Post(ctx, "/admin/"+t.resource, in, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (t *TaxonomyAPI) Update(ctx context.Context, id string, in TermInput) (*Term, error) {
	var term Term
	if err := t.client.Put(ctx, "/admin/"+t.resource+"/"+pathID(id), in, &term); err != nil {
		return nil, err
	}
	return &term, nil
}

func (t *TaxonomyAPI) Delete(ctx context.Context, id string) error {
	return t.client.Delete(ctx, "/admin/"+t.resource+"/"+pathID(id), nil)
}
