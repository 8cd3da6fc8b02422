// Package api provides the storefront resource modules (auth, products, taxonomy, orders, uploads)
// on top of the apiclient request layer.
//
// The methods return the request layer's *apiclient.ClientError values unchanged so callers
// can distinguish timeouts, network failures, HTTP errors and admin session invalidation.
package api

import (
	"net/url"

	"github.com/aviravastra/storefront/internal/apiclient"
)

// Service groups the resource modules sharing one client
type Service struct {
	Auth        *AuthAPI
	Products    *ProductsAPI
	Categories  *TaxonomyAPI
	Occasions   *TaxonomyAPI
	Collections *TaxonomyAPI
	Orders      *OrdersAPI
	Uploads     *UploadsAPI
}

func New(client *apiclient.Client) *Service {
	return &Service{
		Auth:        &AuthAPI{client: client},
		Products:    &ProductsAPI{client: client},
		Categories:  &TaxonomyAPI{client: client, resource: "categories"},
		Occasions:   &TaxonomyAPI{client: client, resource: "occasions"},
		Collections: &TaxonomyAPI{client: client, resource: "collections"},
		Orders:      &OrdersAPI{client: client},
		Uploads:     &UploadsAPI{client: client},
	}
}

// Taxonomy returns the module for "categories", "occasions" or "collections"
func (s *Service) Taxonomy(resource string) (*TaxonomyAPI, bool) {
	switch resource {
	case "categories", "category":
		return s.Categories, true
	case "occasions", "occasion":
		return s.Occasions, true
	case "collections", "collection":
		return s.Collections, true
	}
	return nil, false
}

// pathID escapes an id for use as a path segment
func pathID(id string) string {
	return url.PathEscape(id)
}
