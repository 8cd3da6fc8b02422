package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/api"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	var (
		filter api.ProductFilter
		all    bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				filter.IsActive = api.ActiveOnly()
			}
			products, err := a.svc.Products.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.printProducts(products)
		},
	}
	list.Flags().StringVar(&filter.Search, "search", "", "text to search for")
	list.Flags().StringVar(&filter.Occasion, "occasion", "", "occasion id or slug")
	list.Flags().StringVar(&filter.Collection, "collection", "", "collection id or slug")
	list.Flags().StringVar(&filter.Category, "category", "", "category id or slug")
	list.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of products")
	list.Flags().BoolVar(&all, "all", false, "include inactive products")

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.svc.Products.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printProduct(p)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newTaxonomyCmd(a *app, resource string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   resource,
		Short: fmt.Sprintf("Browse %s", resource),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", resource),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, _ := a.svc.Taxonomy(resource)
			terms, err := tax.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printTerms(terms)
		},
	})
	return cmd
}
