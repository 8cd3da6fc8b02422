package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/api"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back office: orders, products, taxonomy and images",
	}
	cmd.AddCommand(
		newAdminLoginCmd(a),
		newAdminLogoutCmd(a),
		newAdminOrdersCmd(a),
		newAdminProductsCmd(a),
		newAdminUploadCmd(a),
		newAdminTaxonomyCmd(a, "categories"),
		newAdminTaxonomyCmd(a, "occasions"),
		newAdminTaxonomyCmd(a, "collections"),
	)
	return cmd
}

func newAdminLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the back office",
		Long:  `Sign in to the back office. The password may also be given in STOREFRONT_ADMIN_PASSWORD.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STOREFRONT_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			res, err := a.svc.Auth.AdminLogin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.session.AdminLogin(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in to the back office as %s\n", res.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}

func newAdminLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the back office",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.AdminLogout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out of the back office")
			return nil
		},
	}
}

func newAdminOrdersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage customer orders",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var st api.OrderStatus
			if status != "" {
				var err error
				if st, err = api.ParseOrderStatus(status); err != nil {
					return err
				}
			}
			orders, err := a.svc.Orders.List(adminContext(cmd, "orders"), st)
			if err != nil {
				return err
			}
			return a.printOrders(orders)
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders in this status")

	setStatus := &cobra.Command{
		Use:   "set-status ID STATUS",
		Short: "Move an order to a new status",
		Long:  "Move an order to a new status: " + statusNames(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := api.ParseOrderStatus(args[1])
			if err != nil {
				return err
			}
			order, err := a.svc.Orders.UpdateStatus(adminContext(cmd, "orders"), args[0], st)
			if err != nil {
				return err
			}
			return a.printOrder(order)
		},
	}

	cmd.AddCommand(list, setStatus)
	return cmd
}

func statusNames() string {
	names := make([]string, 0, len(api.OrderStatuses))
	for _, s := range api.OrderStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// productFlags binds the product form to flags
type productFlags struct {
	in       api.ProductInput
	discount float64
	inactive bool
}

func (pf *productFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.in.Name, "name", "", "product name")
	f.StringVar(&pf.in.Description, "description", "", "description")
	f.Float64Var(&pf.in.Price, "price", 0, "price")
	f.Float64Var(&pf.discount, "discounted-price", 0, "discounted price, 0 for none")
	f.StringVar(&pf.in.Category, "category", "", "category id")
	f.StringVar(&pf.in.WeaveType, "weave", "", "weave type")
	f.IntVar(&pf.in.Stock, "stock", 0, "units in stock")
	f.BoolVar(&pf.inactive, "inactive", false, "hide the product from the storefront")
	f.StringSliceVar(&pf.in.Occasions, "occasion", nil, "occasion id, repeatable")
	f.StringSliceVar(&pf.in.Collections, "collection", nil, "collection id, repeatable")
	f.StringSliceVar(&pf.in.Images, "image", nil, "image url, repeatable")
}

// apply copies the flags that were set onto in
func (pf *productFlags) apply(cmd *cobra.Command, in api.ProductInput) api.ProductInput {
	f := cmd.Flags()
	if f.Changed("name") {
		in.Name = pf.in.Name
	}
	if f.Changed("description") {
		in.Description = pf.in.Description
	}
	if f.Changed("price") {
		in.Price = pf.in.Price
	}
	if f.Changed("discounted-price") {
		d := pf.discount
		in.DiscountedPrice = &d
	}
	if f.Changed("category") {
		in.Category = pf.in.Category
	}
	if f.Changed("weave") {
		in.WeaveType = pf.in.WeaveType
	}
	if f.Changed("stock") {
		in.Stock = pf.in.Stock
	}
	if f.Changed("inactive") {
		in.IsActive = !pf.inactive
	}
	if f.Changed("occasion") {
		in.Occasions = pf.in.Occasions
	}
	if f.Changed("collection") {
		in.Collections = pf.in.Collections
	}
	if f.Changed("image") {
		in.Images = pf.in.Images
	}
	return in
}

func newAdminProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}

	var createFlags productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := createFlags.apply(cmd, api.ProductInput{IsActive: true})
			p, err := a.svc.Products.Create(adminContext(cmd, "products"), in)
			if err != nil {
				return err
			}
			return a.printProduct(p)
		},
	}
	createFlags.bind(create)
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("category")

	var updateFlags productFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change a product; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := adminContext(cmd, "products")
			current, err := a.svc.Products.Get(ctx, args[0])
			if err != nil {
				return err
			}
			in := updateFlags.apply(cmd, api.InputFromProduct(*current))
			p, err := a.svc.Products.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			return a.printProduct(p)
		},
	}
	updateFlags.bind(update)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Products.Delete(adminContext(cmd, "products"), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted product %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}

func newAdminUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload product images and print their URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := a.svc.Uploads.UploadImageFiles(adminContext(cmd, "products"), args)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(urls)
			}
			for _, u := range urls {
				fmt.Fprintln(a.out, u)
			}
			return nil
		},
	}
}

func newAdminTaxonomyCmd(a *app, resource string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   resource,
		Short: fmt.Sprintf("Manage %s", resource),
	}
	tax := func() *api.TaxonomyAPI {
		t, _ := a.svc.Taxonomy(resource)
		return t
	}

	var in api.TermInput
	var inactive bool
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Add an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if cmd.Flags().Changed("inactive") {
				active := !inactive
				in.IsActive = &active
			}
			t, err := tax().Create(adminContext(cmd, resource), in)
			if err != nil {
				return err
			}
			return a.printTerms([]api.Term{*t})
		},
	}
	create.Flags().StringVar(&in.Description, "description", "", "description")
	create.Flags().StringVar(&in.Image, "image", "", "image url")
	create.Flags().BoolVar(&inactive, "inactive", false, "hide from the storefront")

	var rename string
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename or describe an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd api.TermInput
			upd.Name = rename
			if cmd.Flags().Changed("description") {
				upd.Description = in.Description
			}
			t, err := tax().Update(adminContext(cmd, resource), args[0], upd)
			if err != nil {
				return err
			}
			return a.printTerms([]api.Term{*t})
		},
	}
	update.Flags().StringVar(&rename, "name", "", "new name")
	update.Flags().StringVar(&in.Description, "description", "", "description")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tax().Delete(adminContext(cmd, resource), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s %s\n", resource, args[0])
			return nil
		},
	}

	cmd.AddCommand(create, update, del)
	return cmd
}
