package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aviravastra/storefront/internal/api"
	"github.com/aviravastra/storefront/internal/cart"
)

var rupees = message.NewPrinter(language.MustParse("en-IN"))

func formatPrice(v float64) string {
	if v == math.Trunc(v) {
		return rupees.Sprintf("₹%.0f", v)
	}
	return rupees.Sprintf("₹%.2f", v)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) printProducts(products []api.Product) error {
	if a.jsonOut {
		return a.printJSON(products)
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category.Label(), productPrice(p), p.Stock)
	}
	return tw.Flush()
}

func productPrice(p api.Product) string {
	if pct := p.DiscountPercent(); pct > 0 {
		return fmt.Sprintf("%s (was %s, %d%% off)", formatPrice(p.UnitPrice()), formatPrice(p.Price), pct)
	}
	return formatPrice(p.Price)
}

func (a *app) printProduct(p *api.Product) error {
	if a.jsonOut {
		return a.printJSON(p)
	}
	tw := a.table()
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category\t%s\n", p.Category.Label())
	if p.WeaveType != "" {
		fmt.Fprintf(tw, "Weave\t%s\n", p.WeaveType)
	}
	fmt.Fprintf(tw, "Price\t%s\n", productPrice(*p))
	fmt.Fprintf(tw, "Stock\t%d\n", p.Stock)
	fmt.Fprintf(tw, "Active\t%t\n", p.IsActive)
	if len(p.Images) > 0 {
		fmt.Fprintf(tw, "Images\t%s\n", strings.Join(p.Images, ", "))
	}
	if p.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", p.Description)
	}
	return tw.Flush()
}

func (a *app) printTerms(terms []api.Term) error {
	if a.jsonOut {
		return a.printJSON(terms)
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tSLUG\tACTIVE")
	for _, t := range terms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", t.ID, t.Name, t.Slug, t.IsActive)
	}
	return tw.Flush()
}

func (a *app) printOrders(orders []api.Order) error {
	if a.jsonOut {
		return a.printJSON(orders)
	}
	tw := a.table()
	fmt.Fprintln(tw, "ID\tCUSTOMER\tITEMS\tTOTAL\tSTATUS\tPAYMENT\tPLACED")
	for _, o := range orders {
		placed := ""
		if !o.CreatedAt.IsZero() {
			placed = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.User.Label(), len(o.Items), formatPrice(o.TotalAmount), o.OrderStatus, o.PaymentStatus, placed)
	}
	return tw.Flush()
}

func (a *app) printOrder(o *api.Order) error {
	if a.jsonOut {
		return a.printJSON(o)
	}
	if err := a.printOrders([]api.Order{*o}); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	tw := a.table()
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tPRICE")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.Product.ID, it.Name, it.Quantity, formatPrice(it.Price))
	}
	return tw.Flush()
}

func (a *app) printCart(items []cart.Item) error {
	if a.jsonOut {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your bag is empty")
		return nil
	}

	var total float64
	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tLINE")
	for _, it := range items {
		total += it.LineTotal()
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, it.Name, it.Quantity, formatPrice(it.UnitPrice()), formatPrice(it.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", formatPrice(total))
	fmt.Fprintf(tw, "\t\t\tShipping\tFREE\n")
	return tw.Flush()
}
