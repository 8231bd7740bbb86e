package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/R3E-Network/lab_order/internal/cli"
	"github.com/R3E-Network/lab_order/internal/view"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProducts(w io.Writer, list view.ProductList) {
	if list.Empty {
		if list.Filtered {
			fmt.Fprintln(w, "No products match the search.")
		} else {
			fmt.Fprintln(w, "No products registered.")
		}
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPRODUCT\tMANUFACTURER\tCATALOG NO.\tCAPACITY\tUSAGE PLACE\tCATEGORY\tIN CART")
	for _, r := range list.Rows {
		inCart := ""
		if r.InCart > 0 {
			inCart = fmt.Sprint(r.InCart)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Manufacturer, r.CatalogNumber, r.Capacity, r.UsagePlace, r.Category, inCart)
	}
	tw.Flush()
}

func printMembers(w io.Writer, members []view.MemberOption) {
	if len(members) == 0 {
		fmt.Fprintln(w, "No members registered.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tMEMBER")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.Label)
	}
	tw.Flush()
}

func printCart(w io.Writer, cart view.CartView) {
	if cart.Empty {
		fmt.Fprintln(w, "The cart is empty.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "\tID\tPRODUCT\tMANUFACTURER | CATALOG NO.\tCAPACITY / USAGE PLACE\tQTY")
	for _, r := range cart.Rows {
		mark := "[ ]"
		if r.Checked {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s | %s\t%s / %s\t%d\n",
			mark, r.ProductID, r.Title, r.Manufacturer, r.CatalogNumber, r.Capacity, r.UsagePlace, r.Quantity)
	}
	tw.Flush()

	if len(cart.Unknown) > 0 {
		fmt.Fprintf(w, "Not in catalog: %s\n", strings.Join(cart.Unknown, ", "))
	}
	fmt.Fprintf(w, "Total in cart: %d\n", cart.Total)
	if cart.ShowSummary {
		fmt.Fprintf(w, "%s %d line(s), %d unit(s)\n",
			cli.Colorize(w, "To order:", cli.ColorBold), cart.Summary.Lines, cart.Summary.Quantity)
	}
}

func printOrders(w io.Writer, cards []view.OrderCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}
	for i, c := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  [%s]\n", cli.Colorize(w, c.OrderNumber, cli.ColorBold), c.StatusLabel)
		fmt.Fprintf(w, "  Date: %s  Ordered by: %s\n", c.OrderDate, c.MemberName)
		for _, it := range c.Items {
			fmt.Fprintf(w, "  - %s (%s | %s) x%d\n", it.Title, it.Manufacturer, it.CatalogNumber, it.Quantity)
		}
		if c.Notes != "" {
			fmt.Fprintf(w, "  Notes: %s\n", c.Notes)
		}
	}
}

func printPreview(w io.Writer, p view.Preview) {
	fmt.Fprintln(w, cli.Colorize(w, p.Title, cli.ColorBold))
	for _, h := range p.Header {
		fmt.Fprintf(w, "%s: %s\n", h[0], h[1])
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, strings.Join(p.Columns, "\t"))
	for _, row := range p.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	if p.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n%s\n", p.Notes)
	}
}
