// Package view turns application state into plain view descriptions. The
// functions here do no I/O; printers decide how a description is shown.
package view

import (
	"strconv"

	"github.com/R3E-Network/lab_order/internal/domain"
)

// ProductRow describes one catalog entry.
type ProductRow struct {
	ID            string
	Title         string
	Manufacturer  string
	CatalogNumber string
	Capacity      string
	UsagePlace    string
	Category      string
	InCart        int
}

// ProductList describes the catalog page.
type ProductList struct {
	Rows  []ProductRow
	Empty bool
	// Filtered is true when a search term or category narrowed the list.
	Filtered bool
}

// Products renders products. cart supplies the in-cart quantity per row.
func Products(products []domain.Product, cart []domain.CartLine, filtered bool) ProductList {
	qty := make(map[string]int, len(cart))
	for _, l := range cart {
		qty[l.ProductID] = l.Quantity
	}
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductRow{
			ID:            p.ID,
			Title:         p.DisplayName(),
			Manufacturer:  p.Manufacturer,
			CatalogNumber: p.CatalogNumber,
			Capacity:      p.Capacity,
			UsagePlace:    p.UsagePlace,
			Category:      p.Category,
			InCart:        qty[p.ID],
		})
	}
	return ProductList{Rows: rows, Empty: len(rows) == 0, Filtered: filtered}
}

// CartRow describes one cart line joined with its product.
type CartRow struct {
	ProductID     string
	Title         string
	Manufacturer  string
	CatalogNumber string
	Capacity      string
	UsagePlace    string
	Quantity      int
	Checked       bool
}

// CartView describes the cart page.
type CartView struct {
	Rows    []CartRow
	Empty   bool
	Total   int
	Summary domain.CartSummary
	// ShowSummary is false when no line is checked.
	ShowSummary bool
	// Unknown lists cart product ids missing from the catalog. They are not
	// rendered as rows.
	Unknown []string
}

// Cart renders the cart lines against the product list. Lines whose product
// is not in the catalog are skipped and listed in Unknown.
func Cart(lines []domain.CartLine, products []domain.Product, summary domain.CartSummary) CartView {
	index := make(map[string]domain.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}

	v := CartView{Rows: []CartRow{}, Summary: summary, ShowSummary: summary.Visible()}
	for _, l := range lines {
		v.Total += l.Quantity
		p, ok := index[l.ProductID]
		if !ok {
			v.Unknown = append(v.Unknown, l.ProductID)
			continue
		}
		v.Rows = append(v.Rows, CartRow{
			ProductID:     l.ProductID,
			Title:         p.DisplayName(),
			Manufacturer:  p.Manufacturer,
			CatalogNumber: p.CatalogNumber,
			Capacity:      p.Capacity,
			UsagePlace:    p.UsagePlace,
			Quantity:      l.Quantity,
			Checked:       l.Checked,
		})
	}
	v.Empty = len(lines) == 0
	return v
}

// MemberOption is one entry of the member selector.
type MemberOption struct {
	ID    string
	Label string
}

// MemberOptions renders the member selector.
func MemberOptions(members []domain.Member) []MemberOption {
	out := make([]MemberOption, 0, len(members))
	for _, m := range members {
		label := m.Name
		if m.Email != "" {
			label += " <" + m.Email + ">"
		}
		out = append(out, MemberOption{ID: m.ID, Label: label})
	}
	return out
}

// OrderItem is one line of an order card or preview.
type OrderItem struct {
	No            int
	Title         string
	Name          string
	Manufacturer  string
	CatalogNumber string
	Capacity      string
	UsagePlace    string
	Quantity      int
}

// OrderCard describes one order in the history list.
type OrderCard struct {
	ID          string
	OrderNumber string
	OrderDate   string
	MemberName  string
	Status      domain.OrderStatus
	StatusLabel string
	Items       []OrderItem
	Notes       string
	TotalQty    int
}

// Orders renders the order history in the order given.
func Orders(orders []domain.Order) []OrderCard {
	out := make([]OrderCard, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderCard(o))
	}
	return out
}

func orderCard(o domain.Order) OrderCard {
	lines := o.Lines()
	items := make([]OrderItem, 0, len(lines))
	total := 0
	for i, l := range lines {
		items = append(items, orderItem(i+1, l))
		total += l.Quantity
	}
	return OrderCard{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		OrderDate:   o.OrderDate,
		MemberName:  o.MemberName,
		Status:      o.Status,
		StatusLabel: o.StatusLabel(),
		Items:       items,
		Notes:       o.Notes,
		TotalQty:    total,
	}
}

func orderItem(no int, l domain.OrderLine) OrderItem {
	title := l.Name
	if l.ShortName != "" {
		title = "[" + l.ShortName + "] " + l.Name
	}
	return OrderItem{
		No:            no,
		Title:         title,
		Name:          l.Name,
		Manufacturer:  l.Manufacturer,
		CatalogNumber: l.CatalogNumber,
		Capacity:      l.Capacity,
		UsagePlace:    l.UsagePlace,
		Quantity:      l.Quantity,
	}
}

// Preview is the printable purchase order.
type Preview struct {
	Title   string
	Header  [][2]string
	Columns []string
	Rows    [][]string
	Notes   string
}

// PreviewColumns are the table headings of a purchase order.
var PreviewColumns = []string{"No.", "Product", "Manufacturer", "Catalog No.", "Capacity", "Usage place", "Qty"}

// OrderPreview renders a purchase order.
func OrderPreview(o domain.Order) Preview {
	card := orderCard(o)
	rows := make([][]string, 0, len(card.Items))
	for _, it := range card.Items {
		rows = append(rows, []string{
			strconv.Itoa(it.No),
			it.Name,
			it.Manufacturer,
			it.CatalogNumber,
			it.Capacity,
			it.UsagePlace,
			strconv.Itoa(it.Quantity),
		})
	}
	return Preview{
		Title: "Purchase Order",
		Header: [][2]string{
			{"Order number", o.OrderNumber},
			{"Order date", o.OrderDate},
			{"Requested by", o.MemberName},
		},
		Columns: PreviewColumns,
		Rows:    rows,
		Notes:   o.Notes,
	}
}
