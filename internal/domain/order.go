package domain

import (
	"encoding/json"
	"time"

	"github.com/araddon/dateparse"
)

// OrderStatus is the lifecycle state reported by the remote store.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusCompleted OrderStatus = "completed"
)

// Label returns the display label for the status. An empty status reads as
// a draft; unknown values are shown verbatim.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusDraft, "":
		return "Draft"
	case OrderStatusSubmitted:
		return "Submitted"
	case OrderStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Order is a purchase order as stored by the remote store. Member fields are
// copies taken at submission time.
type Order struct {
	ID          string      `json:"id,omitempty" mapstructure:"id"`
	OrderNumber string      `json:"order_number" mapstructure:"order_number"`
	OrderDate   string      `json:"order_date" mapstructure:"order_date"`
	MemberName  string      `json:"member_name" mapstructure:"member_name"`
	MemberEmail string      `json:"member_email" mapstructure:"member_email"`
	Items       string      `json:"items" mapstructure:"items"`
	Notes       string      `json:"notes" mapstructure:"notes"`
	Status      OrderStatus `json:"status" mapstructure:"status"`
}

// OrderLine is a frozen copy of product fields at the time of ordering.
type OrderLine struct {
	ProductID     string `json:"productId"`
	ShortName     string `json:"short_name"`
	Name          string `json:"name"`
	Manufacturer  string `json:"manufacturer"`
	CatalogNumber string `json:"catalog_number"`
	Capacity      string `json:"capacity"`
	UsagePlace    string `json:"usage_place"`
	Quantity      int    `json:"quantity"`
}

// NewOrderLine snapshots p with the given quantity.
func NewOrderLine(p Product, quantity int) OrderLine {
	return OrderLine{
		ProductID:     p.ID,
		ShortName:     p.ShortName,
		Name:          p.Name,
		Manufacturer:  p.Manufacturer,
		CatalogNumber: p.CatalogNumber,
		Capacity:      p.Capacity,
		UsagePlace:    p.UsagePlace,
		Quantity:      quantity,
	}
}

// EncodeOrderLines serializes lines into the string form carried by Order.Items.
func EncodeOrderLines(lines []OrderLine) (string, error) {
	if lines == nil {
		lines = []OrderLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Lines decodes Items. Empty or malformed items yield an empty list.
func (o Order) Lines() []OrderLine {
	if o.Items == "" {
		return []OrderLine{}
	}
	var lines []OrderLine
	if err := json.Unmarshal([]byte(o.Items), &lines); err != nil || lines == nil {
		return []OrderLine{}
	}
	return lines
}

// TotalQuantity sums the quantities of all decoded lines.
func (o Order) TotalQuantity() int {
	total := 0
	for _, l := range o.Lines() {
		total += l.Quantity
	}
	return total
}

// Date parses OrderDate in the local zone. Spreadsheets echo dates back in
// several shapes (2024-05-01, 2024/05/01, RFC 3339 timestamps).
func (o Order) Date() (time.Time, bool) {
	if o.OrderDate == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseLocal(o.OrderDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StatusLabel returns the display label of the order status.
func (o Order) StatusLabel() string {
	return o.Status.Label()
}
