package domain

// CartKey is the persistence key holding the JSON-encoded cart.
const CartKey = "labOrderCart"

// CartLine is the pending order intent for one product.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Checked   bool   `json:"checked"`
}

// CartSummary aggregates the checked lines of a cart.
type CartSummary struct {
	Lines    int
	Quantity int
}

// Visible reports whether the summary panel should be shown.
func (s CartSummary) Visible() bool {
	return s.Lines > 0
}
