package models

import "github.com/shopspring/decimal"

// CartLine pairs a product copy with a positive quantity. A line with
// quantity below 1 is never stored or persisted; a decrement to zero removes
// the line instead.
type CartLine struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// Subtotal returns unit price times quantity, exact.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums line subtotals over a snapshot.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
