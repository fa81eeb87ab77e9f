package models

import "github.com/shopspring/decimal"

// ProductRef is the immutable identity of a purchasable item as supplied by
// the catalog. Cart and favorites hold copies, never live references.
type ProductRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref,omitempty"`
	Category  string          `json:"category,omitempty"`
}
