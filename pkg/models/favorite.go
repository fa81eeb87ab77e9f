package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FavoriteEntry is a favorited product with the display fields denormalized
// onto the entry, keyed by product id.
type FavoriteEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageRef  string          `json:"image_ref,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// FavoriteFromProduct builds an entry from a catalog product.
func FavoriteFromProduct(product ProductRef, addedAt time.Time) FavoriteEntry {
	return FavoriteEntry{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		ImageRef:  product.ImageRef,
		AddedAt:   addedAt,
	}
}
