package models

import (
	"time"

	"github.com/dissmar/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderDraft is the payload handed to the persistence gateway at checkout.
// The gateway assigns the identifier.
type OrderDraft struct {
	UserID          string
	Lines           []CartLine
	Total           decimal.Decimal
	ShippingAddress string
	Status          enums.OrderStatus
	PlacedAt        time.Time
}

// Order is the immutable record created at checkout. Only status and
// deliveredAt ever change after creation, and never through this service.
type Order struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Lines           []CartLine        `json:"lines"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress string            `json:"shipping_address"`
	Status          enums.OrderStatus `json:"status"`
	PlacedAt        time.Time         `json:"placed_at"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
}
