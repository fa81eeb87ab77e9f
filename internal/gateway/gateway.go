package gateway

import (
	"context"

	"github.com/dissmar/storefront-backend/pkg/models"
)

// PersistenceGateway is the durable store behind the storefront, keyed by
// user identity. Cart and favorites are written as full snapshots; orders
// are append-only records with gateway-assigned identifiers.
type PersistenceGateway interface {
	GetCartSnapshot(ctx context.Context, userID string) ([]models.CartLine, bool, error)
	PutCartSnapshot(ctx context.Context, userID string, lines []models.CartLine) error

	GetFavorites(ctx context.Context, userID string) ([]models.FavoriteEntry, bool, error)
	PutFavorites(ctx context.Context, userID string, entries []models.FavoriteEntry) error

	CreateOrder(ctx context.Context, draft models.OrderDraft) (*models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)

	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) error

	ListProducts(ctx context.Context) ([]models.ProductRef, error)
}
