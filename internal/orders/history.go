package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// History serves a user's past orders, newest first.
type History struct {
	gateway gateway.PersistenceGateway
}

func NewHistory(gw gateway.PersistenceGateway) (*History, error) {
	if gw == nil {
		return nil, errors.New("persistence gateway is required")
	}
	return &History{gateway: gw}, nil
}

func (h *History) List(ctx context.Context, userID string) ([]models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "order history requires an active session")
	}
	orders, err := h.gateway.ListOrders(ctx, userID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "list orders")
	}
	return orders, nil
}
