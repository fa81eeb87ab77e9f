package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dissmar/storefront-backend/internal/cart"
	"github.com/dissmar/storefront-backend/internal/gateway"
	"github.com/dissmar/storefront-backend/pkg/enums"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// Factory turns a cart snapshot plus a shipping address into an immutable
// order. The order write is awaited; the cart is cleared only after the
// write confirms, so a failed checkout leaves the cart untouched.
type Factory struct {
	gateway gateway.PersistenceGateway
	logg    *logger.Logger
	now     func() time.Time
}

type FactoryParams struct {
	Gateway gateway.PersistenceGateway
	Logger  *logger.Logger

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewFactory(params FactoryParams) (*Factory, error) {
	if params.Gateway == nil {
		return nil, errors.New("persistence gateway is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Factory{gateway: params.Gateway, logg: params.Logger, now: now}, nil
}

// PlaceOrder checks preconditions, writes the order, then clears the cart.
// Preconditions fail before any gateway call is attempted.
func (f *Factory) PlaceOrder(ctx context.Context, store *cart.Store, shippingAddress string) (*models.Order, error) {
	if store == nil || strings.TrimSpace(store.UserID()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "checkout requires an active session")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	lines := store.Lines()
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot place an order from an empty cart")
	}

	draft := models.OrderDraft{
		UserID:          store.UserID(),
		Lines:           lines,
		Total:           models.CartTotal(lines),
		ShippingAddress: strings.TrimSpace(shippingAddress),
		Status:          enums.OrderStatusPending,
		PlacedAt:        f.now().UTC(),
	}

	order, err := f.gateway.CreateOrder(ctx, draft)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "create order")
	}

	octx := f.logg.WithField(ctx, "order_id", order.ID)
	f.logg.Info(octx, "order.placed")

	if _, err := store.Clear(); err != nil {
		// the order exists; a failed clear enqueue is logged, not returned
		f.logg.Warn(octx, "order.cart_clear_failed: "+err.Error())
	}
	return order, nil
}
