package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissmar/storefront-backend/internal/cart"
	"github.com/dissmar/storefront-backend/internal/gateway/gatewaytest"
	"github.com/dissmar/storefront-backend/pkg/enums"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
	"github.com/dissmar/storefront-backend/pkg/persistq"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newCartWithLines(t *testing.T, fake *gatewaytest.Fake, lines ...models.CartLine) *cart.Store {
	t.Helper()

	queue := persistq.New(persistq.Options{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = queue.Close(ctx)
	})

	store, err := cart.NewStore(cart.StoreParams{UserID: "user-1", Gateway: fake, Queue: queue})
	require.NoError(t, err)
	store.LoadSnapshot(lines)
	return store
}

func line(id, price string, qty int) models.CartLine {
	return models.CartLine{
		Product: models.ProductRef{
			ID:        id,
			Name:      id,
			UnitPrice: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func newFactory(t *testing.T, fake *gatewaytest.Fake) *Factory {
	t.Helper()
	factory, err := NewFactory(FactoryParams{Gateway: fake, Logger: testLogger()})
	require.NoError(t, err)
	return factory
}

func TestPlaceOrderWritesThenClears(t *testing.T) {
	fake := gatewaytest.New()
	store := newCartWithLines(t, fake,
		line("p1", "60.00", 1),
		line("p2", "20.00", 2),
	)
	factory := newFactory(t, fake)

	order, err := factory.PlaceOrder(context.Background(), store, "Managua")
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "Managua", order.ShippingAddress)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("100.00")),
		"got %s", order.Total)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, 0, store.LineCount(), "cart empties immediately after checkout")

	stored := fake.StoredOrders()
	require.Len(t, stored, 1)
	assert.Equal(t, "user-1", stored[0].UserID)
}

func TestPlaceOrderEmptyCartSkipsGateway(t *testing.T) {
	fake := gatewaytest.New()
	store := newCartWithLines(t, fake)
	factory := newFactory(t, fake)

	_, err := factory.PlaceOrder(context.Background(), store, "Managua")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))
	assert.Equal(t, 0, fake.TotalCalls(), "no persistence call on precondition failure")
}

func TestPlaceOrderMissingAddress(t *testing.T) {
	fake := gatewaytest.New()
	store := newCartWithLines(t, fake, line("p1", "5.00", 1))
	factory := newFactory(t, fake)

	_, err := factory.PlaceOrder(context.Background(), store, "  ")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 0, fake.Calls("CreateOrder"))
}

func TestPlaceOrderNilCartIsUnauthenticated(t *testing.T) {
	fake := gatewaytest.New()
	factory := newFactory(t, fake)

	_, err := factory.PlaceOrder(context.Background(), nil, "Managua")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated))
}

func TestPlaceOrderWriteFailureLeavesCartIntact(t *testing.T) {
	fake := gatewaytest.New()
	fake.FailWith("CreateOrder", gatewaytest.PersistenceError("CreateOrder"))
	store := newCartWithLines(t, fake,
		line("p1", "12.50", 3),
	)
	factory := newFactory(t, fake)

	_, err := factory.PlaceOrder(context.Background(), store, "Managua")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodePersistence))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Empty(t, fake.StoredOrders())
}

func TestPlaceOrderStampsClock(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	fake := gatewaytest.New()
	store := newCartWithLines(t, fake, line("p1", "5.00", 1))

	factory, err := NewFactory(FactoryParams{
		Gateway: fake,
		Logger:  testLogger(),
		Now:     func() time.Time { return fixed },
	})
	require.NoError(t, err)

	order, err := factory.PlaceOrder(context.Background(), store, "Managua")
	require.NoError(t, err)
	assert.Equal(t, fixed, order.PlacedAt)
}
