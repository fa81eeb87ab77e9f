package session

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissmar/storefront-backend/internal/gateway/gatewaytest"
	"github.com/dissmar/storefront-backend/internal/identity"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

func newTestManager(t *testing.T, fake *gatewaytest.Fake) *Manager {
	t.Helper()

	manager, err := NewManager(ManagerParams{
		Gateway: fake,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = manager.Close(ctx)
	})
	return manager
}

func cartLine(id string, qty int) models.CartLine {
	return models.CartLine{
		Product: models.ProductRef{
			ID:        id,
			Name:      id,
			UnitPrice: decimal.RequireFromString("4.00"),
		},
		Quantity: qty,
	}
}

func TestAttachHydratesFromSnapshots(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedCart("user-1", []models.CartLine{cartLine("p1", 2)})
	manager := newTestManager(t, fake)

	sess, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, sess.Cart.LineCount())
	assert.Empty(t, sess.Favorites.Entries())
}

func TestAttachIsIdempotentPerUser(t *testing.T) {
	manager := newTestManager(t, gatewaytest.New())

	first, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)
	second, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestAttachRequiresAuthentication(t *testing.T) {
	manager := newTestManager(t, gatewaytest.New())

	_, err := manager.Attach(context.Background(), identity.Identity{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthenticated))
}

func TestIdentitySwitchSeesNoStaleLines(t *testing.T) {
	fake := gatewaytest.New()
	fake.SeedCart("alice", []models.CartLine{cartLine("p1", 3)})
	manager := newTestManager(t, fake)

	alice, err := manager.Attach(context.Background(), identity.Identity{UserID: "alice"})
	require.NoError(t, err)
	require.Equal(t, 3, alice.Cart.LineCount())

	require.NoError(t, manager.Detach(context.Background(), "alice"))

	bob, err := manager.Attach(context.Background(), identity.Identity{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 0, bob.Cart.LineCount(), "new identity starts from its own snapshot")
}

func TestDetachDrainsPendingWrites(t *testing.T) {
	fake := gatewaytest.New()
	manager := newTestManager(t, fake)

	sess, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)

	_, err = sess.Cart.Add(models.ProductRef{
		ID:        "p1",
		Name:      "Coffee",
		UnitPrice: decimal.RequireFromString("4.00"),
	}, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, manager.Detach(ctx, "user-1"))

	persisted := fake.StoredCart("user-1")
	require.Len(t, persisted, 1)
	assert.Equal(t, 2, persisted[0].Quantity)
}

func TestDetachUnknownUserIsNoOp(t *testing.T) {
	manager := newTestManager(t, gatewaytest.New())
	assert.NoError(t, manager.Detach(context.Background(), "ghost"))
}

func TestWatchDetachesOnSignOut(t *testing.T) {
	manager := newTestManager(t, gatewaytest.New())
	hub := identity.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Watch(ctx, hub)

	_, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)

	hub.Publish(identity.Event{Identity: identity.Identity{UserID: "user-1"}, SignedIn: false})

	require.Eventually(t, func() bool {
		_, ok := manager.Lookup("user-1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestFlushWaitsForQueuedWrites(t *testing.T) {
	fake := gatewaytest.New()
	manager := newTestManager(t, fake)

	sess, err := manager.Attach(context.Background(), identity.Identity{UserID: "user-1"})
	require.NoError(t, err)

	_, err = sess.Cart.Add(models.ProductRef{
		ID:        "p1",
		Name:      "Coffee",
		UnitPrice: decimal.RequireFromString("4.00"),
	}, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sess.Flush(ctx))
	assert.Len(t, fake.StoredCart("user-1"), 1)
}
