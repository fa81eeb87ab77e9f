package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissmar/storefront-backend/internal/catalog"
	"github.com/dissmar/storefront-backend/internal/gateway/gatewaytest"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/orders"
	"github.com/dissmar/storefront-backend/internal/profile"
	"github.com/dissmar/storefront-backend/internal/session"
	"github.com/dissmar/storefront-backend/pkg/config"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
	"github.com/dissmar/storefront-backend/pkg/types"
)

type stubVerifier struct{}

// Verify treats the token itself as the user id, so tests can pick the
// caller with the Authorization header.
func (stubVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	return identity.Identity{UserID: token, Email: token + "@example.com"}, nil
}

type fixture struct {
	handler  http.Handler
	fake     *gatewaytest.Fake
	sessions *session.Manager
	hub      *identity.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	fake := gatewaytest.New()

	sessions, err := session.NewManager(session.ManagerParams{Gateway: fake, Logger: logg})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sessions.Close(ctx)
	})

	hub := identity.NewHub()
	watchCtx, stopWatch := context.WithCancel(context.Background())
	t.Cleanup(stopWatch)
	go sessions.Watch(watchCtx, hub)

	catalogService, err := catalog.NewService(catalog.ServiceParams{Gateway: fake, Logger: logg})
	require.NoError(t, err)
	factory, err := orders.NewFactory(orders.FactoryParams{Gateway: fake, Logger: logg})
	require.NoError(t, err)
	history, err := orders.NewHistory(fake)
	require.NoError(t, err)
	profileService, err := profile.NewService(fake)
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test", Port: "0"}}
	handler := NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		Verifier: stubVerifier{},
		Hub:      hub,
		Sessions: sessions,
		Catalog:  catalogService,
		Factory:  factory,
		History:  history,
		Profile:  profileService,
	})

	return &fixture{handler: handler, fake: fake, sessions: sessions, hub: hub}
}

func (f *fixture) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	if user != "" {
		r.Header.Set("Authorization", "Bearer "+user)
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object payload, got %T", envelope.Data)
	return data
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	live := f.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, live.Code)

	ready := f.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)

	add := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Arabica Beans", "unit_price": "12.50"},
		"quantity": 2
	}`)
	require.Equal(t, http.StatusCreated, add.Code, add.Body.String())

	again := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Arabica Beans", "unit_price": "12.50"},
		"quantity": 3
	}`)
	require.Equal(t, http.StatusCreated, again.Code)

	data := decodeData(t, again)
	assert.Equal(t, float64(5), data["line_count"])
	assert.Equal(t, "62.5", data["total"])
	lines := data["lines"].([]any)
	require.Len(t, lines, 1, "same product merges, never duplicates")

	set := f.do(t, http.MethodPatch, "/api/v1/cart/items/p1", "alice", `{"quantity": 0}`)
	require.Equal(t, http.StatusOK, set.Code)
	data = decodeData(t, set)
	assert.Equal(t, float64(0), data["line_count"])
	assert.Empty(t, data["lines"])
}

func TestCartRejectsUnknownFields(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Beans", "unit_price": "1.00"},
		"quantity": 1,
		"surprise": true
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	f := newFixture(t)

	add := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Beans", "unit_price": "50.00"},
		"quantity": 2
	}`)
	require.Equal(t, http.StatusCreated, add.Code)

	checkout := f.do(t, http.MethodPost, "/api/v1/checkout", "alice", `{"shipping_address": "Managua"}`)
	require.Equal(t, http.StatusCreated, checkout.Code, checkout.Body.String())

	data := decodeData(t, checkout)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "100", data["total"])
	assert.Equal(t, "Managua", data["shipping_address"])

	cart := f.do(t, http.MethodGet, "/api/v1/cart", "alice", "")
	require.Equal(t, http.StatusOK, cart.Code)
	assert.Equal(t, float64(0), decodeData(t, cart)["line_count"])

	list := f.do(t, http.MethodGet, "/api/v1/orders", "alice", "")
	require.Equal(t, http.StatusOK, list.Code)
	ordersList := decodeData(t, list)["orders"].([]any)
	assert.Len(t, ordersList, 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/checkout", "alice", `{"shipping_address": "Managua"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, f.fake.Calls("CreateOrder"))
}

func TestFavoritesToggleFlow(t *testing.T) {
	f := newFixture(t)
	payload := `{"id": "p1", "name": "Beans", "unit_price": "12.50"}`

	first := f.do(t, http.MethodPost, "/api/v1/favorites/toggle", "alice", payload)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, true, decodeData(t, first)["favorited"])

	second := f.do(t, http.MethodPost, "/api/v1/favorites/toggle", "alice", payload)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, false, decodeData(t, second)["favorited"])

	list := f.do(t, http.MethodGet, "/api/v1/favorites", "alice", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(0), decodeData(t, list)["count"])
}

func TestFavoritesClearEmptiesSet(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{
		`{"id": "p1", "name": "Beans", "unit_price": "12.50"}`,
		`{"id": "p2", "name": "Filters", "unit_price": "3.00"}`,
	} {
		add := f.do(t, http.MethodPost, "/api/v1/favorites", "alice", payload)
		require.Equal(t, http.StatusOK, add.Code)
	}

	clear := f.do(t, http.MethodDelete, "/api/v1/favorites", "alice", "")
	require.Equal(t, http.StatusOK, clear.Code)
	assert.Equal(t, float64(0), decodeData(t, clear)["count"])

	list := f.do(t, http.MethodGet, "/api/v1/favorites", "alice", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, float64(0), decodeData(t, list)["count"])
}

func TestUsersDoNotShareState(t *testing.T) {
	f := newFixture(t)

	add := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Beans", "unit_price": "4.00"},
		"quantity": 3
	}`)
	require.Equal(t, http.StatusCreated, add.Code)

	bob := f.do(t, http.MethodGet, "/api/v1/cart", "bob", "")
	require.Equal(t, http.StatusOK, bob.Code)
	assert.Equal(t, float64(0), decodeData(t, bob)["line_count"])
}

func TestSignOutDetachesSession(t *testing.T) {
	f := newFixture(t)

	add := f.do(t, http.MethodPost, "/api/v1/cart/items", "alice", `{
		"product": {"id": "p1", "name": "Beans", "unit_price": "4.00"},
		"quantity": 1
	}`)
	require.Equal(t, http.StatusCreated, add.Code)

	out := f.do(t, http.MethodPost, "/api/v1/session/signout", "alice", "")
	require.Equal(t, http.StatusOK, out.Code)

	require.Eventually(t, func() bool {
		_, ok := f.sessions.Lookup("alice")
		return !ok
	}, time.Second, 10*time.Millisecond)

	// the snapshot survived the detach; a fresh session rehydrates it
	cart := f.do(t, http.MethodGet, "/api/v1/cart", "alice", "")
	require.Equal(t, http.StatusOK, cart.Code)
	assert.Equal(t, float64(1), decodeData(t, cart)["line_count"])
}

func TestCatalogSearch(t *testing.T) {
	f := newFixture(t)
	f.fake.SeedProducts([]models.ProductRef{
		{ID: "p1", Name: "Arabica Beans", Category: "coffee", UnitPrice: decimal.RequireFromString("12.50")},
		{ID: "p2", Name: "Green Tea", Category: "tea", UnitPrice: decimal.RequireFromString("6.00")},
	})

	w := f.do(t, http.MethodGet, "/api/v1/products?search=tea", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	products := decodeData(t, w)["products"].([]any)
	assert.Len(t, products, 1)
}

func TestProfileRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.fake.SeedProfile(models.UserProfile{UserID: "alice", Email: "alice@example.com"})

	update := f.do(t, http.MethodPut, "/api/v1/profile", "alice", `{
		"full_name": "Alice",
		"phone": "8888-1234",
		"address": "Managua"
	}`)
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())

	get := f.do(t, http.MethodGet, "/api/v1/profile", "alice", "")
	require.Equal(t, http.StatusOK, get.Code)
	data := decodeData(t, get)
	assert.Equal(t, "Alice", data["full_name"])
	assert.Equal(t, "alice@example.com", data["email"])
}

func TestProfileUpdateMissingFields(t *testing.T) {
	f := newFixture(t)
	f.fake.SeedProfile(models.UserProfile{UserID: "alice", Email: "alice@example.com"})

	w := f.do(t, http.MethodPut, "/api/v1/profile", "alice", `{"full_name": "Alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
