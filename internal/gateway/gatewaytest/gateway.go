// Package gatewaytest provides an in-memory PersistenceGateway for tests,
// with call counters and per-operation fault injection.
package gatewaytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// Fake is a thread-safe in-memory gateway. The zero value is not usable;
// construct with New.
type Fake struct {
	mu sync.Mutex

	carts     map[string][]models.CartLine
	favorites map[string][]models.FavoriteEntry
	orders    []models.Order
	profiles  map[string]models.UserProfile
	products  []models.ProductRef

	calls map[string]int
	fail  map[string]error
}

func New() *Fake {
	return &Fake{
		carts:     make(map[string][]models.CartLine),
		favorites: make(map[string][]models.FavoriteEntry),
		profiles:  make(map[string]models.UserProfile),
		calls:     make(map[string]int),
		fail:      make(map[string]error),
	}
}

// FailWith makes the named operation return err until cleared with a nil err.
func (f *Fake) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// Calls returns how many times the named operation was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the invocation count across all operations.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// SeedProducts replaces the catalog contents.
func (f *Fake) SeedProducts(products []models.ProductRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append([]models.ProductRef(nil), products...)
}

// SeedProfile stores a profile document.
func (f *Fake) SeedProfile(profile models.UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[profile.UserID] = profile
}

// SeedCart stores a cart snapshot directly.
func (f *Fake) SeedCart(userID string, lines []models.CartLine) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[userID] = append([]models.CartLine(nil), lines...)
}

// StoredCart returns the last persisted snapshot for the user.
func (f *Fake) StoredCart(userID string) []models.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartLine(nil), f.carts[userID]...)
}

// StoredFavorites returns the last persisted favorites for the user.
func (f *Fake) StoredFavorites(userID string) []models.FavoriteEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FavoriteEntry(nil), f.favorites[userID]...)
}

// StoredOrders returns every order created so far.
func (f *Fake) StoredOrders() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Order(nil), f.orders...)
}

func (f *Fake) begin(op string) error {
	f.calls[op]++
	if err, ok := f.fail[op]; ok {
		return err
	}
	return nil
}

func (f *Fake) GetCartSnapshot(_ context.Context, userID string) ([]models.CartLine, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetCartSnapshot"); err != nil {
		return nil, false, err
	}
	lines, ok := f.carts[userID]
	if !ok {
		return nil, false, nil
	}
	return append([]models.CartLine(nil), lines...), true, nil
}

func (f *Fake) PutCartSnapshot(_ context.Context, userID string, lines []models.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("PutCartSnapshot"); err != nil {
		return err
	}
	f.carts[userID] = append([]models.CartLine(nil), lines...)
	return nil
}

func (f *Fake) GetFavorites(_ context.Context, userID string) ([]models.FavoriteEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetFavorites"); err != nil {
		return nil, false, err
	}
	entries, ok := f.favorites[userID]
	if !ok {
		return nil, false, nil
	}
	return append([]models.FavoriteEntry(nil), entries...), true, nil
}

func (f *Fake) PutFavorites(_ context.Context, userID string, entries []models.FavoriteEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("PutFavorites"); err != nil {
		return err
	}
	f.favorites[userID] = append([]models.FavoriteEntry(nil), entries...)
	return nil
}

func (f *Fake) CreateOrder(_ context.Context, draft models.OrderDraft) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("CreateOrder"); err != nil {
		return nil, err
	}
	order := models.Order{
		ID:              uuid.NewString(),
		UserID:          draft.UserID,
		Lines:           append([]models.CartLine(nil), draft.Lines...),
		Total:           draft.Total,
		ShippingAddress: draft.ShippingAddress,
		Status:          draft.Status,
		PlacedAt:        draft.PlacedAt,
	}
	f.orders = append(f.orders, order)
	return &order, nil
}

func (f *Fake) ListOrders(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListOrders"); err != nil {
		return nil, err
	}
	matched := make([]models.Order, 0)
	for _, order := range f.orders {
		if order.UserID == userID {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PlacedAt.After(matched[j].PlacedAt)
	})
	return matched, nil
}

func (f *Fake) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("GetProfile"); err != nil {
		return nil, err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return &profile, nil
}

func (f *Fake) UpdateProfile(_ context.Context, userID string, update models.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("UpdateProfile"); err != nil {
		return err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	profile.FullName = update.FullName
	profile.Phone = update.Phone
	profile.Address = update.Address
	profile.UpdatedAt = time.Now().UTC()
	f.profiles[userID] = profile
	return nil
}

func (f *Fake) ListProducts(_ context.Context) ([]models.ProductRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("ListProducts"); err != nil {
		return nil, err
	}
	return append([]models.ProductRef(nil), f.products...), nil
}

// PersistenceError builds the error most tests inject for gateway faults.
func PersistenceError(op string) error {
	return pkgerrors.New(pkgerrors.CodePersistence, fmt.Sprintf("injected %s failure", op))
}

var _ gateway.PersistenceGateway = (*Fake)(nil)
