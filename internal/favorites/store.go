package favorites

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
	"github.com/dissmar/storefront-backend/pkg/persistq"
)

// Store is the in-memory favorites set for one session, keyed by product
// id. Adding a member again is a no-op signaled through the added flag;
// removing a non-member is a no-op. Mutations persist the full set through
// the session write queue, same local-first model as the cart.
type Store struct {
	userID  string
	gateway gateway.PersistenceGateway
	queue   *persistq.Queue
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]models.FavoriteEntry
	order   []string
}

type StoreParams struct {
	UserID  string
	Gateway gateway.PersistenceGateway
	Queue   *persistq.Queue

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func NewStore(params StoreParams) (*Store, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, errors.New("user id is required")
	}
	if params.Gateway == nil {
		return nil, errors.New("persistence gateway is required")
	}
	if params.Queue == nil {
		return nil, errors.New("write queue is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		userID:  params.UserID,
		gateway: params.Gateway,
		queue:   params.Queue,
		now:     now,
		entries: make(map[string]models.FavoriteEntry),
	}, nil
}

// Add inserts the product into the set. Returns added=false without
// persisting when the product is already a member.
func (s *Store) Add(product models.ProductRef) (bool, *persistq.Receipt, error) {
	if strings.TrimSpace(product.ID) == "" {
		return false, nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	if _, ok := s.entries[product.ID]; ok {
		s.mu.Unlock()
		return false, nil, nil
	}
	s.entries[product.ID] = models.FavoriteFromProduct(product, s.now().UTC())
	s.order = append(s.order, product.ID)
	receipt := s.persistLocked("favorites.add")
	s.mu.Unlock()

	return true, receipt, nil
}

// Remove drops the product id from the set. Removing a non-member is a
// no-op and skips persistence.
func (s *Store) Remove(productID string) (*persistq.Receipt, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	if _, ok := s.entries[productID]; !ok {
		s.mu.Unlock()
		return nil, nil
	}
	delete(s.entries, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	receipt := s.persistLocked("favorites.remove")
	s.mu.Unlock()

	return receipt, nil
}

// Toggle flips membership and reports the resulting state. Two toggles in
// a row restore the original membership.
func (s *Store) Toggle(product models.ProductRef) (bool, *persistq.Receipt, error) {
	if strings.TrimSpace(product.ID) == "" {
		return false, nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	member := false
	if _, ok := s.entries[product.ID]; ok {
		delete(s.entries, product.ID)
		for i, id := range s.order {
			if id == product.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		s.entries[product.ID] = models.FavoriteFromProduct(product, s.now().UTC())
		s.order = append(s.order, product.ID)
		member = true
	}
	receipt := s.persistLocked("favorites.toggle")
	s.mu.Unlock()

	return member, receipt, nil
}

// Clear empties the set and persists the empty snapshot.
func (s *Store) Clear() (*persistq.Receipt, error) {
	s.mu.Lock()
	s.entries = make(map[string]models.FavoriteEntry)
	s.order = nil
	receipt := s.persistLocked("favorites.clear")
	s.mu.Unlock()

	return receipt, nil
}

// IsFavorite reports membership by product id.
func (s *Store) IsFavorite(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[productID]
	return ok
}

// Count returns the number of members.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns the favorites in insertion order.
func (s *Store) Entries() []models.FavoriteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LoadSnapshot replaces the set wholesale; called at session start and on
// identity change.
func (s *Store) LoadSnapshot(entries []models.FavoriteEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]models.FavoriteEntry, len(entries))
	s.order = s.order[:0]
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		if _, ok := s.entries[entry.ID]; ok {
			continue
		}
		s.entries[entry.ID] = entry
		s.order = append(s.order, entry.ID)
	}
}

func (s *Store) snapshotLocked() []models.FavoriteEntry {
	snapshot := make([]models.FavoriteEntry, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.entries[id])
	}
	return snapshot
}

// persistLocked snapshots under the mutation lock and enqueues while still
// holding it, so two mutations cannot enqueue out of mutation order.
func (s *Store) persistLocked(label string) *persistq.Receipt {
	snapshot := s.snapshotLocked()
	return s.queue.Enqueue(label, func(ctx context.Context) error {
		return s.gateway.PutFavorites(ctx, s.userID, snapshot)
	})
}
