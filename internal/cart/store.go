package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dissmar/storefront-backend/internal/gateway"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/models"
	"github.com/dissmar/storefront-backend/pkg/persistq"
)

// Store is the in-memory cart for one authenticated session. Reads are
// served from memory immediately after a mutation; every mutation enqueues
// a full-snapshot write so durable state commits in mutation order.
//
// A mutation's receipt reports the write outcome as a side channel. A
// failed write never rolls the in-memory state back.
type Store struct {
	userID  string
	gateway gateway.PersistenceGateway
	queue   *persistq.Queue

	mu    sync.Mutex
	lines map[string]*models.CartLine
	order []string
}

// StoreParams configures a session cart.
type StoreParams struct {
	UserID  string
	Gateway gateway.PersistenceGateway
	Queue   *persistq.Queue
}

// NewStore builds an empty cart bound to a user and a session write queue.
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
	return &Store{
		userID:  params.UserID,
		gateway: params.Gateway,
		queue:   params.Queue,
		lines:   make(map[string]*models.CartLine),
	}, nil
}

// Add merges qty units of the product into the cart. An existing line for
// the same product id is incremented, never duplicated.
func (s *Store) Add(product models.ProductRef, qty int) (*persistq.Receipt, error) {
	if strings.TrimSpace(product.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	s.mu.Lock()
	if line, ok := s.lines[product.ID]; ok {
		line.Quantity += qty
	} else {
		s.lines[product.ID] = &models.CartLine{Product: product, Quantity: qty}
		s.order = append(s.order, product.ID)
	}
	receipt := s.persistLocked("cart.add")
	s.mu.Unlock()

	return receipt, nil
}

// SetQuantity replaces a line's quantity exactly. A qty of zero or below
// removes the line. An absent product id is ignored; the persisted snapshot
// is still refreshed.
func (s *Store) SetQuantity(productID string, qty int) (*persistq.Receipt, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	if qty <= 0 {
		s.removeLocked(productID)
	} else if line, ok := s.lines[productID]; ok {
		line.Quantity = qty
	}
	receipt := s.persistLocked("cart.set_quantity")
	s.mu.Unlock()

	return receipt, nil
}

// Remove deletes the line if present. Idempotent.
func (s *Store) Remove(productID string) (*persistq.Receipt, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	s.removeLocked(productID)
	receipt := s.persistLocked("cart.remove")
	s.mu.Unlock()

	return receipt, nil
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear() (*persistq.Receipt, error) {
	s.mu.Lock()
	s.lines = make(map[string]*models.CartLine)
	s.order = nil
	receipt := s.persistLocked("cart.clear")
	s.mu.Unlock()

	return receipt, nil
}

// LoadSnapshot replaces the in-memory state wholesale. Used at session
// start and on identity change; merging here would resurrect stale lines.
func (s *Store) LoadSnapshot(lines []models.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]*models.CartLine, len(lines))
	s.order = s.order[:0]
	for _, line := range lines {
		if line.Quantity < 1 || strings.TrimSpace(line.Product.ID) == "" {
			continue
		}
		if existing, ok := s.lines[line.Product.ID]; ok {
			existing.Quantity += line.Quantity
			continue
		}
		copied := line
		s.lines[line.Product.ID] = &copied
		s.order = append(s.order, line.Product.ID)
	}
}

// Lines returns the cart contents in insertion order.
func (s *Store) Lines() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Total is the exact sum of unit price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CartTotal(s.snapshotLocked())
}

// LineCount sums quantities across lines, not distinct products.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// UserID returns the session owner.
func (s *Store) UserID() string {
	return s.userID
}

func (s *Store) removeLocked(productID string) {
	if _, ok := s.lines[productID]; !ok {
		return
	}
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) snapshotLocked() []models.CartLine {
	snapshot := make([]models.CartLine, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.lines[id])
	}
	return snapshot
}

// persistLocked snapshots under the mutation lock and enqueues while still
// holding it, so two mutations cannot enqueue out of mutation order.
func (s *Store) persistLocked(label string) *persistq.Receipt {
	snapshot := s.snapshotLocked()
	return s.queue.Enqueue(label, func(ctx context.Context) error {
		return s.gateway.PutCartSnapshot(ctx, s.userID, snapshot)
	})
}
