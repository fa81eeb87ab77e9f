package session

import (
	"context"

	"github.com/dissmar/storefront-backend/internal/cart"
	"github.com/dissmar/storefront-backend/internal/favorites"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/pkg/persistq"
)

// Session is the per-user unit of state: a cart, a favorites set, and the
// write queue both persist through. Stores in a session are fresh on
// attach; nothing survives an identity switch. ID labels the session in
// logs and is minted on attach.
type Session struct {
	ID        string
	Identity  identity.Identity
	Cart      *cart.Store
	Favorites *favorites.Store

	queue *persistq.Queue
}

// Flush waits until every write enqueued so far has committed.
func (s *Session) Flush(ctx context.Context) error {
	receipt := s.queue.Enqueue("session.flush", func(context.Context) error { return nil })
	return receipt.Wait(ctx)
}

// Close drains the write queue and stops it. The session is unusable after.
func (s *Session) Close(ctx context.Context) error {
	return s.queue.Close(ctx)
}
