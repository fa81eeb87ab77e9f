package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dissmar/storefront-backend/internal/cart"
	"github.com/dissmar/storefront-backend/internal/favorites"
	"github.com/dissmar/storefront-backend/internal/gateway"
	"github.com/dissmar/storefront-backend/internal/identity"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/persistq"
)

// Manager owns the live sessions, one per authenticated user. Attach
// hydrates fresh stores from the persisted snapshots; Detach tears the
// session down. An identity hub subscription detaches sessions on
// sign-out so no state leaks across users.
type Manager struct {
	gateway      gateway.PersistenceGateway
	logg         *logger.Logger
	writeTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerParams struct {
	Gateway      gateway.PersistenceGateway
	Logger       *logger.Logger
	WriteTimeout time.Duration
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Gateway == nil {
		return nil, errors.New("persistence gateway is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Manager{
		gateway:      params.Gateway,
		logg:         params.Logger,
		writeTimeout: params.WriteTimeout,
		sessions:     make(map[string]*Session),
	}, nil
}

// Attach returns the live session for the identity, creating one with
// freshly hydrated stores when none exists. Hydration is a full replace
// of store state, never a merge with whatever came before.
func (m *Manager) Attach(ctx context.Context, ident identity.Identity) (*Session, error) {
	if !ident.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "session requires an authenticated identity")
	}

	m.mu.Lock()
	if existing, ok := m.sessions[ident.UserID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	cartLines, _, err := m.gateway.GetCartSnapshot(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	favoriteEntries, _, err := m.gateway.GetFavorites(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	queue := persistq.New(persistq.Options{
		Logger:       m.logg,
		WriteTimeout: m.writeTimeout,
	})

	cartStore, err := cart.NewStore(cart.StoreParams{
		UserID:  ident.UserID,
		Gateway: m.gateway,
		Queue:   queue,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart store")
	}
	cartStore.LoadSnapshot(cartLines)

	favoritesStore, err := favorites.NewStore(favorites.StoreParams{
		UserID:  ident.UserID,
		Gateway: m.gateway,
		Queue:   queue,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build favorites store")
	}
	favoritesStore.LoadSnapshot(favoriteEntries)

	sess := &Session{
		ID:        uuid.NewString(),
		Identity:  ident,
		Cart:      cartStore,
		Favorites: favoritesStore,
		queue:     queue,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[ident.UserID]; ok {
		// lost the race; drop the duplicate quietly
		go func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sess.Close(dctx)
		}()
		return existing, nil
	}
	m.sessions[ident.UserID] = sess

	sctx := m.logg.WithSessionID(m.logg.WithUserID(ctx, ident.UserID), sess.ID)
	m.logg.Info(sctx, "session.attached")
	return sess, nil
}

// Lookup returns the live session without creating one.
func (m *Manager) Lookup(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[strings.TrimSpace(userID)]
	return sess, ok
}

// Detach drains and removes the user's session. Detaching an unknown
// user is a no-op.
func (m *Manager) Detach(ctx context.Context, userID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}

	sctx := m.logg.WithSessionID(m.logg.WithUserID(ctx, userID), sess.ID)
	m.logg.Info(sctx, "session.detached")
	return sess.Close(ctx)
}

// Watch consumes identity events until ctx ends, detaching the session
// whenever its user signs out.
func (m *Manager) Watch(ctx context.Context, hub *identity.Hub) {
	events, cancel := hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.SignedIn {
				continue
			}
			if err := m.Detach(ctx, event.Identity.UserID); err != nil {
				m.logg.Warn(ctx, "session.detach_failed: "+err.Error())
			}
		}
	}
}

// Close drains every live session, aggregating failures.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var combined error
	for _, sess := range sessions {
		combined = multierr.Append(combined, sess.Close(ctx))
	}
	return combined
}
