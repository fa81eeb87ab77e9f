package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/session"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
)

// sessionFromRequest resolves the caller's live session, attaching one if
// this is the first request since sign-in.
func sessionFromRequest(r *http.Request, manager *session.Manager) (*session.Session, error) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthenticated, "no authenticated identity")
	}
	return manager.Attach(r.Context(), ident)
}
