package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/internal/identity"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
)

// SignOut broadcasts the sign-out so the session manager tears down the
// caller's cart and favorites. Pending writes drain before the detach
// completes; the token itself stays valid until it expires client-side.
func SignOut(hub *identity.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "no authenticated identity"))
			return
		}

		hub.Publish(identity.Event{Identity: ident, SignedIn: false})
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}
