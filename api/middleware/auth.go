package middleware

import (
	"net/http"
	"strings"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/internal/identity"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
)

// Auth validates a bearer ID token and seeds the request context with the
// resolved identity.
func Auth(verifier identity.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "missing credentials"))
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := identity.WithIdentity(r.Context(), ident)
			if logg != nil {
				ctx = logg.WithUserID(ctx, ident.UserID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
