package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/orders"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// OrdersList returns the caller's order history, newest first.
func OrdersList(history *orders.History, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "no authenticated identity"))
			return
		}

		list, err := history.List(r.Context(), ident.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []models.Order{}
		}

		responses.WriteSuccess(w, map[string]any{"orders": list})
	}
}
