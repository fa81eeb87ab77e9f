package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/api/validators"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/profile"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

type profileUpdateRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
}

func ProfileFetch(svc *profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "no authenticated identity"))
			return
		}

		record, err := svc.Get(r.Context(), ident.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

func ProfileUpdate(svc *profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identity.FromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthenticated, "no authenticated identity"))
			return
		}

		var payload profileUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update := models.ProfileUpdate{
			FullName: payload.FullName,
			Phone:    payload.Phone,
			Address:  payload.Address,
		}
		if err := svc.Update(r.Context(), ident.UserID, update); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), ident.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}
