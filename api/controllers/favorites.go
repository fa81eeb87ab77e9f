package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/api/validators"
	"github.com/dissmar/storefront-backend/internal/session"
	pkgerrors "github.com/dissmar/storefront-backend/pkg/errors"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

type favoriteRequest struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	ImageRef  string `json:"image_ref"`
	Category  string `json:"category"`
}

func (p favoriteRequest) toProduct() (models.ProductRef, error) {
	price, err := decimal.NewFromString(p.UnitPrice)
	if err != nil {
		return models.ProductRef{}, pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be a decimal string")
	}
	return models.ProductRef{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: price,
		ImageRef:  p.ImageRef,
		Category:  p.Category,
	}, nil
}

func favoritesView(entries []models.FavoriteEntry) map[string]any {
	if entries == nil {
		entries = []models.FavoriteEntry{}
	}
	return map[string]any{"favorites": entries, "count": len(entries)}
}

// FavoritesList returns the session's favorites in insertion order.
func FavoritesList(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, favoritesView(sess.Favorites.Entries()))
	}
}

// FavoriteAdd inserts the product; adding a member again reports added=false.
func FavoriteAdd(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload favoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := payload.toProduct()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		added, _, err := sess.Favorites.Add(product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"added": added, "count": sess.Favorites.Count()})
	}
}

// FavoriteToggle flips membership and reports the resulting state.
func FavoriteToggle(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload favoriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := payload.toProduct()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, _, err := sess.Favorites.Toggle(product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"favorited": member, "count": sess.Favorites.Count()})
	}
}

// FavoritesClear empties the set and persists the empty snapshot.
func FavoritesClear(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := sess.Favorites.Clear(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, favoritesView(nil))
	}
}

// FavoriteRemove drops the product id; removing a non-member still succeeds.
func FavoriteRemove(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productID")
		if _, err := sess.Favorites.Remove(productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, favoritesView(sess.Favorites.Entries()))
	}
}
