package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/api/validators"
	"github.com/dissmar/storefront-backend/internal/catalog"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/models"
)

// CatalogList returns the product catalog, optionally filtered by the
// search query parameter.
func CatalogList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := validators.SearchQuery(r, "search")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if products == nil {
			products = []models.ProductRef{}
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}
