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

type cartView struct {
	Lines     []models.CartLine `json:"lines"`
	Total     decimal.Decimal   `json:"total"`
	LineCount int               `json:"line_count"`
}

func newCartView(lines []models.CartLine, total decimal.Decimal, count int) cartView {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return cartView{Lines: lines, Total: total, LineCount: count}
}

type addItemRequest struct {
	Product  addItemProduct `json:"product"`
	Quantity int            `json:"quantity" validate:"required,min=1"`
}

type addItemProduct struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	ImageRef  string `json:"image_ref"`
	Category  string `json:"category"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartFetch returns the in-memory cart, hydrating the session on first use.
func CartFetch(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(sess.Cart.Lines(), sess.Cart.Total(), sess.Cart.LineCount()))
	}
}

// CartItemAdd merges the posted product into the cart.
func CartItemAdd(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(payload.Product.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unit_price must be a decimal string"))
			return
		}

		product := models.ProductRef{
			ID:        payload.Product.ID,
			Name:      payload.Product.Name,
			UnitPrice: price,
			ImageRef:  payload.Product.ImageRef,
			Category:  payload.Product.Category,
		}
		if _, err := sess.Cart.Add(product, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated,
			newCartView(sess.Cart.Lines(), sess.Cart.Total(), sess.Cart.LineCount()))
	}
}

// CartItemSetQuantity replaces a line's quantity; zero removes the line.
func CartItemSetQuantity(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productID")
		if _, err := sess.Cart.SetQuantity(productID, *payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(sess.Cart.Lines(), sess.Cart.Total(), sess.Cart.LineCount()))
	}
}

// CartItemRemove deletes a line; removing an absent line still succeeds.
func CartItemRemove(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productID")
		if _, err := sess.Cart.Remove(productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(sess.Cart.Lines(), sess.Cart.Total(), sess.Cart.LineCount()))
	}
}

// CartClear empties the cart explicitly.
func CartClear(manager *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := sess.Cart.Clear(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(nil, decimal.Zero, 0))
	}
}
