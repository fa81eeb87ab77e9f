package controllers

import (
	"net/http"

	"github.com/dissmar/storefront-backend/api/responses"
	"github.com/dissmar/storefront-backend/api/validators"
	"github.com/dissmar/storefront-backend/internal/orders"
	"github.com/dissmar/storefront-backend/internal/session"
	"github.com/dissmar/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=3"`
}

// Checkout turns the session cart into an order. The cart is emptied only
// after the order write confirms.
func Checkout(manager *session.Manager, factory *orders.Factory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := factory.PlaceOrder(r.Context(), sess.Cart, payload.ShippingAddress)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
