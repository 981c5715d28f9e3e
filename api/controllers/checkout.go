package controllers

import (
	"net/http"

	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/api/responses"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

// Checkout returns the WhatsApp order message and link. An empty cart is not
// an error: the response says so and carries no link.
func Checkout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Checkout(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
