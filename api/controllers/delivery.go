package controllers

import (
	"net/http"

	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/api/responses"
	"github.com/sisterblooms/storefront-backend/api/validators"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

// deliveryRequest updates only the fields present. An empty date or area
// clears it; choice wins over date when both are sent.
type deliveryRequest struct {
	Date   *string `json:"date" validate:"omitempty,max=10"`
	Choice *string `json:"choice" validate:"omitempty,oneof=today tomorrow pick"`
	Area   *string `json:"area" validate:"omitempty,max=120"`
}

func DeliveryFetch(svc DeliveryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel, err := svc.Delivery(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sel)
	}
}

func DeliveryUpdate(svc DeliveryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload deliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sel, err := svc.SetDelivery(ctx, middleware.SessionIDFromContext(ctx), storefront.DeliveryInput{
			Date:   payload.Date,
			Choice: payload.Choice,
			Area:   payload.Area,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, sel)
	}
}

func DeliveryClear(svc DeliveryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := svc.ClearDelivery(ctx, middleware.SessionIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
