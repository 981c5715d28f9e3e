package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/api/responses"
	"github.com/sisterblooms/storefront-backend/api/validators"
	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

type addItemRequest struct {
	ProductID string                `json:"id" validate:"required,max=120"`
	Size      string                `json:"size" validate:"max=80"`
	Color     string                `json:"color" validate:"max=80"`
	Addons    []string              `json:"addons" validate:"max=20,dive,max=80"`
	Qty       validators.LenientInt `json:"qty"`
}

type updateItemRequest struct {
	Size   *string   `json:"size" validate:"omitempty,max=80"`
	Color  *string   `json:"color" validate:"omitempty,max=80"`
	Addons *[]string `json:"addons" validate:"omitempty,max=20,dive,max=80"`
}

type setQtyRequest struct {
	Qty *validators.LenientInt `json:"qty" validate:"required"`
}

type stepQtyRequest struct {
	Delta int `json:"delta" validate:"required,min=-99,max=99"`
}

type cartResponse struct {
	Item *cart.LineItem     `json:"item,omitempty"`
	Key  *cart.Key          `json:"key,omitempty"`
	Qty  *int               `json:"qty,omitempty"`
	Cart storefront.Summary `json:"cart"`
}

// CartFetch returns the session's cart with its estimate and delivery choice.
func CartFetch(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summary(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sum)
	}
}

func CartCount(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Count(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"count": n})
	}
}

// CartAddItem adds a configured bouquet, merging with an identical line.
func CartAddItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sid := middleware.SessionIDFromContext(ctx)

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.AddToCart(ctx, sid, storefront.AddInput{
			ProductID: payload.ProductID,
			Size:      payload.Size,
			Color:     payload.Color,
			Addons:    payload.Addons,
			Qty:       payload.Qty.Int(),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusCreated, cartResponse{Item: &item})
	}
}

// CartUpdateItem changes a line's options. The response carries the line's
// new key, which may be a line it merged into.
func CartUpdateItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key, err := keyParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		next, err := svc.UpdateItem(ctx, middleware.SessionIDFromContext(ctx), key, storefront.ItemPatch{
			Size:   payload.Size,
			Color:  payload.Color,
			Addons: payload.Addons,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK, cartResponse{Key: &next})
	}
}

// CartSetQty sets a line's quantity. Zero or less removes the line.
func CartSetQty(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key, err := keyParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetQty(ctx, middleware.SessionIDFromContext(ctx), key, payload.Qty.Int()); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK, cartResponse{})
	}
}

// CartStepQty backs the +/- buttons; the quantity never drops below one.
func CartStepQty(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key, err := keyParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload stepQtyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		qty, err := svc.IncrementQty(ctx, middleware.SessionIDFromContext(ctx), key, payload.Delta)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK, cartResponse{Qty: &qty})
	}
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key, err := keyParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.RemoveItem(ctx, middleware.SessionIDFromContext(ctx), key); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK, cartResponse{})
	}
}

func CartClear(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := svc.ClearCart(ctx, middleware.SessionIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		writeCart(w, r, svc, logg, http.StatusOK, cartResponse{})
	}
}

func writeCart(w http.ResponseWriter, r *http.Request, svc CartService, logg *logger.Logger, status int, resp cartResponse) {
	sum, err := svc.Summary(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	resp.Cart = sum
	responses.WriteSuccessStatus(w, status, resp)
}

// keyParam reads the {key} segment. chi hands back the escaped form when the
// request path needed it, so it is unescaped once more in that case.
func keyParam(r *http.Request) (cart.Key, error) {
	raw := chi.URLParam(r, "key")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return cart.Key{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item key")
		}
		raw = unescaped
	}
	key, ok := cart.ParseKey(raw)
	if !ok {
		return cart.Key{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item key").
			WithDetails(map[string]any{"key": raw})
	}
	return key, nil
}
