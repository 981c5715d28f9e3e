package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sisterblooms/storefront-backend/api/responses"
	"github.com/sisterblooms/storefront-backend/api/validators"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

type catalogListResponse struct {
	Categories []string          `json:"categories"`
	Products   []catalog.Product `json:"products"`
}

type productResponse struct {
	catalog.Product
	ColorPreviews map[string]string `json:"colorPreviews,omitempty"`
}

type enquiryRequest struct {
	Size   string   `json:"size" validate:"max=80"`
	Color  string   `json:"color" validate:"max=80"`
	Addons []string `json:"addons" validate:"max=20,dive,max=80"`
}

// CatalogList returns the bouquets, optionally filtered by ?category= and ?featured=.
func CatalogList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := svc.Catalog()
		products := cat.Products()

		if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
			products = cat.ByCategory(category)
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("featured")); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "featured must be true or false").
					WithDetails(map[string]any{"field": "featured"}))
				return
			}
			kept := products[:0]
			for _, p := range products {
				if p.Featured == featured {
					kept = append(kept, p)
				}
			}
			products = kept
		}

		responses.WriteSuccess(w, catalogListResponse{Categories: cat.Categories(), Products: products})
	}
}

// CatalogDetail returns one bouquet with the image for each colour.
func CatalogDetail(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, ok := svc.Catalog().Find(chi.URLParam(r, "productID"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "bouquet not found"))
			return
		}

		previews := make(map[string]string, len(product.Colors))
		for _, c := range product.Colors {
			previews[c] = catalog.ResolveImage(product, c)
		}
		responses.WriteSuccess(w, productResponse{Product: product, ColorPreviews: previews})
	}
}

func ShopInfo(svc CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Catalog().Shop())
	}
}

// CatalogEnquiry builds the WhatsApp message for asking about a single bouquet.
func CatalogEnquiry(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload enquiryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.Enquiry(chi.URLParam(r, "productID"), strings.TrimSpace(payload.Size), strings.TrimSpace(payload.Color), payload.Addons)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
