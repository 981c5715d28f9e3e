package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sisterblooms/storefront-backend/api/controllers"
	"github.com/sisterblooms/storefront-backend/api/middleware"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc *storefront.Service,
	limiter middleware.RateLimiter,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, svc, logg))
	})

	if cfg.Metrics.Enabled && gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shop", controllers.ShopInfo(svc))
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(svc, logg))
			r.Get("/{productID}", controllers.CatalogDetail(svc, logg))
			r.Post("/{productID}/enquiry", controllers.CatalogEnquiry(svc, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svc, logg))
				r.Delete("/", controllers.CartClear(svc, logg))
				r.Get("/count", controllers.CartCount(svc, logg))
				r.Get("/events", controllers.CartEvents(svc, logg))
				r.Route("/items", func(r chi.Router) {
					r.Post("/", controllers.CartAddItem(svc, logg))
					r.Patch("/{key}", controllers.CartUpdateItem(svc, logg))
					r.Delete("/{key}", controllers.CartRemoveItem(svc, logg))
					r.Put("/{key}/qty", controllers.CartSetQty(svc, logg))
					r.Post("/{key}/qty/step", controllers.CartStepQty(svc, logg))
				})
			})

			r.Route("/delivery", func(r chi.Router) {
				r.Get("/", controllers.DeliveryFetch(svc, logg))
				r.Put("/", controllers.DeliveryUpdate(svc, logg))
				r.Delete("/", controllers.DeliveryClear(svc, logg))
			})

			r.With(middleware.SessionRateLimit("checkout", cfg.Checkout.RateLimit, cfg.Checkout.RateWindow, limiter, logg)).
				Post("/checkout", controllers.Checkout(svc, logg))
		})
	})

	return r
}
