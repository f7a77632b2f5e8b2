package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshbowl/storefront/api/controllers"
	"github.com/freshbowl/storefront/api/middleware"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
)

// Dependencies are the services the router mounts. Pingers feed the readiness
// check; nil entries are skipped.
type Dependencies struct {
	Catalog       catalog.Catalog
	Carts         controllers.CartService
	Checkout      controllers.CheckoutService
	Notifications controllers.NotificationsService
	Pingers       map[string]controllers.Pinger
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartID(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Carts, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Carts, logg))
				r.Post("/customized", controllers.CartAddCustomized(deps.Carts, logg))
				r.Get("/products/{productId}/quantity", controllers.CartProductQuantity(deps.Carts, logg))
				r.Post("/products/{productId}/decrement", controllers.CartDecrementProduct(deps.Carts, logg))
			})

			r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
				r.Delete("/{notificationId}", controllers.DismissNotification(deps.Notifications, logg))
			})
		})
	})

	return r
}
