package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dissmar/storefront-backend/api/controllers"
	"github.com/dissmar/storefront-backend/api/middleware"
	"github.com/dissmar/storefront-backend/internal/catalog"
	"github.com/dissmar/storefront-backend/internal/identity"
	"github.com/dissmar/storefront-backend/internal/orders"
	"github.com/dissmar/storefront-backend/internal/profile"
	"github.com/dissmar/storefront-backend/internal/session"
	"github.com/dissmar/storefront-backend/pkg/config"
	"github.com/dissmar/storefront-backend/pkg/logger"
	"github.com/dissmar/storefront-backend/pkg/metrics"
)

type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Verifier identity.Verifier
	Hub      *identity.Hub
	Sessions *session.Manager
	Catalog  *catalog.Service
	Factory  *orders.Factory
	History  *orders.History
	Profile  *profile.Service
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
	Pingers  []controllers.Pinger
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers...))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Verifier, logg))

		r.Get("/products", controllers.CatalogList(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Sessions, logg))
			r.Delete("/", controllers.CartClear(deps.Sessions, logg))
			r.Post("/items", controllers.CartItemAdd(deps.Sessions, logg))
			r.Patch("/items/{productID}", controllers.CartItemSetQuantity(deps.Sessions, logg))
			r.Delete("/items/{productID}", controllers.CartItemRemove(deps.Sessions, logg))
		})

		r.Post("/checkout", controllers.Checkout(deps.Sessions, deps.Factory, logg))

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(deps.Sessions, logg))
			r.Post("/", controllers.FavoriteAdd(deps.Sessions, logg))
			r.Post("/toggle", controllers.FavoriteToggle(deps.Sessions, logg))
			r.Delete("/", controllers.FavoritesClear(deps.Sessions, logg))
			r.Delete("/{productID}", controllers.FavoriteRemove(deps.Sessions, logg))
		})

		r.Get("/orders", controllers.OrdersList(deps.History, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(deps.Profile, logg))
			r.Put("/", controllers.ProfileUpdate(deps.Profile, logg))
		})

		r.Post("/session/signout", controllers.SignOut(deps.Hub, logg))
	})

	return r
}
