package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dentavia-mx/dentavia-backend/api/controllers"
	"github.com/dentavia-mx/dentavia-backend/api/middleware"
	"github.com/dentavia-mx/dentavia-backend/internal/checkout"
	"github.com/dentavia-mx/dentavia-backend/internal/loyalty"
	"github.com/dentavia-mx/dentavia-backend/internal/orders"
	"github.com/dentavia-mx/dentavia-backend/internal/products"
	"github.com/dentavia-mx/dentavia-backend/pkg/config"
	"github.com/dentavia-mx/dentavia-backend/pkg/db"
	"github.com/dentavia-mx/dentavia-backend/pkg/logger"
	"github.com/dentavia-mx/dentavia-backend/pkg/redis"
)

// Dependencies carries everything the router needs to wire handlers.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       redis.Pinger
	Idempotency redis.IdempotencyStore
	Registry    *prometheus.Registry

	Products products.Service
	Orders   orders.Service
	Checkout checkout.Service
	Loyalty  loyalty.Service
}

// New assembles the HTTP router.
func New(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.CORS())
	if deps.Idempotency != nil {
		r.Use(middleware.Idempotency(deps.Idempotency, deps.Logger))
	}

	r.Get("/health/live", controllers.Live())
	r.Get("/health/ready", controllers.Ready(deps.DB, deps.Redis, deps.Logger))

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, deps.Logger))
			r.Get("/{productID}", controllers.GetProduct(deps.Products, deps.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, deps.Logger))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, deps.Logger))
			r.Get("/{orderID}/shipping-address", controllers.GetShippingAddress(deps.Orders, deps.Logger))
			r.Put("/{orderID}/shipping-address", controllers.PutShippingAddress(deps.Orders, deps.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.QuoteShipping(deps.Checkout, deps.Logger))
			r.Post("/pay", controllers.Pay(deps.Checkout, deps.Logger))
		})

		r.Get("/loyalty/balance", controllers.LoyaltyBalance(deps.Loyalty, deps.Logger))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.Config.JWT, deps.Logger))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(deps.Products, deps.Logger))
				r.Patch("/{productID}/shipping", controllers.UpdateProductShipping(deps.Products, deps.Logger))
				r.Delete("/{productID}", controllers.DeactivateProduct(deps.Products, deps.Logger))
			})

			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Post("/quote", controllers.AdminQuoteRates(deps.Checkout, deps.Logger))
				r.Post("/select-rate", controllers.AdminSelectRate(deps.Orders, deps.Logger))
				r.Post("/label", controllers.AdminCreateLabel(deps.Checkout, deps.Logger))
			})
		})
	})

	return r
}
