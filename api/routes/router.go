package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storemock-backend/api/controllers"
	checkoutcontrollers "github.com/angelmondragon/storemock-backend/api/controllers/checkout"
	ordercontrollers "github.com/angelmondragon/storemock-backend/api/controllers/orders"
	"github.com/angelmondragon/storemock-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/storemock-backend/internal/checkout"
	ordersvc "github.com/angelmondragon/storemock-backend/internal/orders"
	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/db"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/storemock-backend/pkg/redis"
)

// NewRouter wires the HTTP surface: checkout sessions, orders, shipment
// simulation, health probes and metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database db.Pinger,
	redisClient *pkgredis.Client,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
	metricsHandler http.Handler,
) http.Handler {
	// The redis client satisfies IdempotencyStore and Pinger; a nil client
	// disables replay and the cache readiness check without disabling routes.
	var idempotencyStore pkgredis.IdempotencyStore
	var cachePinger pkgredis.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		cachePinger = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Agent(),
		middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, cachePinger, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/checkout-sessions", func(r chi.Router) {
		r.Post("/", checkoutcontrollers.Create(checkoutService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", checkoutcontrollers.Fetch(checkoutService, logg))
			r.Put("/", checkoutcontrollers.Update(checkoutService, logg))
			r.Post("/line-items", checkoutcontrollers.AddLineItem(checkoutService, logg))
			r.Patch("/line-items/{itemID}", checkoutcontrollers.UpdateLineItem(checkoutService, logg))
			r.Delete("/line-items/{itemID}", checkoutcontrollers.RemoveLineItem(checkoutService, logg))
			r.Post("/discounts", checkoutcontrollers.ApplyDiscount(checkoutService, logg))
			r.Post("/fulfillment", checkoutcontrollers.SetFulfillment(checkoutService, logg))
			r.Post("/payment", checkoutcontrollers.SetPayment(checkoutService, logg))
			r.Post("/complete", checkoutcontrollers.Complete(checkoutService, logg))
			r.Post("/cancel", checkoutcontrollers.Cancel(checkoutService, logg))
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", ordercontrollers.List(orderService, logg))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ordercontrollers.Fetch(orderService, logg))
			r.Put("/", ordercontrollers.Update(orderService, logg))
			r.Post("/cancel", ordercontrollers.Cancel(orderService, logg))
		})
	})

	r.Post("/testing/simulate-shipping/{id}", ordercontrollers.SimulateShipping(orderService, cfg.Simulation, logg))

	return r
}
