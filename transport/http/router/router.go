package router

import (
	"rentgear/config"
	"rentgear/internal/handlers/booking"
	"rentgear/internal/handlers/equipment"
	"rentgear/internal/handlers/payout"
	"rentgear/internal/handlers/webhook"
	"rentgear/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type DomainHandlers struct {
	Webhook   webhook.Handler
	Booking   booking.Handler
	Payout    payout.Handler
	Equipment equipment.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	Auth           middleware.AuthRole
	Config         *config.Config
}

// SetupRoutes mounts the API. Webhooks sit outside bearer auth: the
// processor authenticates through the signed payload, not a token.
func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(r.App.Tracing)
	router.Use(r.App.RateLimit())

	if r.Config.App.CORS.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   r.Config.App.CORS.AllowedOrigins,
			AllowedMethods:   r.Config.App.CORS.AllowedMethods,
			AllowedHeaders:   r.Config.App.CORS.AllowedHeaders,
			AllowCredentials: r.Config.App.CORS.AllowCredentials,
			MaxAge:           r.Config.App.CORS.MaxAgeSeconds,
		}))
	}

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Webhook.Router(routerGroup)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(r.Auth.APIKey)
			protected.Use(r.Auth.Auth)
			protected.Use(r.Auth.RBAC)

			r.DomainHandlers.Booking.Router(protected)
			r.DomainHandlers.Payout.Router(protected)
			r.DomainHandlers.Equipment.Router(protected)
		})
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, auth middleware.AuthRole, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		Auth:           auth,
		Config:         cfg,
	}
}
