package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loyalty-bridge/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Coupons *handlers.CouponsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	coupons := app.Group("/coupons")
	coupons.Get("/active", cfg.Coupons.Active)
	coupons.Post("/:code/redeem", cfg.Coupons.Redeem)
	coupons.Post("/:code/unredeem", cfg.Coupons.Unredeem)
}
