package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName      string
	version          string
	schedulerEnabled bool
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, schedulerEnabled bool) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, schedulerEnabled: schedulerEnabled}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. The service holds no local stores;
// upstream reachability is observable through sync metrics instead.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ready",
		"scheduler": h.schedulerEnabled,
	})
}
