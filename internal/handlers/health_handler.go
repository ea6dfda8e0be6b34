package handlers

import (
	"context"
	"net/http"
	"time"

	"gbtravel/internal/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	appName     string
	version     string
	environment string
	checks      map[string]Pinger
}

func NewHealthHandler(appName, version, environment string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{appName: appName, version: version, environment: environment, checks: checks}
}

// Health reports 503 when any dependency fails its ping
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	services := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			services[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		services[name] = "ok"
	}

	message := h.appName + " API is running"
	if status != http.StatusOK {
		message = h.appName + " API is degraded"
	}

	c.JSON(status, gin.H{
		"success":     status == http.StatusOK,
		"message":     message,
		"timestamp":   time.Now().UTC(),
		"environment": h.environment,
		"services":    services,
	})
}

// Index lists the API surface
func (h *HealthHandler) Index(c *gin.Context) {
	utils.SuccessResponse(c, h.appName+" API", gin.H{
		"version": h.version,
		"endpoints": gin.H{
			"auth":         "/api/auth",
			"users":        "/api/users",
			"destinations": "/api/destinations",
			"trips":        "/api/trips",
			"bookings":     "/api/bookings",
			"reviews":      "/api/reviews",
			"payments":     "/api/payments",
			"inquiries":    "/api/inquiries",
		},
	})
}
