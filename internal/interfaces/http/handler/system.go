package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]Pinger
}

// NewSystemHandler creates a new SystemHandler. checks maps a component name
// to its health probe; nil entries are skipped.
func NewSystemHandler(checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/system/info", h.GetSystemInfo)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Storefront Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  string            `json:"timestamp"`
}

// Health probes every backing service. A single failing component degrades
// the overall status and turns the response into a 503, so load balancers
// can pull the instance.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	components := make(map[string]string, len(h.checks))
	for name, probe := range h.checks {
		if probe == nil {
			continue
		}
		if err := probe.Ping(ctx); err != nil {
			components[name] = "unavailable"
			status = "degraded"
		} else {
			components[name] = "ok"
		}
	}

	resp := HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
	if status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
