// Package handlers implements the viewer, admin and operational endpoints.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/verse-service/internal/ports"
)

// BuildInfo describes the running binary. Values come from ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills in the Go version.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// HealthHandler serves the /-/ probes.
type HealthHandler struct {
	registry ports.HealthRegistry
	build    BuildInfo
	started  time.Time
}

// NewHealthHandler creates the handler. Uptime counts from this call.
func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{registry: registry, build: build, started: time.Now()}
}

type livenessResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type readinessResponse struct {
	Status  ports.HealthStatus            `json:"status"`
	Version string                        `json:"version,omitempty"`
	Checks  map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Liveness answers 200 while the process runs. It checks no dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}

// Readiness runs the store and image checks. Only an unhealthy result takes
// the instance out of rotation; degraded still answers 200.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{Status: result.Status, Version: h.build.Version, Checks: result.Checks})
}

// Build serves the ldflags build information.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}

// Register mounts live, ready, build and the Prometheus metrics (including
// the verse_* counters) under /-/.
func (h *HealthHandler) Register(engine *gin.Engine) {
	ops := engine.Group("/-")
	ops.GET("/live", h.Liveness)
	ops.GET("/ready", h.Readiness)
	ops.GET("/build", h.Build)
	ops.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
