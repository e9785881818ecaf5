package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/web"
	"github.com/jsamuelsen/verse-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default deadline for API requests.
const DefaultRequestTimeout = 30 * time.Second

// importPath is exempt from the API deadline; uploads can be slow.
const importPath = "/api/v1/admin/import"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is attached to every request context.
	Logger *slog.Logger

	// ServiceName names the server spans. Tracing is off when empty.
	ServiceName string

	HealthHandler *handlers.HealthHandler
	ViewerHandler *handlers.ViewerHandler
	AdminHandler  *handlers.AdminHandler
	AdminPages    *handlers.AdminPages

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware runs in this order:
//  1. Recovery
//  2. Context logger
//  3. Request ID and correlation ID
//  4. Tracing and HTTP metrics
//  5. Request logging (skips /-/ and the favicon)
//
// Route groups:
//   - /-/: health, build info and metrics
//   - /: the viewer page
//   - /admin: the admin panel
//   - /api/v1: viewer and admin JSON API, with a deadline
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.ServiceName != "" {
		engine.Use(telemetry.TracingMiddleware(cfg.ServiceName))
	}

	engine.Use(
		telemetry.Middleware(),
		middleware.Logging("/favicon.ico"),
	)

	engine.SetHTMLTemplate(web.MustTemplates())

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Register(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout, importPath))
	}

	if cfg.ViewerHandler != nil {
		cfg.ViewerHandler.RegisterViewerRoutes(engine, apiV1)
	}

	if cfg.AdminHandler != nil {
		cfg.AdminHandler.RegisterAdminRoutes(apiV1)
	}

	if cfg.AdminPages != nil {
		cfg.AdminPages.RegisterPageRoutes(engine)
	}
}

// SetupMinimalRouter sets up a router with just the health endpoints.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.Register(engine)
	}
}
