package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studynotes/studynotes/internal/adapters/http/handlers"
	"github.com/studynotes/studynotes/internal/adapters/http/middleware"
	"github.com/studynotes/studynotes/internal/platform/config"
	"github.com/studynotes/studynotes/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// SubjectHandler handles subject CRUD endpoints.
	SubjectHandler *handlers.SubjectHandler

	// NoteHandler handles note CRUD and search endpoints.
	NoteHandler *handlers.NoteHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (applied to the API group)
//
// Route groups:
//   - /-/ (internal): probe endpoints, no timeout
//   - /api/ (public API): subjects, notes, and the public health check
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Probe endpoints skip the timeout so slow dependencies cannot make
	// liveness lie.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api")
	if cfg.Timeout > 0 {
		api.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(api, cfg)
}

// setupAPIRoutes registers the business API routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.HealthHandler != nil {
		rg.GET("/health", cfg.HealthHandler.APIHealth)
	}

	if cfg.SubjectHandler != nil {
		cfg.SubjectHandler.RegisterSubjectRoutes(rg)
	}

	if cfg.NoteHandler != nil {
		cfg.NoteHandler.RegisterNoteRoutes(rg)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	subjectHandler *handlers.SubjectHandler,
	noteHandler *handlers.NoteHandler,
) RouterConfig {
	return RouterConfig{
		Logger:         logger,
		AppConfig:      appCfg,
		HealthHandler:  healthHandler,
		SubjectHandler: subjectHandler,
		NoteHandler:    noteHandler,
		Timeout:        DefaultRequestTimeout,
	}
}
