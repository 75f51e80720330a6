package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"appdash/internal/api/handlers"
	"appdash/internal/api/middleware"
	"appdash/internal/config"
	"appdash/internal/dashboard"
	"appdash/internal/exporter"
	"appdash/internal/grpc/interceptors"
)

// Dependencies are the services the routes serve
type Dependencies struct {
	Registry  *dashboard.Registry
	Publisher *exporter.Publisher
	Checks    map[string]handlers.Check
	// GRPCMetrics is optional; its totals appear in /health
	GRPCMetrics *interceptors.MetricsCollector
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	// Global middleware
	e.Use(middleware.RequestValidation(cfg.Dashboard.MaxUploadBytes))
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler(deps.Registry, grpcTotals(deps.GRPCMetrics)))
		health.GET("/ready", handlers.ReadinessHandler(deps.Checks))
		health.GET("/live", handlers.LivenessHandler)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		// Loads touch the source and the parser, so they are throttled
		datasets := v1.Group("/datasets", middleware.RateLimit(cfg))
		{
			datasets.POST("/load", handlers.LoadDatasetHandler(deps.Registry))
			datasets.POST("/upload", handlers.UploadDatasetHandler(cfg, deps.Registry))
		}

		v1.DELETE("/session", handlers.EndSessionHandler(deps.Registry))

		dash := v1.Group("/dashboard")
		{
			dash.GET("/kpis", handlers.KPIsHandler(deps.Registry))
			dash.GET("/charts", handlers.ChartsHandler(deps.Registry))
		}

		tbl := v1.Group("/table")
		{
			tbl.GET("", handlers.GetTableHandler(deps.Registry))
			tbl.PUT("/filters", handlers.SetFiltersHandler(deps.Registry))
			tbl.POST("/sort", handlers.ToggleSortHandler(deps.Registry))
			tbl.POST("/page/next", handlers.NextPageHandler(deps.Registry))
			tbl.POST("/page/prev", handlers.PrevPageHandler(deps.Registry))
			tbl.PUT("/page", handlers.SetPageHandler(deps.Registry))
		}

		export := v1.Group("/export")
		{
			export.GET("", handlers.ExportHandler(cfg, deps.Registry))
			export.POST("/publish", handlers.PublishExportHandler(deps.Registry, deps.Publisher), middleware.RateLimit(cfg))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "appdash",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}

// grpcTotals keeps a nil collector from becoming a non-nil interface
func grpcTotals(m *interceptors.MetricsCollector) handlers.CallTotals {
	if m == nil {
		return nil
	}
	return m
}
