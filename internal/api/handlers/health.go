package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"appdash/internal/dashboard"
	"appdash/internal/logging"
	"appdash/pkg/models"
)

// Version is reported by the health endpoints
var Version = "1.0.0"

var startTime = time.Now()

// Check tests one dependency for readiness
type Check func(ctx context.Context) error

// CallTotals reports request and error counts of the gRPC listener
type CallTotals interface {
	Totals() (requests, errors int64)
}

// HealthHandler handles health check requests. grpcCalls may be nil.
func HealthHandler(registry *dashboard.Registry, grpcCalls CallTotals) echo.HandlerFunc {
	return func(c echo.Context) error {
		logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{"request_id": requestID(c)})

		checks := map[string]string{
			"api":      "ok",
			"sessions": strconv.Itoa(registry.Len()),
		}
		if grpcCalls != nil {
			requests, errs := grpcCalls.Totals()
			checks["grpc_requests"] = strconv.FormatInt(requests, 10)
			checks["grpc_errors"] = strconv.FormatInt(errs, 10)
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// ReadinessHandler runs every check and reports 503 when any fails
func ReadinessHandler(checks map[string]Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status, code := "ready", http.StatusOK
		results := map[string]string{"api": "ok"}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("Readiness check failed", map[string]interface{}{
					"request_id": requestID(c),
					"check":      name,
					"error":      err.Error(),
				})
				results[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    results,
		})
	}
}

// LivenessHandler handles liveness requests
func LivenessHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Liveness check requested", map[string]interface{}{"request_id": requestID(c)})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}
