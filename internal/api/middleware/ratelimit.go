package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"appdash/internal/config"
	"appdash/pkg/models"
)

// RateLimit throttles per client IP. Session ids are not used as the key
// because any client can start a new session.
func RateLimit(cfg *config.Config) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
		Burst:     cfg.RateLimit.Burst,
		ExpiresIn: cfg.RateLimit.ExpiresIn,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, rateLimitBody(c, "rate_limit_identifier", err.Error()))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, rateLimitBody(c, "rate_limited", "Too many requests, slow down"))
		},
	})
}

func rateLimitBody(c echo.Context, kind, message string) models.ErrorResponse {
	requestID, _ := c.Get(RequestIDKey).(string)
	return models.ErrorResponse{
		Error:     kind,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}
