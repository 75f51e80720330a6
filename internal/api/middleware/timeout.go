package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware configuration. Uploads are skipped
// since their duration depends on the client.
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/v1/datasets/upload"
		},
		ErrorMessage: `{"error":"timeout","message":"Request timed out"}`,
		Timeout:      timeout,
	})
}
