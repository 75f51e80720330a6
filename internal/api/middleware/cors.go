package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SessionHeader carries the dashboard session id
const SessionHeader = "X-Session-ID"

// CORSConfig returns CORS middleware configuration
func CORSConfig() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, SessionHeader},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID, SessionHeader},
		AllowCredentials: false,
		MaxAge:           86400, // 24 hours
	})
}
