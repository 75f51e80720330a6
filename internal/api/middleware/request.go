package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"appdash/internal/logging"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

// RequestIDKey is the echo context key of the request id
const RequestIDKey = "request_id"

// RequestValidation assigns a request id and rejects oversized bodies
func RequestValidation(maxBodyBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if maxBodyBytes > 0 && c.Request().ContentLength > maxBodyBytes {
				ce := utils.NewRequestTooLargeError(maxBodyBytes)
				return c.JSON(ce.Code, models.ErrorResponse{
					Error:     ce.Kind,
					Message:   ce.Message,
					Detail:    ce.Detail,
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			return next(c)
		}
	}
}

// RequestLogger logs one line per request through the global logger
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := map[string]interface{}{
				"request_id": c.Get(RequestIDKey),
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"duration":   utils.FormatDuration(time.Since(start)),
			}
			if session := c.Request().Header.Get(SessionHeader); session != "" {
				fields["session_id"] = session
			}

			logger := logging.GetGlobalLogger()
			if c.Response().Status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields)
			} else {
				logger.Debug("Request handled", fields)
			}
			return nil
		}
	}
}
