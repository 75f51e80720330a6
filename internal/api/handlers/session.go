package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"appdash/internal/api/middleware"
	"appdash/internal/dashboard"
	"appdash/internal/logging"
	"appdash/pkg/utils"
)

// EndSessionHandler handles DELETE /api/v1/session
func EndSessionHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(middleware.SessionHeader)
		if id == "" {
			return respondError(c, utils.NewBadRequestError(middleware.SessionHeader+" header is required"))
		}
		if !registry.Delete(id) {
			return respondError(c, utils.NewSessionNotFoundError(id))
		}

		logging.GetGlobalLogger().Info("Dashboard session ended", map[string]interface{}{
			"request_id": requestID(c),
			"session_id": id,
		})
		return c.NoContent(http.StatusNoContent)
	}
}
