package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"appdash/internal/dashboard"
	"appdash/pkg/utils"
)

// maxTopN bounds the top query parameter of the charts endpoint
const maxTopN = 50

// KPIsHandler handles GET /api/v1/dashboard/kpis
func KPIsHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)
		return c.JSON(http.StatusOK, ctrl.KPIs(c.QueryParam("location")))
	}
}

// ChartsHandler handles GET /api/v1/dashboard/charts
func ChartsHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, ctrl := session(c, registry)

		top := 0
		if raw := c.QueryParam("top"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxTopN {
				return respondError(c, utils.NewValidationError("top must be an integer between 1 and 50"))
			}
			top = n
		}
		return c.JSON(http.StatusOK, ctrl.Charts(top))
	}
}
