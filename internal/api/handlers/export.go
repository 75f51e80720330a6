package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"appdash/internal/config"
	"appdash/internal/dashboard"
	"appdash/internal/exporter"
	"appdash/internal/logging"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

// ExportHandler handles GET /api/v1/export and returns the filtered view as
// a CSV attachment.
func ExportHandler(cfg *config.Config, registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, ctrl := session(c, registry)

		csv, err := ctrl.Export()
		if err != nil {
			return respondError(c, err)
		}

		logging.GetGlobalLogger().Info("CSV export downloaded", map[string]interface{}{
			"request_id": requestID(c),
			"session_id": sessionID,
			"bytes":      len(csv),
		})

		name := utils.GetStringOrDefault(cfg.Export.FileName, exporter.FileName)
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
	}
}

// PublishExportHandler handles POST /api/v1/export/publish
func PublishExportHandler(registry *dashboard.Registry, publisher *exporter.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID, ctrl := session(c, registry)
		view := ctrl.View()

		logging.GetGlobalLogger().Info("Publishing CSV export", map[string]interface{}{
			"request_id": requestID(c),
			"session_id": sessionID,
			"rows":       len(view),
		})

		url, err := publisher.Publish(c.Request().Context(), view)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.PublishResponse{
			Success:   true,
			URL:       url,
			Rows:      len(view),
			RequestID: requestID(c),
		})
	}
}
