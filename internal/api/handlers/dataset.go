package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"appdash/internal/config"
	"appdash/internal/dashboard"
	"appdash/internal/logging"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

// LoadDatasetHandler handles POST /api/v1/datasets/load
func LoadDatasetHandler(registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		sessionID, ctrl := session(c, registry)

		var req models.LoadDatasetRequest
		if err := bindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}

		logger.Info("Loading dataset", map[string]interface{}{
			"request_id": requestID(c),
			"session_id": sessionID,
			"dataset":    req.Name,
		})

		ds, err := ctrl.Load(c.Request().Context(), req.Name)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.LoadResponse{
			Success:   true,
			Source:    req.Name,
			Total:     ds.Len(),
			Meta:      ds.Meta,
			RequestID: requestID(c),
		})
	}
}

// UploadDatasetHandler handles POST /api/v1/datasets/upload. The body is the
// raw document, or a multipart form with a "file" field.
func UploadDatasetHandler(cfg *config.Config, registry *dashboard.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		sessionID, ctrl := session(c, registry)
		limit := cfg.Dashboard.MaxUploadBytes

		raw, filename, err := readUpload(c, limit)
		if err != nil {
			return respondError(c, err)
		}

		format := uploadFormat(c, filename)
		logger.Info("Processing dataset upload", map[string]interface{}{
			"request_id": requestID(c),
			"session_id": sessionID,
			"format":     string(format),
			"bytes":      len(raw),
		})

		ds, err := ctrl.LoadBytes(c.Request().Context(), raw, format)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(http.StatusOK, models.LoadResponse{
			Success:   true,
			Source:    utils.GetStringOrDefault(filename, "upload"),
			Total:     ds.Len(),
			Meta:      ds.Meta,
			RequestID: requestID(c),
		})
	}
}

func readUpload(c echo.Context, limit int64) ([]byte, string, error) {
	var (
		body     io.Reader = c.Request().Body
		filename string
	)

	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if mediaType == echo.MIMEMultipartForm {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", utils.NewBadRequestError("Missing upload file: " + err.Error())
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", utils.NewBadRequestError("Unreadable upload file: " + err.Error())
		}
		defer f.Close()
		body, filename = f, fh.Filename
	}

	if limit <= 0 {
		limit = 10 << 20
	}
	raw, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, "", utils.NewBadRequestError("Failed to read upload: " + err.Error())
	}
	if int64(len(raw)) > limit {
		return nil, "", utils.NewRequestTooLargeError(limit)
	}
	return raw, filename, nil
}

// uploadFormat picks the format from the query, then the file extension, then
// the content type.
func uploadFormat(c echo.Context, filename string) dashboard.Format {
	if f := strings.ToLower(c.QueryParam("format")); f != "" {
		return dashboard.Format(f)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return dashboard.FormatHTML
	case ".json":
		return dashboard.FormatJSON
	}
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMETextHTML) {
		return dashboard.FormatHTML
	}
	return dashboard.FormatJSON
}
