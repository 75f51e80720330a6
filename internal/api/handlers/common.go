package handlers

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"appdash/internal/api/middleware"
	"appdash/internal/api/validation"
	"appdash/internal/dashboard"
	"appdash/internal/exporter"
	"appdash/internal/ingest"
	"appdash/internal/logging"
	"appdash/internal/source"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

var requestValidator = validator.New()

func init() {
	validation.RegisterDashboardValidators(requestValidator)
}

// requestID returns the id assigned by the request middleware
func requestID(c echo.Context) string {
	if id, ok := c.Get(middleware.RequestIDKey).(string); ok && id != "" {
		return id
	}
	id := utils.GenerateRequestID()
	c.Set(middleware.RequestIDKey, id)
	return id
}

// session resolves the caller's dashboard controller from the session header,
// starting a session when the header is absent or unknown. New sessions load
// the default dataset; a failure there leaves an empty, usable dashboard.
func session(c echo.Context, registry *dashboard.Registry) (string, *dashboard.Controller) {
	id, ctrl, created := registry.GetOrCreate(c.Request().Header.Get(middleware.SessionHeader))
	c.Response().Header().Set(middleware.SessionHeader, id)

	if created {
		if err := ctrl.Init(c.Request().Context()); err != nil {
			logging.GetGlobalLogger().Warn("Default dataset unavailable for new session", map[string]interface{}{
				"request_id": requestID(c),
				"session_id": id,
				"error":      err.Error(),
			})
		}
	}
	return id, ctrl
}

// mapError converts producer sentinels into API errors
func mapError(err error) *utils.CustomError {
	var ce *utils.CustomError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, ingest.ErrInvalidFormat):
		return utils.NewInvalidFormatError(err.Error())
	case errors.Is(err, ingest.ErrNoExtractedRecords):
		return utils.NewNoExtractedRecordsError(err.Error())
	case errors.Is(err, source.ErrFetchFailure):
		return utils.NewFetchFailureError(err.Error())
	case errors.Is(err, exporter.ErrEmptyExport):
		return utils.NewEmptyExportError()
	case errors.Is(err, dashboard.ErrSuperseded):
		return utils.NewSupersededError(err.Error())
	case errors.Is(err, exporter.ErrStorageConfig):
		return utils.NewStorageUnavailableError(err.Error())
	case errors.Is(err, exporter.ErrUpload):
		return utils.NewUploadFailedError(err.Error())
	default:
		return utils.NewInternalServerError(err.Error())
	}
}

// respondError writes err as an ErrorResponse with its mapped status
func respondError(c echo.Context, err error) error {
	ce := mapError(err)
	return c.JSON(ce.Code, models.ErrorResponse{
		Error:     ce.Kind,
		Message:   ce.Message,
		Detail:    ce.Detail,
		RequestID: requestID(c),
		Timestamp: time.Now(),
	})
}

// bindAndValidate binds the request into req and runs struct validation
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return utils.NewBadRequestError("Invalid request body: " + err.Error())
	}
	if err := requestValidator.Struct(req); err != nil {
		return utils.NewValidationError(err.Error())
	}
	return nil
}
