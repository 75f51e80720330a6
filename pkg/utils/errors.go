package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    "invalid_request",
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    "internal",
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    "validation_failed",
		Message: "Validation failed",
		Detail:  detail,
	}
}

// Dataset load errors
func NewInvalidFormatError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    "invalid_format",
		Message: "Dataset has an invalid format",
		Detail:  detail,
	}
}

func NewFetchFailureError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Kind:    "fetch_failure",
		Message: "Could not load data",
		Detail:  detail,
	}
}

func NewNoExtractedRecordsError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "no_extracted_records",
		Message: "No applications found in the document",
		Detail:  detail,
	}
}

// NewSupersededError is returned when a newer load finished first
func NewSupersededError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Kind:    "superseded",
		Message: "Load superseded by a newer request",
		Detail:  detail,
	}
}

// NewEmptyExportError is a notice rather than a failure: nothing was exported
func NewEmptyExportError() *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Kind:    "empty_export",
		Message: "No data to export",
	}
}

// Export publishing errors
func NewStorageUnavailableError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Kind:    "storage_configuration",
		Message: "Export storage is not configured",
		Detail:  detail,
	}
}

func NewUploadFailedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Kind:    "upload_failed",
		Message: "Failed to upload export",
		Detail:  detail,
	}
}

func NewRequestTooLargeError(limit int64) *CustomError {
	return &CustomError{
		Code:    http.StatusRequestEntityTooLarge,
		Kind:    "request_too_large",
		Message: "Request body too large",
		Detail:  fmt.Sprintf("limit is %d bytes", limit),
	}
}

func NewSessionNotFoundError(id string) *CustomError {
	return &CustomError{
		Code:    http.StatusNotFound,
		Kind:    "session_not_found",
		Message: "Session not found",
		Detail:  id,
	}
}
