package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// Error codes returned in ErrorInfo.Code
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInferenceError     = "INFERENCE_ERROR"
	CodeModelInconsistency = "MODEL_INCONSISTENCY"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// Only invalid input echoes the error text back; it describes the caller's request.
func MapUsecaseError(err error) ErrorResponse {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return ErrorResponse{
			StatusCode: http.StatusBadRequest,
			Code:       CodeInvalidInput,
			Message:    err.Error(),
		}
	case errors.Is(err, service.ErrModelInconsistency):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeModelInconsistency,
			Message:    "model returned an inconsistent prediction",
		}
	case errors.Is(err, service.ErrInference):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInferenceError,
			Message:    "inference failed",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInternalError,
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError handles a usecase error by sending an appropriate HTTP response.
func HandleUsecaseError(c *gin.Context, err error) {
	errResp := MapUsecaseError(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}
