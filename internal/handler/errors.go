package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/ova-health/backend/internal/ai"
	"github.com/vcscsvcscs/ova-health/backend/internal/service"
	"github.com/vcscsvcscs/ova-health/backend/pkg/api"
	"go.uber.org/zap"
)

// Error codes returned in api.ErrorResponse
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeSlotBusy      = "SLOT_BUSY"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeTransport     = "TRANSPORT_ERROR"
	CodeProvider      = "PROVIDER_ERROR"
	CodeSchema        = "SCHEMA_VIOLATION"
	CodeInternal      = "INTERNAL_ERROR"
)

// errorResponse maps a service or invoker error to its HTTP status and body
func errorResponse(err error, message string) (int, api.ErrorResponse) {
	var (
		configErr    *ai.ConfigurationError
		transportErr *ai.TransportError
		providerErr  *ai.ProviderError
	)

	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, service.ErrSlotBusy):
		status, code = http.StatusConflict, CodeSlotBusy
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrInvalidActivityLevel),
		errors.Is(err, service.ErrInvalidAssessment),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidHealthEntry):
		status, code = http.StatusBadRequest, CodeValidation
	case errors.As(err, &configErr):
		status, code = http.StatusServiceUnavailable, CodeConfiguration
	case errors.As(err, &transportErr):
		status, code = http.StatusBadGateway, CodeTransport
		if transportErr.Timeout() {
			status = http.StatusGatewayTimeout
		}
	case errors.As(err, &providerErr):
		status, code = http.StatusBadGateway, CodeProvider
	case errors.Is(err, service.ErrSchemaViolation):
		status, code = http.StatusBadGateway, CodeSchema
	}

	return status, api.ErrorResponse{
		Code:    code,
		Message: message,
		Details: stringPtr(err.Error()),
	}
}

// respondError writes the mapped error response; server side failures are
// attached to the context for ErrorLoggingMiddleware
func (h *CompanionHandler) respondError(c *gin.Context, err error, message string) {
	status, body := errorResponse(err, message)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		h.logger.Warn(message, zap.Error(err), zap.String("code", body.Code))
	}
	c.JSON(status, body)
}

func (h *CompanionHandler) respondBindError(c *gin.Context, err error) {
	h.logger.Error("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Code:    CodeValidation,
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}

// describeFailure converts a non-fatal failure into an embedded error body
func describeFailure(err error, message string) *api.ErrorResponse {
	if err == nil {
		return nil
	}
	_, body := errorResponse(err, message)
	return &body
}
