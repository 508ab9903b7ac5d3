package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/studynotes/studynotes/internal/domain"
	"github.com/studynotes/studynotes/internal/platform/logging"
)

// TraceIDKey is the gin context key under which middleware stores the
// request's trace identifier.
const TraceIDKey = "trace_id"

// GetTraceID extracts the trace identifier for the current request.
// Precedence: gin context value, active OpenTelemetry span, then the
// X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}

		return ""
	}

	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return c.Request.Header.Get("X-Request-ID")
}

// HandleError maps an error to the standard error envelope and writes
// the response. Domain errors carry their own status; binding and
// validation failures map to 400; anything unrecognized becomes a
// generic 500 so internals never leak to clients.
func HandleError(c *gin.Context, err error) {
	status, resp := errorResponse(err)
	resp.WithTraceID(GetTraceID(c))

	if status == http.StatusInternalServerError {
		if logger := logging.FromContext(c.Request.Context()); logger != nil {
			logger.ErrorContext(c.Request.Context(), "internal error",
				"error", err.Error(),
				"trace_id", resp.TraceID,
			)
		}
	}

	c.JSON(status, resp)
}

func errorResponse(err error) (int, *ErrorResponse) {
	switch {
	case errors.Is(err, ErrBinding):
		return http.StatusBadRequest, NewErrorResponse(
			ErrorCodeBadRequest,
			"request body could not be parsed",
		)

	case errors.Is(err, ErrValidation) && IsValidationError(err):
		return http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			ValidationErrors(err),
		)

	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(
			ErrorCodeNotFound,
			err.Error(),
		)

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(
			ErrorCodeUnavailable,
			err.Error(),
		)

	default:
		return http.StatusInternalServerError, NewErrorResponse(
			ErrorCodeInternal,
			"an internal error occurred",
		)
	}
}
