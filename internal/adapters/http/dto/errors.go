// Package dto holds the JSON shapes of the HTTP API and the error envelope.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/platform/logging"
)

// ErrorResponse is the body of every JSON error:
//
//	{"error": {"code": "NOT_FOUND", "message": "...", "details": {...}}, "traceId": "..."}
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail is the error part of the envelope. Message is shown to the
// operator as-is; Details maps field names to problems.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes of the envelope.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "CONFLICT"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	ErrorCodeNotFound:     http.StatusNotFound,
	ErrorCodeConflict:     http.StatusConflict,
	ErrorCodeValidation:   http.StatusBadRequest,
	ErrorCodeUnauthorized: http.StatusUnauthorized,
	ErrorCodeUnavailable:  http.StatusServiceUnavailable,
	ErrorCodeTimeout:      http.StatusGatewayTimeout,
	ErrorCodeTooLarge:     http.StatusRequestEntityTooLarge,
}

// StatusFor returns the HTTP status of an error code; unknown codes are 500.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// NewErrorResponse creates an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// WithTraceID sets the trace ID.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// MapDomainError returns the status and envelope for err. Errors that are
// not domain errors become a generic 500 so internals never leak.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	resp := envelope(err)

	return StatusFor(resp.Error.Code), resp
}

func envelope(err error) *ErrorResponse {
	var tooLarge *http.MaxBytesError

	switch {
	case domain.IsNotFound(err):
		return NewErrorResponse(ErrorCodeNotFound, err.Error())
	case domain.IsConflict(err):
		return NewErrorResponse(ErrorCodeConflict, domain.UserMessage(err))
	case domain.IsValidation(err):
		return invalid(err)
	case domain.IsUnauthorized(err):
		return NewErrorResponse(ErrorCodeUnauthorized, domain.UserMessage(err))
	case domain.IsUnavailable(err):
		return NewErrorResponse(ErrorCodeUnavailable, "service temporarily unavailable")
	case errors.As(err, &tooLarge):
		return NewErrorResponse(ErrorCodeTooLarge, "request body too large")
	case errors.Is(err, context.DeadlineExceeded):
		return NewErrorResponse(ErrorCodeTimeout, "request timed out")
	default:
		return NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// invalid lists the offending field and, for documents, every problem found.
func invalid(err error) *ErrorResponse {
	resp := NewErrorResponse(ErrorCodeValidation, domain.UserMessage(err))

	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Field == "" {
		return resp
	}

	resp.Error.Details = map[string]string{v.Field: v.Message}
	if len(v.Problems) > 0 {
		resp.Error.Details["problems"] = strings.Join(v.Problems, "; ")
	}

	return resp
}

// TraceID returns the ID echoed in error bodies: a "trace_id" set on c, the
// active span's trace, else the request ID header.
func TraceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		id, _ := v.(string)
		return id
	}

	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

// HandleError writes the envelope for err and aborts the chain. Server
// errors are logged with the underlying cause.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)

	if status >= http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Any("error", err),
			slog.Int("status", status),
		)
	}

	c.AbortWithStatusJSON(status, resp.WithTraceID(TraceID(c)))
}
