// Package middleware holds the gin middleware of the HTTP adapter.
package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/verse-service/internal/platform/logging"
)

const (
	// HeaderRequestID carries the per-request ID.
	HeaderRequestID = "X-Request-ID"

	// HeaderCorrelationID carries an ID shared by every request of one
	// operator action, e.g. a page load and the API calls it makes.
	HeaderCorrelationID = "X-Correlation-ID"

	// maxIDLength bounds IDs accepted from clients; longer ones are replaced.
	maxIDLength = 128
)

type idKey string

// traceID is one ID propagated from a request header into the response, the
// request context and the context logger.
type traceID struct {
	header string
	key    idKey
}

var (
	requestID     = traceID{header: HeaderRequestID, key: "request_id"}
	correlationID = traceID{header: HeaderCorrelationID, key: "correlation_id"}
)

// RequestID reuses the caller's X-Request-ID or generates a UUID.
func RequestID() gin.HandlerFunc { return requestID.middleware() }

// CorrelationID works like RequestID for X-Correlation-ID.
func CorrelationID() gin.HandlerFunc { return correlationID.middleware() }

// RequestIDFromContext returns the request ID, or "". The image client
// forwards it downstream.
func RequestIDFromContext(ctx context.Context) string { return requestID.from(ctx) }

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string { return correlationID.from(ctx) }

// ContextWithRequestID stores a request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestID.key, id)
}

// ContextWithCorrelationID stores a correlation ID in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationID.key, id)
}

func (t traceID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(t.header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Header(t.header, id)

		ctx := logging.With(c.Request.Context(), slog.String(string(t.key), id))
		ctx = context.WithValue(ctx, t.key, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func (t traceID) from(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(t.key).(string)

	return id
}

// acceptableID allows non-empty printable ASCII up to maxIDLength, so a
// client ID can never break a log line.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := range len(id) {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}

	return true
}
