package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/verse-service/internal/platform/logging"
)

// operationalPrefix marks probe and metrics routes, which are never logged.
const operationalPrefix = "/-/"

// ContextLogger puts logger on the request context. RequestID and
// CorrelationID extend it, so it must come first.
func ContextLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

// Logging writes one access line per request: INFO below 400, WARN for
// client errors, ERROR from 500. Paths under /-/ and skipPaths are quiet.
func Logging(skipPaths ...string) gin.HandlerFunc {
	quiet := func(path string) bool {
		return strings.HasPrefix(path, operationalPrefix) || slices.Contains(skipPaths, path)
	}

	return func(c *gin.Context) {
		if quiet(c.Request.URL.Path) {
			c.Next()
			return
		}

		started := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.RequestURI()),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(started)),
			slog.Int("bytes", max(c.Writer.Size(), 0)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		ctx := c.Request.Context()
		logging.FromContext(ctx).LogAttrs(ctx, accessLevel(status), "request completed", attrs...)
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
