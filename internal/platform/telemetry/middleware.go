package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	scope = "github.com/jsamuelsen/verse-service/internal/platform/telemetry"

	// HeaderTraceID echoes the active trace ID to the caller.
	HeaderTraceID = "X-Trace-ID"
)

// TracingMiddleware starts a server span per request.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Middleware records HTTP metrics on the global meter provider and sets
// X-Trace-ID. It must run after TracingMiddleware.
func Middleware() gin.HandlerFunc {
	return middleware(otel.GetMeterProvider())
}

type instruments struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

func newInstruments(mp metric.MeterProvider) (*instruments, error) {
	meter := mp.Meter(scope)

	var (
		in               instruments
		errD, errR, errI error
	)

	in.duration, errD = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent serving a request."), metric.WithUnit("s"))
	in.requests, errR = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Requests served."))
	in.inflight, errI = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests being served."))

	if err := errors.Join(errD, errR, errI); err != nil {
		return nil, err
	}

	return &in, nil
}

func middleware(mp metric.MeterProvider) gin.HandlerFunc {
	in, err := newInstruments(mp)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if in == nil {
			c.Next()
			return
		}

		started := time.Now()
		route := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		}

		in.inflight.Add(ctx, 1, metric.WithAttributes(route...))
		defer in.inflight.Add(ctx, -1, metric.WithAttributes(route...))

		c.Next()

		done := metric.WithAttributes(append(route, attribute.Int("http.status_code", c.Writer.Status()))...)
		in.duration.Record(ctx, time.Since(started).Seconds(), done)
		in.requests.Add(ctx, 1, done)
	}
}
