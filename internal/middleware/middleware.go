package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"cpu-burn-lab/internal/log"
	"cpu-burn-lab/internal/logfields"
	"cpu-burn-lab/internal/observability"
)

// Instrument wraps a handler with basic observability:
// - in-flight tracking
// - request counter
// - latency histogram
// - a request-scoped logger and span
func Instrument(m *observability.Metrics, endpoint string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Track in-flight requests per endpoint.
		m.IncInflight(endpoint)
		defer m.DecInflight(endpoint)

		// No-op if traces are disabled.
		ctx, span := observability.StartSpan(ctx, "HTTP "+endpoint)
		defer span.End()

		ctx = log.UpdateContext(ctx, logrus.Fields{logfields.Endpoint: endpoint})
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		next(c)
		elapsed := time.Since(start)

		status := strconv.Itoa(c.Writer.Status())

		// Attach endpoint and status labels to metrics.
		attrs := metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		)

		m.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.HTTPRequestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
	}
}

// Logger logs every request once it has been served.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.G(c.Request.Context()).WithFields(logrus.Fields{
			logfields.Method:  c.Request.Method,
			logfields.Path:    c.Request.URL.Path,
			logfields.Status:  c.Writer.Status(),
			logfields.Latency: time.Since(start),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("request served")
			return
		}
		entry.Debug("request served")
	}
}
