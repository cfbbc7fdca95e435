package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	// PDF responses run to hundreds of kilobytes
	responseSizeBuckets = []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000, 5000000}
)

type httpInstruments struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	size     metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	requests, err1 := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("HTTP requests by route and status"), metric.WithUnit("{request}"))
	latency, err2 := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...))
	size, err3 := meter.Float64Histogram("http_server_response_size_bytes",
		metric.WithDescription("HTTP response body size"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(responseSizeBuckets...))
	inFlight, err4 := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"), metric.WithUnit("{request}"))
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		return nil, err
	}
	return &httpInstruments{requests: requests, latency: latency, size: size, inFlight: inFlight}, nil
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests per route pattern. A nil meter disables the middleware.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	inst, err := newHTTPInstruments(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		inst.inFlight.Add(ctx, 1)
		c.Next()
		inst.inFlight.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		byRoute := metric.WithAttributes(
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		)

		attrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
			telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
		}
		if tenantID := GetJWTTenantID(c); tenantID != "" {
			attrs = append(attrs, telemetry.AttrTenantID.String(tenantID))
		}
		inst.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		inst.latency.Record(ctx, time.Since(start).Seconds(), byRoute)
		if n := c.Writer.Size(); n > 0 {
			inst.size.Record(ctx, float64(n), byRoute)
		}
	}
}
