package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrTenantID      = attribute.Key("tenant_id")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrOutcome       = attribute.Key("outcome")
	AttrErrorCode     = attribute.Key("error_code")
	AttrAssetKind     = attribute.Key("asset_kind")
	AttrLookupResult  = attribute.Key("lookup_result")
	AttrStorageDriver = attribute.Key("storage_driver")

	AttrHTTPMethod     = attribute.Key("http_method")
	AttrHTTPRoute      = attribute.Key("http_route")
	AttrHTTPStatusCode = attribute.Key("http_status_code")
)

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// renders include remote image fetches, hence the long tail
	renderDurationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	documentSizeBuckets   = []float64{16 << 10, 64 << 10, 128 << 10, 256 << 10, 512 << 10, 1 << 20, 4 << 20}
)

// RenderMetrics records voucher rendering, storage and verification activity.
// A nil *RenderMetrics records nothing.
type RenderMetrics struct {
	renders      metric.Int64Counter
	duration     metric.Float64Histogram
	size         metric.Float64Histogram
	assetSkipped metric.Int64Counter
	lookups      metric.Int64Counter
	uploads      metric.Int64Counter
}

// NewRenderMetrics registers the voucher instruments on meter.
func NewRenderMetrics(meter metric.Meter) (*RenderMetrics, error) {
	var m RenderMetrics
	var err error
	counter := func(name, desc, unit string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			err = fmt.Errorf("failed to create counter %s: %w", name, err)
		}
		return c
	}
	histogram := func(name, desc, unit string, bounds []float64) metric.Float64Histogram {
		if err != nil {
			return nil
		}
		var h metric.Float64Histogram
		h, err = meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit(unit),
			metric.WithExplicitBucketBoundaries(bounds...))
		if err != nil {
			err = fmt.Errorf("failed to create histogram %s: %w", name, err)
		}
		return h
	}

	m.renders = counter("voucher.render.total", "Voucher renders by outcome", "{render}")
	m.duration = histogram("voucher.render.duration", "Voucher render duration", "s", renderDurationBuckets)
	m.size = histogram("voucher.render.size", "Serialized voucher size", "By", documentSizeBuckets)
	m.assetSkipped = counter("voucher.asset.skipped", "Images skipped during embedding", "{image}")
	m.lookups = counter("voucher.verify.total", "Verification lookups by result", "{lookup}")
	m.uploads = counter("voucher.storage.uploads", "Stored voucher documents", "{object}")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordRender records one finished render. code is empty on success.
func (m *RenderMetrics) RecordRender(ctx context.Context, method string, d time.Duration, bytes int, code string) {
	if m == nil {
		return
	}
	byMethod := metric.WithAttributes(AttrPaymentMethod.String(method))
	if code == "" {
		m.renders.Add(ctx, 1, metric.WithAttributes(AttrPaymentMethod.String(method), AttrOutcome.String(OutcomeSuccess)))
		m.size.Record(ctx, float64(bytes), byMethod)
	} else {
		m.renders.Add(ctx, 1, metric.WithAttributes(AttrPaymentMethod.String(method),
			AttrOutcome.String(OutcomeFailure), AttrErrorCode.String(code)))
	}
	m.duration.Record(ctx, d.Seconds(), byMethod)
}

// RecordAssetSkipped counts an image left out of a document.
func (m *RenderMetrics) RecordAssetSkipped(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.assetSkipped.Add(ctx, 1, metric.WithAttributes(AttrAssetKind.String(kind)))
}

// RecordLookup counts one verification lookup with its result (found, not_found, invalid).
func (m *RenderMetrics) RecordLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(AttrLookupResult.String(result)))
}

// RecordUpload counts a stored document.
func (m *RenderMetrics) RecordUpload(ctx context.Context, driver string) {
	if m == nil {
		return
	}
	m.uploads.Add(ctx, 1, metric.WithAttributes(AttrStorageDriver.String(driver)))
}
