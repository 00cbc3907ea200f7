// Package observe provides application-wide observability primitives for
// triaje593: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all triaje593 metrics.
const meterName = "github.com/pvillacis/triaje593"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranscribeDuration tracks voice-clip transcription latency, covering
	// spooling, calibration, and the remote recognition call.
	TranscribeDuration metric.Float64Histogram

	// ClassifyDuration tracks specialty classification latency.
	ClassifyDuration metric.Float64Histogram

	// AnalyzeDuration tracks end-to-end consultation analysis latency.
	AnalyzeDuration metric.Float64Histogram

	// --- Counters ---

	// AnalyzeRequests counts consultation analyses. Use with attribute:
	//   attribute.String("status", ...)
	AnalyzeRequests metric.Int64Counter

	// TranscriptionOutcomes counts transcription attempts by tagged outcome.
	// Use with attribute:
	//   attribute.String("outcome", ...)
	TranscriptionOutcomes metric.Int64Counter

	// --- Error counters ---

	// RecognizerErrors counts recognition-service failures. Use with
	// attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	RecognizerErrors metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for text analysis and remote speech recognition latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscribeDuration, err = m.Float64Histogram("triaje.transcribe.duration",
		metric.WithDescription("Latency of voice-clip transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("triaje.classify.duration",
		metric.WithDescription("Latency of specialty classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnalyzeDuration, err = m.Float64Histogram("triaje.analyze.duration",
		metric.WithDescription("End-to-end consultation analysis latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.AnalyzeRequests, err = m.Int64Counter("triaje.analyze.requests",
		metric.WithDescription("Total consultation analyses by status."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionOutcomes, err = m.Int64Counter("triaje.transcription.outcomes",
		metric.WithDescription("Total transcription attempts by tagged outcome."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.RecognizerErrors, err = m.Int64Counter("triaje.recognizer.errors",
		metric.WithDescription("Total recognition-service failures by provider and kind."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("triaje.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalysis is a convenience method that records an analysis counter
// increment with the standard status attribute.
func (m *Metrics) RecordAnalysis(ctx context.Context, status string) {
	m.AnalyzeRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordTranscription is a convenience method that records a transcription
// outcome counter increment.
func (m *Metrics) RecordTranscription(ctx context.Context, outcome string) {
	m.TranscriptionOutcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
}

// RecordRecognizerError is a convenience method that records a recognition
// failure counter increment.
func (m *Metrics) RecordRecognizerError(ctx context.Context, provider, kind string) {
	m.RecognizerErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
