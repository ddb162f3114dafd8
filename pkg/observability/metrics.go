// Package observability provides Prometheus metrics for the cursor-api
// client SDK. Embedding applications can expose them via [Handler].
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts API calls by mode (chat/stream), model, and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursor_requests_total",
			Help: "Total API requests",
		},
		[]string{"mode", "model", "status"},
	)

	// RequestDuration records end-to-end request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cursor_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"mode", "model"},
	)

	// StreamsActive tracks the number of streams currently open.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cursor_streams_active",
			Help: "Active streaming responses",
		},
	)

	// FramesTotal counts response frames by classified kind.
	FramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursor_frames_total",
			Help: "Response frames by classified kind",
		},
		[]string{"kind"},
	)

	// DeltasTotal counts non-empty content deltas emitted to callers.
	DeltasTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cursor_deltas_total",
			Help: "Content deltas emitted",
		},
	)

	// StreamEndsTotal counts stream terminations by cause.
	StreamEndsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cursor_stream_ends_total",
			Help: "Stream terminations by cause",
		},
		[]string{"cause"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamsActive,
		FramesTotal,
		DeltasTotal,
		StreamEndsTotal,
	)
}

// Handler returns an HTTP handler serving the default Prometheus registry,
// for applications that embed the SDK and want its metrics exposed.
func Handler() http.Handler {
	return promhttp.Handler()
}
