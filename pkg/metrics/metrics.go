// Package metrics defines the Prometheus collectors exported by the
// streaming-claim pipeline. Grounded on
// davrot-gogotex/pkg/metrics/metrics.go's namespace + RegisterCollectors
// idiom.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ExtractionPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papertrail", Name: "extraction_pages_total", Help: "Pages processed by the extraction worker pool, by outcome."},
		[]string{"outcome"}, // "ok" | "failed"
	)

	ExtractionClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papertrail", Name: "extraction_claims_total", Help: "Claims produced by the extraction worker pool."},
		[]string{"status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "papertrail", Name: "llm_request_duration_seconds", Help: "LLM call latency by purpose and outcome.", Buckets: prometheus.DefBuckets},
		[]string{"purpose", "outcome"}, // purpose: "extract" | "verify" | "validate"
	)

	StreamConnectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papertrail", Name: "stream_connections_total", Help: "Stream-claim connections opened, by terminal state."},
		[]string{"terminal_state"}, // "done" | "client_disconnect"
	)

	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "papertrail", Name: "verifications_total", Help: "Verification adjudications, by verdict."},
		[]string{"verdict"},
	)
)

// RegisterCollectors registers every collector against reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		ExtractionPagesTotal,
		ExtractionClaimsTotal,
		LLMRequestDuration,
		StreamConnectionsTotal,
		VerificationsTotal,
	)
}
