package summarizer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummariesTotal counts produced summaries.
	// Labels: mode (mock, api), confidence (low, medium, high)
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tenderbrief",
			Name:      "summaries_total",
			Help:      "Total number of summaries produced",
		},
		[]string{"mode", "confidence"},
	)

	// SummaryErrorsTotal counts failed summarization attempts.
	// Labels: mode, kind (missing_key, status, retryable, parse, transport, canceled)
	SummaryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tenderbrief",
			Name:      "summary_errors_total",
			Help:      "Total number of failed summarizations by error kind",
		},
		[]string{"mode", "kind"},
	)

	// SummaryDuration tracks end-to-end summarization latency.
	SummaryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tenderbrief",
			Name:      "summary_duration_seconds",
			Help:      "Duration of summarization requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// InputTruncations counts inputs cut down to the configured byte limit.
	InputTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tenderbrief",
			Name:      "input_truncations_total",
			Help:      "Total number of inputs truncated before summarization",
		},
	)
)
