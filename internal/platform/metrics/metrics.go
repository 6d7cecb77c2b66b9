package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsReceivedTotal counts accepted ingest requests by source channel.
	SubmissionsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offerflow_submissions_received_total",
			Help: "Count of submissions accepted for processing",
		},
		[]string{"channel"},
	)

	// JobsProcessedTotal counts finished extraction jobs by terminal status.
	JobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offerflow_jobs_processed_total",
			Help: "Count of extraction jobs that reached a terminal status",
		},
		[]string{"status"},
	)

	// ExtractionRetriesTotal counts Gemini call retries.
	ExtractionRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "offerflow_extraction_retries_total",
			Help: "Count of retried language model calls",
		},
	)

	// ExtractionConfidence observes the confidence score of extracted items.
	ExtractionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "offerflow_extraction_confidence",
			Help:    "Confidence scores reported for extracted offer items",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// ProcessingDurationSeconds observes end-to-end job processing time.
	ProcessingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "offerflow_processing_duration_seconds",
			Help:    "Wall clock duration of extraction jobs",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Init registers all collectors with the default registry. Call once at
// startup before serving the metrics endpoint.
func Init() {
	prometheus.MustRegister(SubmissionsReceivedTotal)
	prometheus.MustRegister(JobsProcessedTotal)
	prometheus.MustRegister(ExtractionRetriesTotal)
	prometheus.MustRegister(ExtractionConfidence)
	prometheus.MustRegister(ProcessingDurationSeconds)
}

// Handler returns the HTTP handler that serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
