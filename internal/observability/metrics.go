// Package observability exposes Prometheus metrics for the report service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	translationResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "translate",
		Name:      "results_total",
		Help:      "Translation resolutions by outcome (translated, cached, or a fallback reason).",
	}, []string{"outcome"})
	translationQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "report_service",
		Subsystem: "translate",
		Name:      "queue_depth",
		Help:      "Number of translation tasks waiting for dispatch.",
	})
	translationCircuitOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "report_service",
		Subsystem: "translate",
		Name:      "circuit_open",
		Help:      "1 while the translation circuit breaker is open.",
	})
	pdfGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "pdf",
		Name:      "documents_total",
		Help:      "Number of report documents generated.",
	})
	pdfDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "report_service",
		Subsystem: "pdf",
		Name:      "generation_seconds",
		Help:      "Wall time spent compiling report documents.",
		Buckets:   prometheus.DefBuckets,
	})
	pdfPhotosSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "report_service",
		Subsystem: "pdf",
		Name:      "photos_skipped_total",
		Help:      "Photos dropped from documents after fetch or decode failures.",
	})
)

func init() {
	prometheus.MustRegister(
		translationResults,
		translationQueueDepth,
		translationCircuitOpen,
		pdfGenerated,
		pdfDuration,
		pdfPhotosSkipped,
	)
}

// RecordTranslation counts one translation resolution by outcome.
func RecordTranslation(outcome string) {
	translationResults.WithLabelValues(outcome).Inc()
}

// SetTranslationQueueDepth updates the pending-task gauge.
func SetTranslationQueueDepth(depth int) {
	translationQueueDepth.Set(float64(depth))
}

// SetTranslationCircuitOpen flips the breaker gauge.
func SetTranslationCircuitOpen(open bool) {
	if open {
		translationCircuitOpen.Set(1)
		return
	}
	translationCircuitOpen.Set(0)
}

// RecordPDFGenerated counts one generated document and its duration in seconds.
func RecordPDFGenerated(seconds float64) {
	pdfGenerated.Inc()
	pdfDuration.Observe(seconds)
}

// RecordPDFPhotoSkipped counts a photo dropped from a document.
func RecordPDFPhotoSkipped() {
	pdfPhotosSkipped.Inc()
}
