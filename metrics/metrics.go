// Package metrics exposes Prometheus instrumentation for the anonymization
// pipeline and the session store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntitiesExtracted counts extracted entities by type and source.
	EntitiesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anonymizer",
		Name:      "entities_extracted_total",
		Help:      "Number of entities extracted, by entity type and source.",
	}, []string{"type", "source"})

	// ExtractionDuration observes how long a full extraction run takes.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "anonymizer",
		Name:      "extraction_duration_seconds",
		Help:      "Duration of entity extraction runs.",
		Buckets:   prometheus.DefBuckets,
	})

	// ReconstructionDuration observes how long text reconstruction takes.
	ReconstructionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "anonymizer",
		Name:      "reconstruction_duration_seconds",
		Help:      "Duration of anonymized text reconstruction.",
		Buckets:   prometheus.DefBuckets,
	})

	// ActiveSessions tracks the number of unexpired sessions in the store.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "anonymizer",
		Name:      "active_sessions",
		Help:      "Number of unexpired sessions in the store.",
	})

	// DocumentsProcessed counts processed documents by format.
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anonymizer",
		Name:      "documents_processed_total",
		Help:      "Number of documents processed, by format.",
	}, []string{"format"})
)
