package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExtractionsTotal counts pipeline runs by terminal outcome.
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artistd",
		Name:      "extractions_total",
		Help:      "Completed extraction pipeline runs by outcome.",
	}, []string{"outcome"})

	// ExtractionDuration observes end-to-end pipeline latency.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "artistd",
		Name:      "extraction_duration_seconds",
		Help:      "End-to-end extraction pipeline duration.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// LLMRequestsTotal counts model calls by operation and outcome.
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artistd",
		Name:      "llm_requests_total",
		Help:      "Model extraction and enhancement calls by outcome.",
	}, []string{"op", "outcome"})

	// EnhancementsTotal counts contact-detail enhancement runs.
	EnhancementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artistd",
		Name:      "enhancements_total",
		Help:      "Profile enhancement runs by outcome.",
	}, []string{"outcome"})

	// IngestedFilesTotal counts files picked up by the directory watcher.
	IngestedFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "artistd",
		Name:      "ingested_files_total",
		Help:      "Files picked up by the ingest watcher by outcome.",
	}, []string{"outcome"})
)

const (
	OutcomeCompleted = "completed"
	OutcomeFallback  = "fallback"
	OutcomeFailed    = "failed"
	OutcomeOK        = "ok"
	OutcomeError     = "error"
)
