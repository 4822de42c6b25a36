// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArticlesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_articles_processed_total",
			Help: "Total number of articles processed by the pipeline",
		},
		[]string{"outcome"},
	)

	ArticleProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pipeline_article_duration_seconds",
			Help: "Duration of per-article pipeline processing in seconds",
		},
	)

	EntitiesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_entities_extracted_total",
			Help: "Total number of entities extracted, by type",
		},
		[]string{"type"},
	)

	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_geo_lookups_total",
			Help: "Total number of gazetteer lookups, by result",
		},
		[]string{"result"},
	)

	GeoCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_cache_requests_total",
			Help: "Cache get-or-compute requests, by cache name and outcome",
		},
		[]string{"cache", "outcome"},
	)

	DocumentsIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_documents_indexed_total",
			Help: "Total number of enriched documents written to the store",
		},
	)

	IndexFlushSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_index_flush_size",
			Help:    "Number of documents per buffer flush",
			Buckets: prometheus.LinearBuckets(1, 5, 10),
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_events_published_total",
			Help: "Derived events published, by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	BufferedDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_buffered_documents",
			Help: "Number of enriched documents waiting in the indexing buffer",
		},
	)
)
