package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session cache metrics — the per-process LRU convstate.Store keeps in
	// front of Redis.
	SessionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_session_cache_hits_total",
			Help: "Total number of session cache hits",
		},
	)

	SessionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_session_cache_misses_total",
			Help: "Total number of session cache misses",
		},
	)

	SessionCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "router_session_cache_size",
			Help: "Current number of sessions in local cache",
		},
	)

	SessionCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "router_session_cache_evictions_total",
			Help: "Total number of sessions evicted from cache",
		},
	)

	// Vector DB metrics
	VectorSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_vector_search_total",
			Help: "Total number of vector searches",
		},
		[]string{"collection", "status"},
	)

	VectorSearchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_vector_search_latency_seconds",
			Help:    "Vector search latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection"},
	)

	// Embedding metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_embedding_requests_total",
			Help: "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_embedding_latency_seconds",
			Help:    "Embedding generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// Generation metrics — the LLM sidecar call the router hands
	// EXPLAIN/COMPARE/RECOMMEND/FAQ synthesis off to.
	GenerationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_generation_requests_total",
			Help: "Total number of LLM generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_generation_latency_seconds",
			Help:    "LLM generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// Product store metrics — the other half of the two evidence calls
	// RetrieveEvidence joins, alongside the vector search above.
	DBQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_db_queries_total",
			Help: "Total number of product store queries",
		},
		[]string{"query", "status"},
	)

	DBQueryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_db_query_latency_seconds",
			Help:    "Product store query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// Routing metrics — one decision per incoming utterance.
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_routing_decisions_total",
			Help: "Total number of routing decisions by resulting operation",
		},
		[]string{"operation"},
	)

	RoutingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "router_routing_latency_seconds",
			Help:    "End-to-end Route() latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordVectorSearchMetrics records vector search metrics
func RecordVectorSearchMetrics(collection, status string, durationSeconds float64) {
	VectorSearches.WithLabelValues(collection, status).Inc()
	if durationSeconds > 0 {
		VectorSearchLatency.WithLabelValues(collection).Observe(durationSeconds)
	}
}

// RecordEmbeddingMetrics records embedding metrics
func RecordEmbeddingMetrics(model, status string, durationSeconds float64) {
	EmbeddingRequests.WithLabelValues(model, status).Inc()
	if durationSeconds > 0 {
		EmbeddingLatency.WithLabelValues(model).Observe(durationSeconds)
	}
}

// RecordGenerationMetrics records LLM generation metrics
func RecordGenerationMetrics(model, status string, durationSeconds float64) {
	GenerationRequests.WithLabelValues(model, status).Inc()
	if durationSeconds > 0 {
		GenerationLatency.WithLabelValues(model).Observe(durationSeconds)
	}
}

// RecordDBQueryMetrics records product store query metrics.
func RecordDBQueryMetrics(query, status string, durationSeconds float64) {
	DBQueries.WithLabelValues(query, status).Inc()
	if durationSeconds > 0 {
		DBQueryLatency.WithLabelValues(query).Observe(durationSeconds)
	}
}

// RecordRoutingDecision records one Route() outcome.
func RecordRoutingDecision(operation string, durationSeconds float64) {
	RoutingDecisions.WithLabelValues(operation).Inc()
	RoutingLatency.Observe(durationSeconds)
}
