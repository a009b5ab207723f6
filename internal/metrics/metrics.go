package metrics

import "github.com/prometheus/client_golang/prometheus"

// Model-call and pipeline Prometheus metrics.
var (
	ModelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragengine",
			Name:      "model_requests_total",
			Help:      "Total number of model API requests",
		},
		[]string{"kind", "model", "status"}, // kind: embedding, generation, evaluation
	)

	ModelRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragengine",
			Name:      "model_request_duration_seconds",
			Help:      "Model API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "model"},
	)

	ModelTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragengine",
			Name:      "model_tokens_total",
			Help:      "Total tokens consumed by model calls",
		},
		[]string{"kind", "model", "type"}, // type: prompt, completion, total
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragengine",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ExperimentLegsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragengine",
			Name:      "experiment_legs_total",
			Help:      "Experiment legs by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)

	IndexedChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragengine",
			Name:      "indexed_chunks",
			Help:      "Chunks currently held by the vector index",
		},
	)
)

var registered bool

// Register registers pipeline metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(ModelRequestsTotal)
	prometheus.MustRegister(ModelRequestDuration)
	prometheus.MustRegister(ModelTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(ExperimentLegsTotal)
	prometheus.MustRegister(IndexedChunks)
	registered = true
}
