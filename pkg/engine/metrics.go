package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine-level counters exported on /metrics.
type Metrics struct {
	SessionsTotal     *prometheus.CounterVec
	SessionDuration   prometheus.Histogram
	DegradedTotal     prometheus.Counter
	EmotionTotal      *prometheus.CounterVec
	DissonanceTotal   *prometheus.CounterVec
	ChunksTotal       prometheus.Counter
	SegmentsTotal     prometheus.Counter
	BaselineUpdates   prometheus.Counter
	DeviationsFlagged prometheus.Counter
}

// NewMetrics registers the engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_sessions_total",
			Help: "Analyzed sessions by outcome.",
		}, []string{"status"}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voice_session_duration_seconds",
			Help:    "Wall time of full session analysis.",
			Buckets: prometheus.DefBuckets,
		}),
		DegradedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_degraded_analyses_total",
			Help: "Analyses completed without the embedding backend.",
		}),
		EmotionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_emotion_labels_total",
			Help: "Classified emotion labels.",
		}, []string{"label"}),
		DissonanceTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voice_dissonance_levels_total",
			Help: "Dissonance levels by outcome.",
		}, []string{"level"}),
		ChunksTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_stream_chunks_total",
			Help: "Streaming chunks ingested.",
		}),
		SegmentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_stream_segments_total",
			Help: "Complete utterances analyzed from streams.",
		}),
		BaselineUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_baseline_updates_total",
			Help: "Baseline merge operations.",
		}),
		DeviationsFlagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "voice_deviations_flagged_total",
			Help: "Sessions with at least one significant baseline shift.",
		}),
	}
}
