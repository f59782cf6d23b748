// Package engine wires the analysis components into the three public
// operations: full session analysis, baseline updates, and streaming chunk
// processing.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/internal/models"
	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/baseline"
	"github.com/leon-madara/ResonaAI-sub003/pkg/dissonance"
	"github.com/leon-madara/ResonaAI-sub003/pkg/emotion"
	"github.com/leon-madara/ResonaAI-sub003/pkg/events"
	"github.com/leon-madara/ResonaAI-sub003/pkg/features"
	"github.com/leon-madara/ResonaAI-sub003/pkg/micromoment"
	"github.com/leon-madara/ResonaAI-sub003/pkg/preprocess"
	"github.com/leon-madara/ResonaAI-sub003/pkg/sentiment"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Config tunes the engine wrapper itself; component thresholds live in each
// component's own config.
type Config struct {
	// RequestTimeout caps one full pipeline run. On expiry the caller gets
	// a retryable error and no partial state is left behind.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Workers        int           `mapstructure:"workers" validate:"gte=1"`
}

// DefaultConfig returns the deployed engine settings.
func DefaultConfig() Config {
	return Config{
		RequestTimeout: 30 * time.Second,
		Workers:        4,
	}
}

// SessionRequest is one full-session analysis call.
type SessionRequest struct {
	Audio      []byte
	SampleRate int
	Transcript string
	UserID     string
	SessionID  string
}

// Engine owns the models and components, loaded once at startup and shared
// read-only across requests.
type Engine struct {
	cfg          Config
	preprocessor *preprocess.Preprocessor
	extractor    *features.Extractor
	classifier   *emotion.Classifier
	sentiments   *sentiment.Analyzer
	dissonances  *dissonance.Calculator
	micromoments *micromoment.Detector
	baselines    *baseline.Tracker
	pool         *AnalysisPool
	metrics      *Metrics
	logger       *zap.Logger

	streamMu    sync.RWMutex
	streamUsers map[string]string
}

// Components collects the constructed pipeline stages.
type Components struct {
	Preprocessor *preprocess.Preprocessor
	Extractor    *features.Extractor
	Classifier   *emotion.Classifier
	Sentiment    *sentiment.Analyzer
	Dissonance   *dissonance.Calculator
	MicroMoment  *micromoment.Detector
	Baseline     *baseline.Tracker
	Metrics      *Metrics
}

// New builds the engine and starts its worker pool.
func New(cfg Config, c Components, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Engine{
		cfg:          cfg,
		preprocessor: c.Preprocessor,
		extractor:    c.Extractor,
		classifier:   c.Classifier,
		sentiments:   c.Sentiment,
		dissonances:  c.Dissonance,
		micromoments: c.MicroMoment,
		baselines:    c.Baseline,
		pool:         NewAnalysisPool(cfg.Workers, logger),
		metrics:      c.Metrics,
		logger:       logger,
	}
}

// Close stops the worker pool.
func (e *Engine) Close() {
	e.pool.Close()
}

// ModelStatus reports which pipeline components are wired, for health checks.
func (e *Engine) ModelStatus() map[string]bool {
	return map[string]bool{
		"preprocess":   e.preprocessor != nil,
		"features":     e.extractor != nil,
		"emotion":      e.classifier != nil,
		"sentiment":    e.sentiments != nil,
		"dissonance":   e.dissonances != nil,
		"micro_moment": e.micromoments != nil,
		"baseline":     e.baselines != nil,
	}
}

// AnalyzeSession runs the full pipeline on one recorded session: preprocess,
// extract, classify, score dissonance and micro-moments, then merge the
// session into the user's baseline and score its deviation.
func (e *Engine) AnalyzeSession(ctx context.Context, req *SessionRequest) (*voice.SessionAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	value, err := e.pool.Submit(ctx, func() (any, error) {
		return e.analyzeSession(ctx, req)
	})
	if err != nil {
		if e.metrics != nil {
			e.metrics.SessionsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	result := value.(*voice.SessionAnalysis)
	if e.metrics != nil {
		e.metrics.SessionsTotal.WithLabelValues("ok").Inc()
		e.metrics.SessionDuration.Observe(time.Since(start).Seconds())
		e.metrics.EmotionTotal.WithLabelValues(result.Emotion.Label).Inc()
		e.metrics.DissonanceTotal.WithLabelValues(result.Dissonance.Level).Inc()
		if result.Degraded {
			e.metrics.DegradedTotal.Inc()
		}
	}
	e.publish(result)
	return result, nil
}

// publish notifies downstream consumers of the finished analysis.
func (e *Engine) publish(result *voice.SessionAnalysis) {
	events.Publish(events.TypeSessionAnalyzed, map[string]interface{}{
		"session_id": result.SessionID,
		"user_id":    result.UserID,
		"emotion":    result.Emotion.Label,
		"dissonance": result.Dissonance.Level,
	}, "engine")

	risk := result.Dissonance.RiskLevel
	if result.MicroMoments.OverallRisk == voice.RiskHigh {
		risk = voice.RiskHigh
	}
	if risk == voice.RiskHigh || risk == voice.RiskMediumHigh {
		events.Publish(events.TypeHighRiskDetected, map[string]interface{}{
			"session_id":     result.SessionID,
			"user_id":        result.UserID,
			"risk_level":     risk,
			"interpretation": result.Dissonance.Interpretation,
		}, "engine")
	}
	if result.Deviation != nil && len(result.Deviation.SignificantChanges) > 0 {
		events.Publish(events.TypeDeviationFlagged, map[string]interface{}{
			"session_id": result.SessionID,
			"user_id":    result.UserID,
			"changes":    result.Deviation.SignificantChanges,
			"score":      result.Deviation.DeviationScore,
		}, "engine")
	}
}

func (e *Engine) analyzeSession(ctx context.Context, req *SessionRequest) (*voice.SessionAnalysis, error) {
	sig, err := e.preprocessor.Process(req.Audio, req.SampleRate)
	if err != nil {
		return nil, err
	}
	analysis, metrics, err := e.analyzeSignal(ctx, sig, req.Transcript)
	if err != nil {
		return nil, err
	}
	analysis.UserID = req.UserID
	analysis.SessionID = req.SessionID

	if req.UserID != "" {
		deviation, err := e.scoreAndMerge(ctx, req.UserID, req.SessionID, metrics)
		if err != nil {
			// Storage trouble degrades the response, it does not void
			// the acoustic results.
			e.logger.Error("baseline step failed",
				zap.String("user_id", req.UserID), zap.Error(err))
		} else {
			analysis.Deviation = deviation
		}
	}
	return analysis, nil
}

// analyzeSignal is the stateless acoustic core shared by session and
// streaming paths. The signal must already be cleaned.
func (e *Engine) analyzeSignal(ctx context.Context, sig *audio.Signal, transcript string) (*voice.SessionAnalysis, *voice.SessionMetrics, error) {
	vec, err := e.extractor.Extract(ctx, sig)
	if err != nil {
		return nil, nil, err
	}
	emo, err := e.classifier.Classify(vec)
	if err != nil {
		return nil, nil, err
	}

	sent, err := e.sentiments.Analyze(ctx, transcript)
	if err != nil {
		// Sentiment outage degrades to a neutral reading.
		e.logger.Error("sentiment unavailable, using neutral", zap.Error(err))
		sent = &voice.SentimentResult{Label: voice.SentimentNeutral, Score: 0.1, Valence: 0}
	}

	metrics := vec.SessionMetrics()
	metrics.EmotionDist = map[string]float64{emo.Label: 1}

	analysis := &voice.SessionAnalysis{
		Emotion:      emo,
		Dissonance:   e.dissonances.Calculate(sent, emo),
		MicroMoments: e.micromoments.Analyze(sig),
		Metrics:      metrics,
		Degraded:     emo.Degraded,
		ProcessedAt:  time.Now(),
	}
	return analysis, metrics, nil
}

// scoreAndMerge checks deviation against the pre-session baseline, persists
// an established deviation, then merges the session in.
func (e *Engine) scoreAndMerge(ctx context.Context, userID, sessionID string, m *voice.SessionMetrics) (*voice.SessionDeviation, error) {
	deviation, err := e.baselines.CheckDeviation(ctx, userID, sessionID, m)
	if err != nil {
		return nil, err
	}
	if err := e.baselines.Record(ctx, deviation); err != nil {
		return nil, err
	}
	if _, err := e.baselines.Update(ctx, userID, m); err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.BaselineUpdates.Inc()
		if len(deviation.SignificantChanges) > 0 {
			e.metrics.DeviationsFlagged.Inc()
		}
	}
	return deviation, nil
}

// UpdateBaseline merges session metrics without running any audio analysis.
func (e *Engine) UpdateBaseline(ctx context.Context, userID string, m *voice.SessionMetrics) ([]*models.UserBaseline, error) {
	rows, err := e.baselines.Update(ctx, userID, m)
	if err == nil && e.metrics != nil {
		e.metrics.BaselineUpdates.Inc()
	}
	return rows, err
}

// GetBaselines loads every baseline row for a user.
func (e *Engine) GetBaselines(ctx context.Context, userID string) ([]*models.UserBaseline, error) {
	return e.baselines.Load(ctx, userID)
}

// BindStream associates a live stream with a user so streamed utterances
// feed that user's baseline. Unbound streams analyze acoustics only.
func (e *Engine) BindStream(streamID, userID string) {
	e.streamMu.Lock()
	defer e.streamMu.Unlock()
	if e.streamUsers == nil {
		e.streamUsers = make(map[string]string)
	}
	e.streamUsers[streamID] = userID
}

// UnbindStream drops the stream-to-user association.
func (e *Engine) UnbindStream(streamID string) {
	e.streamMu.Lock()
	defer e.streamMu.Unlock()
	delete(e.streamUsers, streamID)
}

// AnalyzeSegment runs the acoustic pipeline on a buffered utterance from a
// live stream. Streaming has no transcript, so sentiment is neutral and the
// dissonance score reflects only how negative the voice itself sounds.
func (e *Engine) AnalyzeSegment(ctx context.Context, sig *audio.Signal, streamID string) (*voice.SessionAnalysis, error) {
	if e.metrics != nil {
		e.metrics.SegmentsTotal.Inc()
	}
	cleaned := e.preprocessor.Clean(sig)
	analysis, metrics, err := e.analyzeSignal(ctx, cleaned, "")
	if err != nil {
		return nil, err
	}
	analysis.SessionID = streamID

	e.streamMu.RLock()
	userID := e.streamUsers[streamID]
	e.streamMu.RUnlock()
	if userID != "" {
		analysis.UserID = userID
		deviation, err := e.scoreAndMerge(ctx, userID, streamID, metrics)
		if err != nil {
			e.logger.Error("baseline step failed for stream",
				zap.String("stream_id", streamID), zap.Error(err))
		} else {
			analysis.Deviation = deviation
		}
	}
	return analysis, nil
}
