// Package sentiment scores transcript text on a positive/negative axis. The
// dissonance calculator compares its valence against the acoustic emotion to
// find statements that sound different from what they say.
package sentiment

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Model scores a non-empty, whitespace-trimmed transcript.
type Model interface {
	Score(ctx context.Context, text string) (*voice.SentimentResult, error)
}

// Config controls the analyzer wrapper.
type Config struct {
	CacheSize int `mapstructure:"cache_size" validate:"gte=0"`
}

// DefaultConfig returns the deployed analyzer settings.
func DefaultConfig() Config {
	return Config{CacheSize: 1024}
}

// Analyzer wraps a Model with input normalization and a bounded result cache.
// Transcripts repeat heavily inside a session (fillers, confirmations), so
// the cache saves most remote round trips.
type Analyzer struct {
	model  Model
	cache  *lru.Cache[string, *voice.SentimentResult]
	logger *zap.Logger
}

// New builds an Analyzer around the given model.
func New(cfg Config, model Model, logger *zap.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New[string, *voice.SentimentResult](size)
	if err != nil {
		return nil, err
	}
	return &Analyzer{model: model, cache: cache, logger: logger}, nil
}

// Analyze scores a transcript. Empty or whitespace-only text is a neutral
// result with zero valence, not an error, so callers can always run the
// dissonance step.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*voice.SentimentResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &voice.SentimentResult{Label: voice.SentimentNeutral, Score: 1, Valence: 0}, nil
	}
	if cached, ok := a.cache.Get(trimmed); ok {
		return cached, nil
	}

	res, err := a.model.Score(ctx, trimmed)
	if err != nil {
		a.logger.Warn("sentiment model failed", zap.Error(err))
		return nil, err
	}
	res.Valence = voice.Clamp(res.Valence, -1, 1)
	res.Score = voice.Clamp01(res.Score)
	a.cache.Add(trimmed, res)
	return res, nil
}
