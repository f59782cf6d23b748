// Package dissonance scores the gap between what a transcript says and what
// the voice sounds like. A big gap between a positive text and a negative
// voice is the core defensive-concealment signal.
package dissonance

import (
	"math"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// valenceTable maps each emotion label to its base signed valence. The value
// is weighted by classifier confidence before comparison.
var valenceTable = map[string]float64{
	voice.EmotionHappy:    0.8,
	voice.EmotionNeutral:  0.0,
	voice.EmotionSad:      -0.7,
	voice.EmotionAngry:    -0.6,
	voice.EmotionFear:     -0.8,
	voice.EmotionSurprise: 0.3,
	voice.EmotionDisgust:  -0.5,
}

// Config holds the tunable gap thresholds.
type Config struct {
	HighThreshold   float64 `mapstructure:"high_threshold" validate:"gte=0,lte=1"`
	MediumThreshold float64 `mapstructure:"medium_threshold" validate:"gte=0,lte=1"`
	// PolarityCutoff separates "clearly positive" from "clearly negative"
	// valence when picking an interpretation.
	PolarityCutoff float64 `mapstructure:"polarity_cutoff"`
}

// DefaultConfig returns the deployed thresholds.
func DefaultConfig() Config {
	return Config{
		HighThreshold:   0.7,
		MediumThreshold: 0.5,
		PolarityCutoff:  0.3,
	}
}

// Calculator compares sentiment valence against voice-emotion valence.
// Stateless and safe for concurrent use.
type Calculator struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Calculator.
func New(cfg Config, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{cfg: cfg, logger: logger}
}

// Calculate scores the say/sound gap. Both inputs are required; a missing
// transcript should arrive as a neutral sentiment, not nil.
func (c *Calculator) Calculate(sent *voice.SentimentResult, emo *voice.EmotionResult) *voice.DissonanceResult {
	sentimentValence := voice.Clamp(sent.Valence, -1, 1)
	emotionValence := valenceTable[emo.Label] * voice.Clamp01(emo.Confidence)

	gap := math.Abs(sentimentValence - emotionValence)
	normalized := gap / 2.0

	level := voice.LevelLow
	switch {
	case normalized >= c.cfg.HighThreshold:
		level = voice.LevelHigh
	case normalized >= c.cfg.MediumThreshold:
		level = voice.LevelMedium
	}

	interpretation := c.interpret(level, sentimentValence, emotionValence)

	risk := voice.RiskLow
	if level == voice.LevelHigh {
		risk = voice.RiskMedium
		if interpretation == voice.InterpretDefensiveConcealment {
			risk = voice.RiskMediumHigh
		}
	}

	res := &voice.DissonanceResult{
		Level:          level,
		Score:          voice.Clamp01(normalized),
		StatedEmotion:  polarity(sentimentValence),
		ActualEmotion:  polarity(emotionValence),
		Interpretation: interpretation,
		RiskLevel:      risk,
		Confidence:     math.Min(voice.Clamp01(sent.Score), voice.Clamp01(emo.Confidence)),
		Details: voice.DissonanceDetails{
			SentimentScore: sentimentValence,
			EmotionScore:   emotionValence,
			Gap:            gap,
			NormalizedGap:  normalized,
		},
	}
	c.logger.Debug("dissonance calculated",
		zap.String("level", res.Level),
		zap.String("interpretation", res.Interpretation),
		zap.Float64("score", res.Score))
	return res
}

func (c *Calculator) interpret(level string, sentiment, emotion float64) string {
	cut := c.cfg.PolarityCutoff
	switch {
	case level == voice.LevelLow:
		return voice.InterpretAuthentic
	case sentiment > cut && emotion < -cut:
		return voice.InterpretDefensiveConcealment
	case sentiment < -cut && emotion > cut:
		return voice.InterpretRecoveryIndicator
	case sentiment < 0 && emotion < 0:
		return voice.InterpretIntensityMismatch
	default:
		return voice.InterpretUnclear
	}
}

// polarity folds a signed valence onto the three stated-emotion buckets.
func polarity(valence float64) string {
	switch {
	case valence > 0.1:
		return voice.SentimentPositive
	case valence < -0.1:
		return voice.SentimentNegative
	default:
		return voice.SentimentNeutral
	}
}
