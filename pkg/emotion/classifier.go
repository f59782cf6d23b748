// Package emotion maps a feature vector to one of seven discrete emotion
// labels with a confidence score. The prediction strategy is swappable so the
// ensemble, a simpler model or a test double can stand in without touching
// calling code.
package emotion

import (
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/features"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Predictor is the classification strategy.
type Predictor interface {
	// Predict returns the best label and its probability for a combined,
	// unscaled feature vector.
	Predict(vec []float64) (label string, confidence float64, err error)
}

// Config tunes the classifier wrapper.
type Config struct {
	ModelPath string `mapstructure:"model_path"`
	// MinConfidence is the floor below which the label falls back to
	// neutral. The computed confidence is still reported.
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
}

// DefaultConfig matches the deployed thresholds.
func DefaultConfig() Config {
	return Config{
		ModelPath:     "./models/emotion.json",
		MinConfidence: 0.5,
	}
}

// Classifier wraps a Predictor with the confidence-floor policy.
type Classifier struct {
	cfg       Config
	predictor Predictor
	logger    *zap.Logger
}

// NewClassifier loads the ensemble model from cfg.ModelPath. A missing model
// fails here, at process start, never per call.
func NewClassifier(cfg Config, logger *zap.Logger) (*Classifier, error) {
	model, err := LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	return NewClassifierWith(cfg, NewEnsemble(model), logger), nil
}

// NewClassifierWith injects an explicit prediction strategy.
func NewClassifierWith(cfg Config, predictor Predictor, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{cfg: cfg, predictor: predictor, logger: logger}
}

// Classify scores the vector and applies the neutral fallback. The returned
// confidence is always the computed one, even when the label is replaced.
func (c *Classifier) Classify(vec *features.Vector) (*voice.EmotionResult, error) {
	label, confidence, err := c.predictor.Predict(vec.Combined())
	if err != nil {
		return nil, err
	}
	confidence = voice.Clamp01(confidence)

	result := &voice.EmotionResult{
		Label:      label,
		Confidence: confidence,
		Degraded:   vec.Degraded,
	}
	if confidence < c.cfg.MinConfidence {
		c.logger.Debug("confidence below minimum, falling back to neutral",
			zap.String("label", label),
			zap.Float64("confidence", confidence))
		result.Label = voice.EmotionNeutral
	}
	return result, nil
}
