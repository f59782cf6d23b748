// Package features converts a cleaned waveform into the fixed-shape numeric
// representation consumed by the emotion classifier. Five families are
// computed independently so each can be disabled by configuration; only the
// embedding family can fail, and it degrades to a zero vector.
package features

import (
	"context"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Config toggles the feature families.
type Config struct {
	EnableSpectral    bool `mapstructure:"enable_spectral"`
	EnableProsodic    bool `mapstructure:"enable_prosodic"`
	EnableTemporal    bool `mapstructure:"enable_temporal"`
	EnableStatistical bool `mapstructure:"enable_statistical"`
	EnableEmbedding   bool `mapstructure:"enable_embedding"`
}

// DefaultConfig enables every family.
func DefaultConfig() Config {
	return Config{
		EnableSpectral:    true,
		EnableProsodic:    true,
		EnableTemporal:    true,
		EnableStatistical: true,
		EnableEmbedding:   true,
	}
}

// Extractor computes feature vectors. Safe for concurrent use: all state is
// read-only after construction.
type Extractor struct {
	cfg      Config
	embedder EmbeddingModel
	tracker  *audio.PitchTracker
	logger   *zap.Logger
}

// New builds an Extractor. embedder may be nil when the embedding family is
// disabled.
func New(cfg Config, embedder EmbeddingModel, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		cfg:      cfg,
		embedder: embedder,
		tracker:  audio.NewPitchTracker(),
		logger:   logger,
	}
}

// Extract computes all enabled families. The only hard failure is an empty
// signal; an embedding outage produces a zero sub-vector and Degraded=true.
func (e *Extractor) Extract(ctx context.Context, sig *audio.Signal) (*Vector, error) {
	if sig.Empty() {
		return nil, voice.ErrEmptySignal
	}

	vec := &Vector{
		MFCC:        make([]float64, numMFCC),
		Contrast:    make([]float64, numContrast),
		Chroma:      make([]float64, numChroma),
		Percentiles: make([]float64, 4),
	}

	if e.cfg.EnableSpectral {
		sp := extractSpectral(sig)
		vec.MFCC = sp.mfcc
		vec.SpectralCentroid = sp.centroid
		vec.SpectralRolloff = sp.rolloff
		vec.SpectralBandwidth = sp.bandwidth
		vec.ZeroCrossingRate = sp.zcr
		vec.Contrast = sp.contrast
		vec.Chroma = sp.chroma
	}

	if e.cfg.EnableProsodic {
		pr := extractProsodic(sig, e.tracker)
		vec.PitchMean = pr.pitchMean
		vec.PitchStd = pr.pitchStd
		vec.PitchMin = pr.pitchMin
		vec.PitchMax = pr.pitchMax
		vec.PitchRange = pr.pitchRange
		vec.EnergyMean = pr.energyMean
		vec.EnergyStd = pr.energyStd
		vec.EnergyMax = pr.energyMax
		vec.VoicedRatio = pr.voicedRatio
	}

	if e.cfg.EnableTemporal {
		tm := extractTemporal(sig)
		vec.Duration = tm.duration
		vec.SpeechRate = tm.speechRate
		vec.PauseRatio = tm.pauseRatio
	}

	if e.cfg.EnableStatistical {
		st := extractStatistical(sig)
		vec.Percentiles = st.percentiles
		vec.Skewness = st.skewness
		vec.Kurtosis = st.kurtosis
	}

	if e.cfg.EnableEmbedding && e.embedder != nil {
		emb, err := e.embedder.Embed(ctx, sig)
		if err != nil {
			e.logger.Warn("embedding backend unavailable, substituting zero vector",
				zap.Error(err))
			vec.Embedding = make([]float64, e.embedder.Dimension())
			vec.Degraded = true
		} else {
			vec.Embedding = emb
		}
	}

	return vec, nil
}

// SessionMetrics derives the baseline-tracker summary from a feature vector.
func (v *Vector) SessionMetrics() *voice.SessionMetrics {
	return &voice.SessionMetrics{
		PitchMean:       v.PitchMean,
		PitchStd:        v.PitchStd,
		EnergyMean:      v.EnergyMean,
		EnergyStd:       v.EnergyStd,
		SpeechRate:      v.SpeechRate,
		ProsodyVariance: v.PitchStd*v.PitchStd + v.EnergyStd*v.EnergyStd,
	}
}
