// Package micromoment flags brief physiological voice events that can leak
// emotional state: pitch tremor, sighs, voice cracks and hesitation pauses.
// Detectors run on the preprocessed waveform directly, not on the combined
// feature vector, because each needs its own signal treatment. Short or
// silent audio always yields "not detected" results, never an error.
package micromoment

import (
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Config carries every detector threshold. Defaults are the deployed values.
type Config struct {
	// Tremor
	TremorBandLowHz    float64 `mapstructure:"tremor_band_low_hz"`
	TremorBandHighHz   float64 `mapstructure:"tremor_band_high_hz"`
	TremorRatio        float64 `mapstructure:"tremor_ratio" validate:"gte=0,lte=1"`
	TremorMinSamples   int     `mapstructure:"tremor_min_samples" validate:"gte=1"`
	TremorSmoothWindow int     `mapstructure:"tremor_smooth_window"`

	// Sighs
	SighMinProminence float64 `mapstructure:"sigh_min_prominence"`
	SighMinDecay      float64 `mapstructure:"sigh_min_decay"`
	SighDecayWindow   float64 `mapstructure:"sigh_decay_window_sec"`

	// Voice cracks
	CrackJumpHz  float64 `mapstructure:"crack_jump_hz"`
	CrackScaleHz float64 `mapstructure:"crack_scale_hz"`

	// Hesitations
	HesitationPercentile float64 `mapstructure:"hesitation_percentile"`
	LongPauseSec         float64 `mapstructure:"long_pause_sec"`

	// Risk aggregation
	WeightTremor     float64 `mapstructure:"weight_tremor"`
	WeightSighs      float64 `mapstructure:"weight_sighs"`
	WeightCracks     float64 `mapstructure:"weight_cracks"`
	WeightHesitation float64 `mapstructure:"weight_hesitation"`
	// HesitationSignificant is the pause ratio above which hesitations
	// contribute to the risk score at all.
	HesitationSignificant float64 `mapstructure:"hesitation_significant"`
}

// DefaultConfig returns the deployed thresholds.
func DefaultConfig() Config {
	return Config{
		TremorBandLowHz:       4,
		TremorBandHighHz:      8,
		TremorRatio:           0.15,
		TremorMinSamples:      10,
		TremorSmoothWindow:    3,
		SighMinProminence:     0.03,
		SighMinDecay:          0.05,
		SighDecayWindow:       0.5,
		CrackJumpHz:           50,
		CrackScaleHz:          200,
		HesitationPercentile:  20,
		LongPauseSec:          1.0,
		WeightTremor:          0.30,
		WeightSighs:           0.25,
		WeightCracks:          0.20,
		WeightHesitation:      0.25,
		HesitationSignificant: 0.3,
	}
}

// Detector runs the four micro-moment analyses. Stateless and safe for
// concurrent use.
type Detector struct {
	cfg     Config
	tracker *audio.PitchTracker
	logger  *zap.Logger
}

// New builds a Detector.
func New(cfg Config, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		cfg:     cfg,
		tracker: audio.NewPitchTracker(),
		logger:  logger,
	}
}

// Analyze runs all four detectors and aggregates a weighted risk band.
func (d *Detector) Analyze(sig *audio.Signal) *voice.MicroMomentResult {
	result := &voice.MicroMomentResult{
		OverallRisk:    voice.RiskLow,
		Interpretation: "no_significant_markers",
	}
	if sig.Empty() {
		return result
	}

	pitches := d.tracker.Track(sig)
	env := audio.RMSEnvelope(sig.Samples, audio.DefaultFrameSize, audio.DefaultHopSize)
	frameRate := float64(sig.SampleRate) / float64(audio.DefaultHopSize)

	result.Tremor = d.detectTremor(pitches, frameRate)
	result.Sighs = d.detectSighs(env, frameRate)
	result.VoiceCracks = d.detectCracks(pitches, frameRate)
	result.Hesitations = d.detectHesitations(env, frameRate)

	score := d.riskScore(result)
	switch {
	case score >= 0.7:
		result.OverallRisk = voice.RiskHigh
		result.Interpretation = "significant_emotional_suppression"
	case score >= 0.5:
		result.OverallRisk = voice.RiskMediumHigh
		result.Interpretation = "elevated_physiological_stress"
	case score >= 0.3:
		result.OverallRisk = voice.RiskMedium
		result.Interpretation = "mild_stress_indicators"
	}

	d.logger.Debug("micro-moment analysis complete",
		zap.Float64("risk_score", score),
		zap.String("risk", result.OverallRisk),
		zap.Bool("tremor", result.Tremor.Detected),
		zap.Int("sighs", result.Sighs.Count),
		zap.Int("cracks", result.VoiceCracks.Count),
		zap.Int("hesitations", result.Hesitations.Count))
	return result
}

// riskScore blends detector intensities: tremor 30%, sighs 25%, cracks 20%,
// hesitations 25% — the hesitation term only counts once the pause ratio is
// itself significant.
func (d *Detector) riskScore(r *voice.MicroMomentResult) float64 {
	score := r.Tremor.Intensity * d.cfg.WeightTremor
	score += voice.Clamp01(r.Sighs.Intensity) * d.cfg.WeightSighs
	score += voice.Clamp01(r.VoiceCracks.Intensity) * d.cfg.WeightCracks
	if r.Hesitations.PauseRatio >= d.cfg.HesitationSignificant {
		score += voice.Clamp01(r.Hesitations.PauseRatio) * d.cfg.WeightHesitation
	}
	return voice.Clamp01(score)
}
