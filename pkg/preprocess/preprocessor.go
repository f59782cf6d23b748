// Package preprocess cleans raw audio before any analysis stage sees it.
// Decode failures reject the request; every other step degrades gracefully by
// skipping itself and logging, so a noisy or odd recording still reaches the
// feature extractor.
package preprocess

import (
	"math"

	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
)

// Config toggles the individual cleaning steps. Defaults match the canonical
// 16 kHz mono analysis pipeline.
type Config struct {
	TargetSampleRate int     `mapstructure:"target_sample_rate"`
	EnableDenoise    bool    `mapstructure:"enable_denoise"`
	EnableNormalize  bool    `mapstructure:"enable_normalize"`
	EnableTrim       bool    `mapstructure:"enable_trim"`
	TrimThresholdDB  float64 `mapstructure:"trim_threshold_db" validate:"lte=0"`
	MinDurationSec   float64 `mapstructure:"min_duration_sec" validate:"gte=0"`
	NoiseGateFactor  float64 `mapstructure:"noise_gate_factor" validate:"gte=1"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TargetSampleRate: 16000,
		EnableDenoise:    true,
		EnableNormalize:  true,
		EnableTrim:       true,
		TrimThresholdDB:  -40,
		MinDurationSec:   1.0,
		NoiseGateFactor:  1.5,
	}
}

// Preprocessor cleans raw waveforms.
type Preprocessor struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Preprocessor. A nil logger is replaced with a nop logger.
func New(cfg Config, logger *zap.Logger) *Preprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TargetSampleRate <= 0 {
		cfg.TargetSampleRate = 16000
	}
	return &Preprocessor{cfg: cfg, logger: logger}
}

// Process decodes raw bytes and runs the cleaning chain. Only decoding can
// fail; a corrupt payload returns a decode error.
func (p *Preprocessor) Process(raw []byte, declaredRate int) (*audio.Signal, error) {
	sig, err := audio.Decode(raw, declaredRate)
	if err != nil {
		return nil, err
	}
	return p.Clean(sig), nil
}

// Clean runs the configured steps on an already-decoded signal.
func (p *Preprocessor) Clean(sig *audio.Signal) *audio.Signal {
	if sig.Empty() {
		return sig
	}

	if sig.SampleRate != p.cfg.TargetSampleRate {
		sig = sig.Resample(p.cfg.TargetSampleRate)
	}

	if p.cfg.EnableDenoise {
		if out, ok := p.denoise(sig); ok {
			sig = out
		} else {
			p.logger.Debug("spectral gating skipped, signal too short",
				zap.Int("samples", len(sig.Samples)))
		}
	}

	if p.cfg.EnableNormalize {
		sig = normalize(sig)
	}

	if p.cfg.EnableTrim {
		sig = p.trim(sig)
	}

	sig = p.pad(sig)
	return sig
}

// denoise applies spectral gating: the noise profile is estimated from the
// quietest fifth of frames, then each frame's spectrum is attenuated where it
// falls under profile * gate factor. Reconstruction is Hann overlap-add.
func (p *Preprocessor) denoise(sig *audio.Signal) (*audio.Signal, bool) {
	const frameSize = 512
	hopSize := frameSize / 2
	if len(sig.Samples) < frameSize*2 {
		return sig, false
	}

	frames := audio.Frames(sig.Samples, frameSize, hopSize)
	spectra := make([][]float64, len(frames))
	for i, frame := range frames {
		spectra[i] = audio.MagnitudeSpectrum(frame)
	}

	// Noise profile: per-bin mean over the quietest 20% of frames.
	energies := make([]float64, len(frames))
	for i, spec := range spectra {
		energies[i] = audio.Mean(spec)
	}
	threshold := audio.Percentile(energies, 20)
	bins := len(spectra[0])
	profile := make([]float64, bins)
	quiet := 0
	for i, spec := range spectra {
		if energies[i] > threshold {
			continue
		}
		quiet++
		for b, m := range spec {
			profile[b] += m
		}
	}
	if quiet == 0 {
		return sig, false
	}
	for b := range profile {
		profile[b] /= float64(quiet)
	}

	// Gate and reconstruct. Phase is approximated by scaling the time-domain
	// frame with its gated-to-original energy ratio, which keeps the pass
	// cheap and artifact-free enough for feature extraction.
	out := make([]float64, len(sig.Samples))
	weight := make([]float64, len(sig.Samples))
	win := audio.HannWindow(frameSize)
	for i, frame := range frames {
		var kept, total float64
		for b, m := range spectra[i] {
			total += m
			if m > profile[b]*p.cfg.NoiseGateFactor {
				kept += m
			}
		}
		gain := 0.0
		if total > 0 {
			gain = kept / total
		}
		start := i * hopSize
		for j, v := range frame {
			out[start+j] += v * gain * win[j]
			weight[start+j] += win[j]
		}
	}
	for i := range out {
		if weight[i] > 1e-9 {
			out[i] /= weight[i]
		} else {
			out[i] = sig.Samples[i]
		}
	}
	return &audio.Signal{Samples: out, SampleRate: sig.SampleRate}, true
}

// normalize rescales peaks to [-1, 1].
func normalize(sig *audio.Signal) *audio.Signal {
	peak := sig.Peak()
	if peak < 1e-9 || math.Abs(peak-1) < 1e-6 {
		return sig
	}
	out := make([]float64, len(sig.Samples))
	for i, v := range sig.Samples {
		out[i] = v / peak
	}
	return &audio.Signal{Samples: out, SampleRate: sig.SampleRate}
}

// trim drops leading and trailing frames below the dB threshold relative to
// full scale. A fully silent signal is returned unchanged so downstream
// detectors can report "not detected" instead of erroring on zero samples.
func (p *Preprocessor) trim(sig *audio.Signal) *audio.Signal {
	env := audio.RMSEnvelope(sig.Samples, audio.DefaultFrameSize, audio.DefaultHopSize)
	if len(env) == 0 {
		return sig
	}
	threshold := math.Pow(10, p.cfg.TrimThresholdDB/20)

	first, last := -1, -1
	for i, e := range env {
		if e >= threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return sig
	}

	start := first * audio.DefaultHopSize
	end := last*audio.DefaultHopSize + audio.DefaultFrameSize
	if end > len(sig.Samples) {
		end = len(sig.Samples)
	}
	return &audio.Signal{Samples: sig.Samples[start:end], SampleRate: sig.SampleRate}
}

// pad zero-extends the signal to the minimum analysis duration.
func (p *Preprocessor) pad(sig *audio.Signal) *audio.Signal {
	minSamples := int(p.cfg.MinDurationSec * float64(sig.SampleRate))
	if len(sig.Samples) >= minSamples {
		return sig
	}
	out := make([]float64, minSamples)
	copy(out, sig.Samples)
	return &audio.Signal{Samples: out, SampleRate: sig.SampleRate}
}
