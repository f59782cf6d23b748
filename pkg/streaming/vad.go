// Package streaming runs the analysis pipeline incrementally over live audio
// chunks, gating on voice activity and triggering a full analysis at each
// end of utterance.
package streaming

import "math"

// VADConfig tunes the energy gate. Separate start/end thresholds give the
// detector hysteresis so it does not flicker between states on breathy
// speech.
type VADConfig struct {
	SpeechThreshold  float64 `mapstructure:"speech_threshold"`
	SilenceThreshold float64 `mapstructure:"silence_threshold"`
	SpeechFrames     int     `mapstructure:"speech_frames" validate:"gte=1"`
	SilenceFrames    int     `mapstructure:"silence_frames" validate:"gte=1"`
}

// DefaultVADConfig suits 16 kHz audio in 10 ms frames: three frames (30 ms)
// of energy to open the gate, sixty frames (600 ms) of quiet to close it.
func DefaultVADConfig() VADConfig {
	return VADConfig{
		SpeechThreshold:  0.015,
		SilenceThreshold: 0.008,
		SpeechFrames:     3,
		SilenceFrames:    60,
	}
}

// VAD is an RMS-energy voice activity detector with hysteresis. Not safe for
// concurrent use; each stream owns one.
type VAD struct {
	cfg          VADConfig
	inSpeech     bool
	speechCount  int
	silenceCount int
}

// NewVAD builds a detector.
func NewVAD(cfg VADConfig) *VAD {
	if cfg.SpeechFrames <= 0 || cfg.SilenceFrames <= 0 {
		cfg = DefaultVADConfig()
	}
	return &VAD{cfg: cfg}
}

// Feed consumes one frame and returns whether the stream is currently inside
// speech.
func (v *VAD) Feed(frame []float64) bool {
	level := frameRMS(frame)

	if v.inSpeech {
		if level < v.cfg.SilenceThreshold {
			v.silenceCount++
			v.speechCount = 0
			if v.silenceCount >= v.cfg.SilenceFrames {
				v.inSpeech = false
				v.silenceCount = 0
			}
		} else {
			v.silenceCount = 0
		}
	} else {
		if level >= v.cfg.SpeechThreshold {
			v.speechCount++
			v.silenceCount = 0
			if v.speechCount >= v.cfg.SpeechFrames {
				v.inSpeech = true
				v.speechCount = 0
			}
		} else {
			v.speechCount = 0
		}
	}

	return v.inSpeech
}

// Reset clears internal state.
func (v *VAD) Reset() {
	v.inSpeech = false
	v.speechCount = 0
	v.silenceCount = 0
}

func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
