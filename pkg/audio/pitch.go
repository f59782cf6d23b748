package audio

import (
	"math"
)

// Human voice fundamental-frequency search band.
const (
	PitchMinHz = 80.0
	PitchMaxHz = 400.0
)

// PitchTracker estimates per-frame fundamental frequency with normalized
// autocorrelation restricted to the speaking voice band.
type PitchTracker struct {
	FrameSize       int
	HopSize         int
	MinHz           float64
	MaxHz           float64
	VoicingStrength float64 // minimum normalized autocorrelation peak for a voiced frame
}

// NewPitchTracker returns a tracker with the default 25 ms / 10 ms framing.
func NewPitchTracker() *PitchTracker {
	return &PitchTracker{
		FrameSize:       DefaultFrameSize,
		HopSize:         DefaultHopSize,
		MinHz:           PitchMinHz,
		MaxHz:           PitchMaxHz,
		VoicingStrength: 0.3,
	}
}

// Track returns one pitch value per frame; unvoiced frames are reported as 0.
func (t *PitchTracker) Track(sig *Signal) []float64 {
	if sig.Empty() || sig.SampleRate <= 0 {
		return nil
	}
	frames := Frames(sig.Samples, t.FrameSize, t.HopSize)
	pitches := make([]float64, len(frames))
	for i, frame := range frames {
		pitches[i] = t.framePitch(frame, sig.SampleRate)
	}
	return pitches
}

// VoicedRatio returns the fraction of frames with a detected pitch.
func VoicedRatio(pitches []float64) float64 {
	if len(pitches) == 0 {
		return 0
	}
	voiced := 0
	for _, p := range pitches {
		if p > 0 {
			voiced++
		}
	}
	return float64(voiced) / float64(len(pitches))
}

// Voiced filters the track down to voiced frames only.
func Voiced(pitches []float64) []float64 {
	out := make([]float64, 0, len(pitches))
	for _, p := range pitches {
		if p > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (t *PitchTracker) framePitch(frame []float64, sampleRate int) float64 {
	minLag := int(float64(sampleRate) / t.MaxHz)
	maxLag := int(float64(sampleRate) / t.MinHz)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0
	}

	var energy float64
	for _, v := range frame {
		energy += v * v
	}
	if energy < 1e-10 {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		norm := corr / energy
		if norm > bestCorr {
			bestCorr = norm
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < t.VoicingStrength {
		return 0
	}

	// Parabolic interpolation around the winning lag for sub-sample accuracy.
	refined := float64(bestLag)
	if bestLag > minLag && bestLag < maxLag {
		prev := t.lagCorr(frame, bestLag-1, energy)
		next := t.lagCorr(frame, bestLag+1, energy)
		denom := prev - 2*bestCorr + next
		if math.Abs(denom) > 1e-12 {
			refined += 0.5 * (prev - next) / denom
		}
	}

	return float64(sampleRate) / refined
}

func (t *PitchTracker) lagCorr(frame []float64, lag int, energy float64) float64 {
	var corr float64
	for i := 0; i+lag < len(frame); i++ {
		corr += frame[i] * frame[i+lag]
	}
	return corr / energy
}
