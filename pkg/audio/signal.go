package audio

import (
	"math"
	"time"
)

// Signal is a mono PCM buffer with its sample rate. Signals are ephemeral:
// each pipeline stage owns one only for the duration of the call.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length as a time.Duration.
func (s *Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Samples)) / float64(s.SampleRate) * float64(time.Second))
}

// Seconds returns the signal length in seconds.
func (s *Signal) Seconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Empty reports whether the signal has no samples.
func (s *Signal) Empty() bool {
	return s == nil || len(s.Samples) == 0
}

// Clone returns a deep copy. Used when a stage needs to mutate samples
// without touching the caller's buffer.
func (s *Signal) Clone() *Signal {
	out := make([]float64, len(s.Samples))
	copy(out, s.Samples)
	return &Signal{Samples: out, SampleRate: s.SampleRate}
}

// Peak returns the maximum absolute sample value.
func (s *Signal) Peak() float64 {
	peak := 0.0
	for _, v := range s.Samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square level of the whole signal.
func (s *Signal) RMS() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.Samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s.Samples)))
}

// Resample converts the signal to targetRate using linear interpolation.
// Good enough for analysis features; this path never feeds playback.
func (s *Signal) Resample(targetRate int) *Signal {
	if targetRate <= 0 || s.SampleRate == targetRate || len(s.Samples) == 0 {
		return s
	}
	ratio := float64(s.SampleRate) / float64(targetRate)
	outLen := int(float64(len(s.Samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(s.Samples)-1 {
			out[i] = s.Samples[len(s.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = s.Samples[idx]*(1-frac) + s.Samples[idx+1]*frac
	}
	return &Signal{Samples: out, SampleRate: targetRate}
}

// FromPCM16 converts little-endian 16-bit PCM bytes to a Signal with samples
// scaled to [-1, 1].
func FromPCM16(data []byte, sampleRate int) *Signal {
	n := len(data) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(data[2*i]) | int16(data[2*i+1])<<8
		samples[i] = float64(v) / 32768.0
	}
	return &Signal{Samples: samples, SampleRate: sampleRate}
}
