package audio

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

// Default analysis framing: 25 ms windows with 10 ms hop at 16 kHz.
const (
	DefaultFrameSize = 400
	DefaultHopSize   = 160
)

// Frames splits samples into hop-spaced windows. The last partial window is
// dropped; detectors that need it pad the signal first.
func Frames(samples []float64, frameSize, hopSize int) [][]float64 {
	if frameSize <= 0 || hopSize <= 0 || len(samples) < frameSize {
		return nil
	}
	n := (len(samples)-frameSize)/hopSize + 1
	frames := make([][]float64, n)
	for i := 0; i < n; i++ {
		start := i * hopSize
		frames[i] = samples[start : start+frameSize]
	}
	return frames
}

// RMSEnvelope computes per-frame RMS energy.
func RMSEnvelope(samples []float64, frameSize, hopSize int) []float64 {
	frames := Frames(samples, frameSize, hopSize)
	env := make([]float64, len(frames))
	for i, frame := range frames {
		var sum float64
		for _, v := range frame {
			sum += v * v
		}
		env[i] = math.Sqrt(sum / float64(len(frame)))
	}
	return env
}

// ZeroCrossingRate returns the fraction of adjacent sample pairs that change
// sign.
func ZeroCrossingRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i-1] >= 0) != (samples[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// HannWindow returns an n-point Hann window.
func HannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// MagnitudeSpectrum windows the frame and returns the one-sided FFT magnitude.
func MagnitudeSpectrum(frame []float64) []float64 {
	if len(frame) == 0 {
		return nil
	}
	windowed := make([]float64, len(frame))
	win := HannWindow(len(frame))
	for i, v := range frame {
		windowed[i] = v * win[i]
	}
	spectrum := fft.FFTReal(windowed)
	half := len(spectrum)/2 + 1
	mags := make([]float64, half)
	for i := 0; i < half; i++ {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return mags
}

// PowerSpectrum returns the one-sided power spectrum of an arbitrary series
// (no windowing). Used for envelope-rate analysis such as tremor banding.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(series)
	half := len(spectrum)/2 + 1
	power := make([]float64, half)
	for i := 0; i < half; i++ {
		m := cmplx.Abs(spectrum[i])
		power[i] = m * m
	}
	return power
}

// MovingAverage smooths a series with a centered window of the given width.
func MovingAverage(series []float64, width int) []float64 {
	if width <= 1 || len(series) == 0 {
		return series
	}
	out := make([]float64, len(series))
	half := width / 2
	for i := range series {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(series) {
			hi = len(series)
		}
		var sum float64
		for _, v := range series[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// Peak is a local maximum in a series.
type Peak struct {
	Index      int
	Value      float64
	Prominence float64
}

// FindPeaks locates local maxima whose prominence over the surrounding
// valleys is at least minProminence.
func FindPeaks(series []float64, minProminence float64) []Peak {
	var peaks []Peak
	for i := 1; i < len(series)-1; i++ {
		if series[i] <= series[i-1] || series[i] < series[i+1] {
			continue
		}
		// Walk outward to the lowest valley on each side.
		leftMin := series[i]
		for j := i - 1; j >= 0 && series[j] < series[i]; j-- {
			if series[j] < leftMin {
				leftMin = series[j]
			}
		}
		rightMin := series[i]
		for j := i + 1; j < len(series) && series[j] < series[i]; j++ {
			if series[j] < rightMin {
				rightMin = series[j]
			}
		}
		base := math.Max(leftMin, rightMin)
		prominence := series[i] - base
		if prominence >= minProminence {
			peaks = append(peaks, Peak{Index: i, Value: series[i], Prominence: prominence})
		}
	}
	return peaks
}

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std returns the population standard deviation.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Percentile returns the p-th percentile (0-100) by nearest-rank on a sorted
// copy of the input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// Skewness returns the third standardized moment, 0 when the spread is
// degenerate.
func Skewness(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	std := Std(values)
	if std == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d
	}
	return sum / float64(len(values))
}

// Kurtosis returns excess kurtosis (normal distribution scores 0).
func Kurtosis(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	std := Std(values)
	if std == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d * d
	}
	return sum/float64(len(values)) - 3
}
