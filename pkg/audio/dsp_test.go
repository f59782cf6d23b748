package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrames(t *testing.T) {
	samples := make([]float64, 1000)
	frames := Frames(samples, 400, 160)

	// Partial tail frames are dropped.
	require.Len(t, frames, 4)
	for _, f := range frames {
		assert.Len(t, f, 400)
	}

	assert.Empty(t, Frames(make([]float64, 100), 400, 160))
}

func TestRMSEnvelope(t *testing.T) {
	// Loud first half, silent second half.
	samples := make([]float64, 3200)
	for i := 0; i < 1600; i++ {
		samples[i] = 0.5
	}
	env := RMSEnvelope(samples, 400, 160)
	require.NotEmpty(t, env)

	assert.InDelta(t, 0.5, env[0], 1e-6)
	assert.InDelta(t, 0.0, env[len(env)-1], 1e-6)
}

func TestZeroCrossingRate(t *testing.T) {
	// Alternating signal crosses on every sample transition.
	high := []float64{1, -1, 1, -1, 1, -1}
	assert.InDelta(t, 1.0, ZeroCrossingRate(high), 1e-9)

	flat := []float64{1, 1, 1, 1}
	assert.Equal(t, 0.0, ZeroCrossingRate(flat))
}

func TestHannWindow(t *testing.T) {
	w := HannWindow(401)
	assert.InDelta(t, 0.0, w[0], 1e-9)
	assert.InDelta(t, 1.0, w[200], 1e-9)
	assert.InDelta(t, 0.0, w[400], 1e-9)
}

func TestPowerSpectrum_PeakBin(t *testing.T) {
	// 128-sample series at 8 cycles per window puts the power in bin 8.
	n := 128
	series := make([]float64, n)
	for i := range series {
		series[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(n))
	}
	power := PowerSpectrum(series)
	require.Len(t, power, n/2+1)

	best := 0
	for i := range power {
		if power[i] > power[best] {
			best = i
		}
	}
	assert.Equal(t, 8, best)
}

func TestMovingAverage(t *testing.T) {
	series := []float64{0, 0, 3, 0, 0}
	smoothed := MovingAverage(series, 3)

	require.Len(t, smoothed, 5)
	assert.InDelta(t, 1.0, smoothed[1], 1e-9)
	assert.InDelta(t, 1.0, smoothed[2], 1e-9)
	assert.InDelta(t, 1.0, smoothed[3], 1e-9)

	// Width 1 is a passthrough.
	assert.Equal(t, series, MovingAverage(series, 1))
}

func TestFindPeaks(t *testing.T) {
	series := []float64{0, 0.1, 0.5, 0.1, 0.05, 0.3, 0.05, 0}

	peaks := FindPeaks(series, 0.2)
	require.Len(t, peaks, 2)
	assert.Equal(t, 2, peaks[0].Index)
	assert.Equal(t, 5, peaks[1].Index)
	assert.Greater(t, peaks[0].Prominence, peaks[1].Prominence)

	// Raising the floor keeps only the tall peak.
	peaks = FindPeaks(series, 0.4)
	require.Len(t, peaks, 1)
	assert.Equal(t, 2, peaks[0].Index)
}

func TestStats(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 5.0, Mean(values), 1e-9)
	assert.InDelta(t, 2.0, Std(values), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Std([]float64{3}))
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	assert.InDelta(t, 10, Percentile(values, 0), 1e-9)
	assert.InDelta(t, 30, Percentile(values, 50), 1e-9)
	assert.InDelta(t, 50, Percentile(values, 100), 1e-9)
	assert.InDelta(t, 18, Percentile(values, 20), 1e-9)
}

func TestSkewnessKurtosis(t *testing.T) {
	symmetric := []float64{-2, -1, 0, 1, 2}
	assert.InDelta(t, 0.0, Skewness(symmetric), 1e-9)

	// Uniform-ish data is platykurtic: excess kurtosis below zero.
	assert.Less(t, Kurtosis(symmetric), 0.0)
}
