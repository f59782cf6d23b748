package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_Duration(t *testing.T) {
	sig := &Signal{Samples: make([]float64, 16000), SampleRate: 16000}
	assert.Equal(t, time.Second, sig.Duration())
	assert.InDelta(t, 1.0, sig.Seconds(), 1e-9)

	assert.Equal(t, time.Duration(0), (&Signal{Samples: []float64{1}}).Duration())
}

func TestSignal_PeakAndRMS(t *testing.T) {
	sig := &Signal{Samples: []float64{0.5, -0.8, 0.2}, SampleRate: 16000}
	assert.InDelta(t, 0.8, sig.Peak(), 1e-9)
	assert.Greater(t, sig.RMS(), 0.0)

	empty := &Signal{SampleRate: 16000}
	assert.Equal(t, 0.0, empty.RMS())
	assert.True(t, empty.Empty())
}

func TestSignal_Clone(t *testing.T) {
	sig := &Signal{Samples: []float64{1, 2, 3}, SampleRate: 8000}
	clone := sig.Clone()
	clone.Samples[0] = 99

	assert.Equal(t, 1.0, sig.Samples[0])
	assert.Equal(t, sig.SampleRate, clone.SampleRate)
}

func TestSignal_Resample(t *testing.T) {
	sig := sine(100, 16000, 0.25)
	down := sig.Resample(8000)

	assert.Equal(t, 8000, down.SampleRate)
	assert.InDelta(t, float64(len(sig.Samples))/2, float64(len(down.Samples)), 2)
	// A low-frequency tone survives linear interpolation nearly intact.
	assert.InDelta(t, sig.RMS(), down.RMS(), 0.02)

	same := sig.Resample(16000)
	assert.Same(t, sig, same)
}

func TestFromPCM16(t *testing.T) {
	// 0x7FFF (max positive), 0x8000 (max negative), 0x0000.
	data := []byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}
	sig := FromPCM16(data, 16000)

	require.Len(t, sig.Samples, 3)
	assert.InDelta(t, 1.0, sig.Samples[0], 1e-3)
	assert.InDelta(t, -1.0, sig.Samples[1], 1e-9)
	assert.Equal(t, 0.0, sig.Samples[2])
	assert.Equal(t, 16000, sig.SampleRate)
}
