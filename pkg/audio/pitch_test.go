package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, sampleRate int, seconds float64) *Signal {
	n := int(float64(sampleRate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &Signal{Samples: samples, SampleRate: sampleRate}
}

func TestTrack_PureTone(t *testing.T) {
	sig := sine(200, 16000, 0.5)
	tracker := NewPitchTracker()

	pitches := tracker.Track(sig)
	require.NotEmpty(t, pitches)

	voiced := Voiced(pitches)
	require.NotEmpty(t, voiced)
	assert.Greater(t, VoicedRatio(pitches), 0.9)

	for _, p := range voiced {
		assert.InDelta(t, 200.0, p, 5.0)
	}
}

func TestTrack_SilenceIsUnvoiced(t *testing.T) {
	sig := &Signal{Samples: make([]float64, 8000), SampleRate: 16000}
	tracker := NewPitchTracker()

	pitches := tracker.Track(sig)
	require.NotEmpty(t, pitches)
	assert.Equal(t, 0.0, VoicedRatio(pitches))
}

func TestTrack_OutOfBandTone(t *testing.T) {
	// 1 kHz is above the voice band; the tracker must not report it.
	sig := sine(1000, 16000, 0.3)
	tracker := NewPitchTracker()

	for _, p := range tracker.Track(sig) {
		if p > 0 {
			assert.GreaterOrEqual(t, p, PitchMinHz)
			assert.LessOrEqual(t, p, PitchMaxHz+10)
		}
	}
}

func TestTrack_EmptySignal(t *testing.T) {
	tracker := NewPitchTracker()
	assert.Nil(t, tracker.Track(&Signal{SampleRate: 16000}))
	assert.Nil(t, tracker.Track(&Signal{Samples: []float64{0.1}, SampleRate: 0}))
}

func TestVoiced_Filters(t *testing.T) {
	pitches := []float64{0, 120, 0, 130, 125, 0}
	assert.Equal(t, []float64{120, 130, 125}, Voiced(pitches))
	assert.InDelta(t, 0.5, VoicedRatio(pitches), 1e-9)
	assert.Equal(t, 0.0, VoicedRatio(nil))
}
