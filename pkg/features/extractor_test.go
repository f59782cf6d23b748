package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

type stubEmbedder struct {
	vec   []float64
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, sig *audio.Signal) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) Dimension() int { return 4 }

func testTone(freq float64, seconds float64) *audio.Signal {
	const rate = 16000
	n := int(rate * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return &audio.Signal{Samples: samples, SampleRate: rate}
}

func TestExtract_Tone(t *testing.T) {
	embedder := &stubEmbedder{vec: []float64{0.1, 0.2, 0.3, 0.4}}
	ex := New(DefaultConfig(), embedder, nil)

	vec, err := ex.Extract(context.Background(), testTone(200, 1.0))
	require.NoError(t, err)

	assert.Len(t, vec.MFCC, 13)
	assert.Len(t, vec.Contrast, 6)
	assert.Len(t, vec.Chroma, 12)
	assert.Len(t, vec.Percentiles, 4)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, vec.Embedding)
	assert.False(t, vec.Degraded)

	// A 200 Hz tone is voiced nearly everywhere and pitched around 200.
	assert.InDelta(t, 200, vec.PitchMean, 10)
	assert.Greater(t, vec.VoicedRatio, 0.9)
	assert.InDelta(t, 1.0, vec.Duration, 1e-6)
	assert.Greater(t, vec.EnergyMean, 0.0)
	assert.Equal(t, 1, embedder.calls)
}

func TestExtract_EmptySignal(t *testing.T) {
	ex := New(DefaultConfig(), nil, nil)

	_, err := ex.Extract(context.Background(), &audio.Signal{SampleRate: 16000})
	assert.True(t, errors.Is(err, voice.ErrEmptySignal))
}

func TestExtract_EmbeddingOutageDegrades(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("connection refused")}
	ex := New(DefaultConfig(), embedder, nil)

	vec, err := ex.Extract(context.Background(), testTone(150, 0.5))
	require.NoError(t, err)

	assert.True(t, vec.Degraded)
	assert.Equal(t, make([]float64, 4), vec.Embedding)
}

func TestExtract_NilEmbedderSkipsFamily(t *testing.T) {
	ex := New(DefaultConfig(), nil, nil)

	vec, err := ex.Extract(context.Background(), testTone(150, 0.5))
	require.NoError(t, err)

	assert.Empty(t, vec.Embedding)
	assert.False(t, vec.Degraded)
}

func TestExtract_DisabledFamiliesStayZero(t *testing.T) {
	cfg := Config{EnableSpectral: true}
	ex := New(cfg, nil, nil)

	vec, err := ex.Extract(context.Background(), testTone(200, 0.5))
	require.NoError(t, err)

	assert.Equal(t, 0.0, vec.PitchMean)
	assert.Equal(t, 0.0, vec.Duration)
	assert.NotEqual(t, 0.0, vec.SpectralCentroid)
}

func TestCombined_OrderAndWeights(t *testing.T) {
	vec := &Vector{
		MFCC:        []float64{1, 1},
		Embedding:   []float64{1},
		Percentiles: []float64{},
	}

	out := vec.Combined()
	require.GreaterOrEqual(t, len(out), 3)
	assert.InDelta(t, WeightEmbedding, out[0], 1e-9)
	assert.InDelta(t, WeightMFCC, out[1], 1e-9)
	assert.InDelta(t, WeightMFCC, out[2], 1e-9)
}

func TestHandcraftedOnly_DropsEmbedding(t *testing.T) {
	vec := &Vector{
		MFCC:      []float64{1},
		Embedding: []float64{5, 5, 5},
	}

	hand := vec.HandcraftedOnly()
	full := vec.Combined()

	assert.Equal(t, len(full)-3, len(hand))
	assert.Equal(t, []float64{5, 5, 5}, vec.Embedding)
}

func TestSessionMetrics_Derivation(t *testing.T) {
	vec := &Vector{
		PitchMean:  180,
		PitchStd:   20,
		EnergyMean: 0.4,
		EnergyStd:  0.1,
		SpeechRate: 3.5,
	}

	m := vec.SessionMetrics()
	assert.Equal(t, 180.0, m.PitchMean)
	assert.Equal(t, 3.5, m.SpeechRate)
	assert.InDelta(t, 20*20+0.1*0.1, m.ProsodyVariance, 1e-9)
}
