package streaming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

type stubAnalyzer struct {
	calls   int
	lastSig *audio.Signal
	lastID  string
	err     error
}

func (a *stubAnalyzer) AnalyzeSegment(ctx context.Context, sig *audio.Signal, streamID string) (*voice.SessionAnalysis, error) {
	a.calls++
	a.lastSig = sig
	a.lastID = streamID
	if a.err != nil {
		return nil, a.err
	}
	return &voice.SessionAnalysis{SessionID: streamID, ProcessedAt: time.Now()}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinSegmentSec = 0.1
	cfg.VAD.SilenceFrames = 3
	cfg.IdleTimeout = 0 // no janitor in tests
	return cfg
}

func speechChunk(seconds float64) *audio.Signal {
	n := int(16000 * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.1
	}
	return &audio.Signal{Samples: samples, SampleRate: 16000}
}

func silenceChunk(seconds float64) *audio.Signal {
	return &audio.Signal{Samples: make([]float64, int(16000*seconds)), SampleRate: 16000}
}

func TestProcessChunk_EndOfUtteranceTriggersAnalysis(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := New(testConfig(), analyzer, nil)
	defer p.Close()
	ctx := context.Background()

	res, err := p.ProcessChunk(ctx, "stream-1", speechChunk(0.5))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, analyzer.calls)

	res, err = p.ProcessChunk(ctx, "stream-1", silenceChunk(0.2))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "stream-1", res.SessionID)
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, "stream-1", analyzer.lastID)
	// The analyzed segment spans the whole buffered utterance.
	assert.InDelta(t, 0.7, analyzer.lastSig.Seconds(), 0.05)
}

func TestProcessChunk_ShortSegmentDiscarded(t *testing.T) {
	cfg := testConfig()
	cfg.MinSegmentSec = 2.0
	analyzer := &stubAnalyzer{}
	p := New(cfg, analyzer, nil)
	defer p.Close()
	ctx := context.Background()

	_, err := p.ProcessChunk(ctx, "s", speechChunk(0.5))
	require.NoError(t, err)
	res, err := p.ProcessChunk(ctx, "s", silenceChunk(0.2))
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, analyzer.calls)
}

func TestProcessChunk_AnalyzerErrorPropagates(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("pipeline down")}
	p := New(testConfig(), analyzer, nil)
	defer p.Close()
	ctx := context.Background()

	_, err := p.ProcessChunk(ctx, "s", speechChunk(0.5))
	require.NoError(t, err)
	_, err = p.ProcessChunk(ctx, "s", silenceChunk(0.2))
	assert.Error(t, err)
}

func TestProcessChunk_ResamplesForeignRate(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := New(testConfig(), analyzer, nil)
	defer p.Close()
	ctx := context.Background()

	// Half a second at 8 kHz buffers as half a second at 16 kHz.
	chunk := &audio.Signal{Samples: make([]float64, 4000), SampleRate: 8000}
	for i := range chunk.Samples {
		chunk.Samples[i] = 0.1
	}
	_, err := p.ProcessChunk(ctx, "s", chunk)
	require.NoError(t, err)

	stats, err := p.GetStats("s")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stats.BufferedSec, 0.01)
	assert.True(t, stats.InSpeech)
}

func TestGetStats(t *testing.T) {
	analyzer := &stubAnalyzer{}
	p := New(testConfig(), analyzer, nil)
	defer p.Close()
	ctx := context.Background()

	_, err := p.GetStats("nope")
	assert.True(t, errors.Is(err, voice.ErrStreamNotFound))

	_, err = p.ProcessChunk(ctx, "s", speechChunk(0.5))
	require.NoError(t, err)
	_, err = p.ProcessChunk(ctx, "s", silenceChunk(0.2))
	require.NoError(t, err)

	stats, err := p.GetStats("s")
	require.NoError(t, err)
	assert.Equal(t, "s", stats.StreamID)
	assert.Equal(t, 2, stats.ChunksSeen)
	assert.Equal(t, 1, stats.SegmentsDone)
	assert.False(t, stats.InSpeech)
	assert.Equal(t, 0.0, stats.BufferedSec)
	assert.NotNil(t, stats.LastResult)
	assert.False(t, stats.LastActivity.IsZero())
}

func TestReset_DropsStream(t *testing.T) {
	p := New(testConfig(), &stubAnalyzer{}, nil)
	defer p.Close()
	ctx := context.Background()

	_, err := p.ProcessChunk(ctx, "s", speechChunk(0.2))
	require.NoError(t, err)

	p.Reset("s")
	_, err = p.GetStats("s")
	assert.True(t, errors.Is(err, voice.ErrStreamNotFound))

	// Resetting an unknown stream is a no-op.
	p.Reset("unknown")
}

func TestUpdateConfig_KeepsBuffers(t *testing.T) {
	p := New(testConfig(), &stubAnalyzer{}, nil)
	defer p.Close()
	ctx := context.Background()

	_, err := p.ProcessChunk(ctx, "s", speechChunk(0.3))
	require.NoError(t, err)

	cfg := testConfig()
	cfg.VAD.SpeechThreshold = 0.5
	p.UpdateConfig(cfg)

	stats, err := p.GetStats("s")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, stats.BufferedSec, 0.01)
}

func TestProcessChunk_IncrementsChunkCounter(t *testing.T) {
	p := New(testConfig(), &stubAnalyzer{}, nil)
	defer p.Close()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "chunks_total"})
	p.SetChunkCounter(counter)
	ctx := context.Background()

	_, err := p.ProcessChunk(ctx, "s", speechChunk(0.1))
	require.NoError(t, err)
	_, err = p.ProcessChunk(ctx, "s", speechChunk(0.1))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(counter))
}
