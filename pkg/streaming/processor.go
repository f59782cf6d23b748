package streaming

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// Analyzer runs the full pipeline on one buffered utterance. The engine
// satisfies this; tests substitute a stub.
type Analyzer interface {
	AnalyzeSegment(ctx context.Context, sig *audio.Signal, streamID string) (*voice.SessionAnalysis, error)
}

// Config tunes per-stream buffering.
type Config struct {
	SampleRate    int           `mapstructure:"sample_rate" validate:"gt=0"`
	FrameSize     int           `mapstructure:"frame_size" validate:"gt=0"`
	MaxBufferSec  float64       `mapstructure:"max_buffer_sec" validate:"gt=0"`
	MinSegmentSec float64       `mapstructure:"min_segment_sec"`
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	VAD           VADConfig     `mapstructure:"vad"`
}

// DefaultConfig returns the deployed streaming settings.
func DefaultConfig() Config {
	return Config{
		SampleRate:    16000,
		FrameSize:     160,
		MaxBufferSec:  30,
		MinSegmentSec: 0.5,
		IdleTimeout:   5 * time.Minute,
		VAD:           DefaultVADConfig(),
	}
}

// Stats is a snapshot of one stream's state.
type Stats struct {
	StreamID     string                 `json:"stream_id"`
	BufferedSec  float64                `json:"buffered_sec"`
	InSpeech     bool                   `json:"in_speech"`
	ChunksSeen   int                    `json:"chunks_seen"`
	SegmentsDone int                    `json:"segments_done"`
	LastActivity time.Time              `json:"last_activity"`
	LastResult   *voice.SessionAnalysis `json:"last_result,omitempty"`
}

// stream is the per-stream mutable state. All access goes through its mutex.
type stream struct {
	mu           sync.Mutex
	id           string
	buf          []float64
	residual     []float64
	vad          *VAD
	wasSpeech    bool
	chunksSeen   int
	segmentsDone int
	lastActivity time.Time
	lastResult   *voice.SessionAnalysis
}

// Processor manages many concurrent streams, each with independent buffer
// and VAD state. An idle janitor tears down streams that stop sending.
type Processor struct {
	analyzer Analyzer
	logger   *zap.Logger
	chunks   prometheus.Counter

	mu      sync.RWMutex
	cfg     Config
	streams map[string]*stream

	done chan struct{}
	once sync.Once
}

// New builds a Processor and starts its idle janitor.
func New(cfg Config, analyzer Analyzer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SampleRate <= 0 {
		cfg = DefaultConfig()
	}
	p := &Processor{
		analyzer: analyzer,
		logger:   logger,
		cfg:      cfg,
		streams:  make(map[string]*stream),
		done:     make(chan struct{}),
	}
	if cfg.IdleTimeout > 0 {
		go p.janitor()
	}
	return p
}

// SetChunkCounter wires a counter incremented once per ingested chunk.
func (p *Processor) SetChunkCounter(c prometheus.Counter) {
	p.chunks = c
}

// Close stops the janitor and drops all stream state.
func (p *Processor) Close() {
	p.once.Do(func() { close(p.done) })
	p.mu.Lock()
	p.streams = make(map[string]*stream)
	p.mu.Unlock()
}

// UpdateConfig swaps thresholds live. Existing streams pick up the new VAD
// settings on their next chunk; buffered audio is kept.
func (p *Processor) UpdateConfig(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = p.cfg.SampleRate
	}
	p.cfg = cfg
	for _, s := range p.streams {
		s.mu.Lock()
		s.vad = NewVAD(cfg.VAD)
		s.mu.Unlock()
	}
}

// Reset clears one stream's buffer and VAD state. Unknown ids are a no-op.
func (p *Processor) Reset(streamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.streams, streamID)
}

// GetStats snapshots one stream. Returns ErrStreamNotFound for unknown ids.
func (p *Processor) GetStats(streamID string) (*Stats, error) {
	p.mu.RLock()
	s, ok := p.streams[streamID]
	cfg := p.cfg
	p.mu.RUnlock()
	if !ok {
		return nil, voice.ErrStreamNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Stats{
		StreamID:     s.id,
		BufferedSec:  float64(len(s.buf)) / float64(cfg.SampleRate),
		InSpeech:     s.wasSpeech,
		ChunksSeen:   s.chunksSeen,
		SegmentsDone: s.segmentsDone,
		LastActivity: s.lastActivity,
		LastResult:   s.lastResult,
	}, nil
}

// ProcessChunk appends a chunk to the stream's buffer and, when the voice
// gate detects an end of utterance, runs the full pipeline on the buffered
// segment. Returns nil with no error while accumulating.
func (p *Processor) ProcessChunk(ctx context.Context, streamID string, chunk *audio.Signal) (*voice.SessionAnalysis, error) {
	p.mu.Lock()
	cfg := p.cfg
	s, ok := p.streams[streamID]
	if !ok {
		s = &stream{id: streamID, vad: NewVAD(cfg.VAD)}
		p.streams[streamID] = s
	}
	p.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunksSeen++
	s.lastActivity = time.Now()
	if p.chunks != nil {
		p.chunks.Inc()
	}

	samples := chunk.Samples
	if chunk.SampleRate != cfg.SampleRate {
		samples = chunk.Resample(cfg.SampleRate).Samples
	}
	s.buf = append(s.buf, samples...)

	maxSamples := int(cfg.MaxBufferSec * float64(cfg.SampleRate))
	if len(s.buf) > maxSamples {
		s.buf = s.buf[len(s.buf)-maxSamples:]
	}

	// Feed whole frames through the gate; keep the tail for the next chunk.
	frames := append(s.residual, samples...)
	var utteranceEnded bool
	for len(frames) >= cfg.FrameSize {
		inSpeech := s.vad.Feed(frames[:cfg.FrameSize])
		if s.wasSpeech && !inSpeech {
			utteranceEnded = true
		}
		s.wasSpeech = inSpeech
		frames = frames[cfg.FrameSize:]
	}
	s.residual = frames

	if !utteranceEnded {
		return nil, nil
	}

	segment := &audio.Signal{Samples: s.buf, SampleRate: cfg.SampleRate}
	s.buf = nil
	if segment.Seconds() < cfg.MinSegmentSec {
		p.logger.Debug("discarding short segment",
			zap.String("stream_id", streamID),
			zap.Float64("seconds", segment.Seconds()))
		return nil, nil
	}

	result, err := p.analyzer.AnalyzeSegment(ctx, segment, streamID)
	if err != nil {
		p.logger.Error("segment analysis failed",
			zap.String("stream_id", streamID), zap.Error(err))
		return nil, err
	}
	s.segmentsDone++
	s.lastResult = result
	p.logger.Info("utterance analyzed",
		zap.String("stream_id", streamID),
		zap.Float64("seconds", segment.Seconds()),
		zap.Int("segments_done", s.segmentsDone))
	return result, nil
}

// janitor drops streams idle past the configured timeout.
func (p *Processor) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
		}
		p.mu.Lock()
		timeout := p.cfg.IdleTimeout
		for id, s := range p.streams {
			s.mu.Lock()
			idle := time.Since(s.lastActivity)
			s.mu.Unlock()
			if idle > timeout {
				delete(p.streams, id)
				p.logger.Info("stream expired", zap.String("stream_id", id),
					zap.Duration("idle", idle))
			}
		}
		p.mu.Unlock()
	}
}
