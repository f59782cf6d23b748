package features

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// EmbeddingModel produces a fixed-length representation of a speech segment.
// Implementations must mean-pool over time so the dimension is independent of
// segment length.
type EmbeddingModel interface {
	Embed(ctx context.Context, sig *audio.Signal) ([]float64, error)
	Dimension() int
}

// EmbeddingConfig points at the speech-representation inference service.
type EmbeddingConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Dimension int           `mapstructure:"dimension" validate:"gt=0"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultEmbeddingConfig matches a locally hosted wav2vec-style service.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		BaseURL:   "http://localhost:8006",
		Dimension: 192,
		Timeout:   10 * time.Second,
	}
}

// RestEmbedder calls the embedding service over HTTP. The model itself is
// loaded once in that process; this client is read-only shared state and safe
// for concurrent use.
type RestEmbedder struct {
	cfg    EmbeddingConfig
	client *resty.Client
	logger *zap.Logger
}

// NewRestEmbedder builds the HTTP embedder.
func NewRestEmbedder(cfg EmbeddingConfig, logger *zap.Logger) *RestEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &RestEmbedder{cfg: cfg, client: client, logger: logger}
}

func (e *RestEmbedder) Dimension() int {
	return e.cfg.Dimension
}

type embedRequest struct {
	AudioBase64 string `json:"audio_base64"`
	SampleRate  int    `json:"sample_rate"`
	Pooling     string `json:"pooling"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed sends the 16-bit PCM rendering of the signal and returns the pooled
// vector. A transport or shape failure is reported as model-unavailable; the
// extractor substitutes a zero vector and marks the result degraded.
func (e *RestEmbedder) Embed(ctx context.Context, sig *audio.Signal) ([]float64, error) {
	pcm := make([]byte, len(sig.Samples)*2)
	for i, s := range sig.Samples {
		v := int16(voice.Clamp(s, -1, 1) * 32767)
		pcm[2*i] = byte(v)
		pcm[2*i+1] = byte(v >> 8)
	}

	var out embedResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embedRequest{
			AudioBase64: base64.StdEncoding.EncodeToString(pcm),
			SampleRate:  sig.SampleRate,
			Pooling:     "mean",
		}).
		SetResult(&out).
		Post("/v1/embed")
	if err != nil {
		return nil, voice.NewModelUnavailableError("embedding", err.Error())
	}
	if resp.IsError() {
		return nil, voice.NewModelUnavailableError("embedding",
			fmt.Sprintf("HTTP %d", resp.StatusCode()))
	}
	if len(out.Embedding) != e.cfg.Dimension {
		return nil, voice.NewModelUnavailableError("embedding",
			fmt.Sprintf("expected %d dims, got %d", e.cfg.Dimension, len(out.Embedding)))
	}
	return out.Embedding, nil
}
