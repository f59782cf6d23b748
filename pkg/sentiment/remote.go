package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// RemoteConfig points at the text sentiment service.
type RemoteConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultRemoteConfig returns the local deployment endpoint.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		BaseURL: "http://localhost:8007",
		Timeout: 5 * time.Second,
	}
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Valence float64 `json:"valence"`
}

// RemoteModel calls the sentiment service over HTTP.
type RemoteModel struct {
	client *resty.Client
}

// NewRemoteModel builds the HTTP-backed model.
func NewRemoteModel(cfg RemoteConfig) *RemoteModel {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &RemoteModel{client: client}
}

// Score posts the transcript and maps transport or HTTP failures onto the
// retryable model-unavailable error.
func (m *RemoteModel) Score(ctx context.Context, text string) (*voice.SentimentResult, error) {
	var out scoreResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(scoreRequest{Text: text}).
		SetResult(&out).
		Post("/v1/sentiment")
	if err != nil {
		return nil, voice.NewModelUnavailableError("sentiment", err.Error())
	}
	if resp.IsError() {
		return nil, voice.NewModelUnavailableError("sentiment",
			fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.String()))
	}
	switch out.Label {
	case voice.SentimentPositive, voice.SentimentNegative, voice.SentimentNeutral:
	default:
		return nil, voice.NewModelUnavailableError("sentiment",
			fmt.Sprintf("unknown label %q", out.Label))
	}
	return &voice.SentimentResult{Label: out.Label, Score: out.Score, Valence: out.Valence}, nil
}
