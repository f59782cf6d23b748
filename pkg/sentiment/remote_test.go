package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

func remoteModel(t *testing.T, handler http.HandlerFunc) *RemoteModel {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRemoteModel(RemoteConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestRemoteModel_Score(t *testing.T) {
	m := remoteModel(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sentiment", r.URL.Path)
		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "I'm fine, everything is great", req.Text)
		json.NewEncoder(w).Encode(scoreResponse{
			Label: voice.SentimentPositive, Score: 0.9, Valence: 0.95,
		})
	})

	res, err := m.Score(context.Background(), "I'm fine, everything is great")
	require.NoError(t, err)
	assert.Equal(t, voice.SentimentPositive, res.Label)
	assert.Equal(t, 0.9, res.Score)
	assert.Equal(t, 0.95, res.Valence)
}

func TestRemoteModel_HTTPError(t *testing.T) {
	m := remoteModel(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})

	_, err := m.Score(context.Background(), "hello")
	assert.True(t, errors.Is(err, voice.ErrModelUnavailable))
}

func TestRemoteModel_UnknownLabel(t *testing.T) {
	m := remoteModel(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(scoreResponse{Label: "elated", Score: 0.9})
	})

	_, err := m.Score(context.Background(), "hello")
	assert.True(t, errors.Is(err, voice.ErrModelUnavailable))
}
