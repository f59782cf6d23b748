package emotion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leon-madara/ResonaAI-sub003/pkg/features"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

func writeModel(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "emotion.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validModel = `{
	"labels": ["neutral", "sad"],
	"embedding_dim": 2,
	"scaler": {"mean": [0, 0, 0, 0], "std": [1, 1, 1, 1]},
	"embedding_head": {"weights": [[1, 0], [0, 1]], "bias": [0, 0]},
	"handcrafted_head": {"weights": [[1, 0], [0, 1]], "bias": [0, 0]},
	"head_weight": 0.6
}`

func TestLoadModel(t *testing.T) {
	m, err := LoadModel(writeModel(t, validModel))
	require.NoError(t, err)
	assert.Equal(t, []string{"neutral", "sad"}, m.Labels)
	assert.Equal(t, 2, m.EmbeddingDim)
	assert.Equal(t, 0.6, m.HeadWeight)
}

func TestLoadModel_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"labels":`},
		{"no labels", `{"labels": [], "head_weight": 0.5}`},
		{"unknown label", `{
			"labels": ["sad", "bored"],
			"embedding_head": {"weights": [[0], [0]]},
			"handcrafted_head": {"weights": [[0], [0]]},
			"head_weight": 0.5}`},
		{"head rows mismatch", `{
			"labels": ["neutral", "sad"],
			"embedding_head": {"weights": [[0]]},
			"handcrafted_head": {"weights": [[0], [0]]},
			"head_weight": 0.5}`},
		{"head weight out of range", `{
			"labels": ["neutral", "sad"],
			"embedding_head": {"weights": [[0], [0]]},
			"handcrafted_head": {"weights": [[0], [0]]},
			"head_weight": 1.0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadModel(writeModel(t, tc.content))
			assert.True(t, errors.Is(err, voice.ErrModelUnavailable))
		})
	}
}

func TestLoadModel_MissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.Is(err, voice.ErrModelUnavailable))
	assert.Equal(t, "MODEL_UNAVAILABLE", voice.ErrorCode(err))
}

func TestClassify_AppliesConfidenceFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.5
	c := NewClassifierWith(cfg, &MockPredictor{Label: voice.EmotionSad, Confidence: 0.35}, nil)

	res, err := c.Classify(&features.Vector{})
	require.NoError(t, err)

	// Low confidence falls back to neutral but keeps the computed score.
	assert.Equal(t, voice.EmotionNeutral, res.Label)
	assert.InDelta(t, 0.35, res.Confidence, 1e-9)
}

func TestClassify_ConfidentPrediction(t *testing.T) {
	c := NewClassifierWith(DefaultConfig(), &MockPredictor{Label: voice.EmotionSad, Confidence: 0.85}, nil)

	res, err := c.Classify(&features.Vector{Degraded: true})
	require.NoError(t, err)

	assert.Equal(t, voice.EmotionSad, res.Label)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.True(t, res.Degraded)
}

func TestClassify_PredictorError(t *testing.T) {
	c := NewClassifierWith(DefaultConfig(), &MockPredictor{Err: errors.New("broken")}, nil)

	_, err := c.Classify(&features.Vector{})
	assert.Error(t, err)
}

func TestNewClassifier_LoadsFromPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = writeModel(t, validModel)

	c, err := NewClassifier(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, c)

	cfg.ModelPath = filepath.Join(t.TempDir(), "absent.json")
	_, err = NewClassifier(cfg, nil)
	assert.Error(t, err)
}
