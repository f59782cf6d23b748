package emotion

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// ModelFile is the on-disk layout of a trained classifier. The scaler is
// fitted once at training time; both heads are linear softmax scorers over
// the scaled combined vector.
type ModelFile struct {
	Labels       []string   `json:"labels"`
	EmbeddingDim int        `json:"embedding_dim"`
	Scaler       Scaler     `json:"scaler"`
	Embedding    LinearHead `json:"embedding_head"`
	Handcrafted  LinearHead `json:"handcrafted_head"`
	// HeadWeight balances the two heads when both are usable (embedding
	// share; handcrafted gets the remainder).
	HeadWeight float64 `json:"head_weight"`
}

// Scaler applies per-dimension standardization.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Apply standardizes a copy of the input. Dimensions beyond the fitted range
// pass through unscaled rather than failing the call.
func (s *Scaler) Apply(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		if i < len(s.Mean) && i < len(s.Std) && s.Std[i] > 1e-12 {
			out[i] = (v - s.Mean[i]) / s.Std[i]
		} else {
			out[i] = v
		}
	}
	return out
}

// LinearHead is one softmax scorer of the ensemble.
type LinearHead struct {
	Weights [][]float64 `json:"weights"` // [label][dim]
	Bias    []float64   `json:"bias"`    // [label]
}

// Probabilities returns softmax class probabilities for the given slice of
// the scaled vector.
func (h *LinearHead) Probabilities(vec []float64) []float64 {
	n := len(h.Weights)
	logits := make([]float64, n)
	maxLogit := math.Inf(-1)
	for c := 0; c < n; c++ {
		var sum float64
		for d, w := range h.Weights[c] {
			if d < len(vec) {
				sum += w * vec[d]
			}
		}
		if c < len(h.Bias) {
			sum += h.Bias[c]
		}
		logits[c] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}

	var total float64
	probs := make([]float64, n)
	for c, l := range logits {
		probs[c] = math.Exp(l - maxLogit)
		total += probs[c]
	}
	for c := range probs {
		probs[c] /= total
	}
	return probs
}

// LoadModel reads and validates a model file. A missing or malformed file is
// a load-time model-unavailable error; classification never reloads.
func LoadModel(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, voice.NewModelUnavailableError("classifier",
			fmt.Sprintf("model file %s: %v", path, err))
	}
	var m ModelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, voice.NewModelUnavailableError("classifier",
			fmt.Sprintf("model file %s: %v", path, err))
	}
	if err := m.validate(); err != nil {
		return nil, voice.NewModelUnavailableError("classifier", err.Error())
	}
	return &m, nil
}

func (m *ModelFile) validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("model declares no labels")
	}
	for _, l := range m.Labels {
		found := false
		for _, known := range voice.EmotionLabels {
			if l == known {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("model declares unknown label %q", l)
		}
	}
	if len(m.Embedding.Weights) != len(m.Labels) || len(m.Handcrafted.Weights) != len(m.Labels) {
		return fmt.Errorf("head weight rows do not match label count")
	}
	if m.HeadWeight <= 0 || m.HeadWeight >= 1 {
		return fmt.Errorf("head_weight must be in (0, 1)")
	}
	return nil
}
