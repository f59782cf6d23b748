package emotion

import (
	"fmt"
)

// Ensemble combines a softmax head over the embedding sub-vector with a head
// over the handcrafted features. When the embedding portion is all zeros
// (degraded extraction) the embedding head is muted and the handcrafted head
// carries the full weight.
type Ensemble struct {
	model *ModelFile
}

// NewEnsemble wraps a loaded model.
func NewEnsemble(model *ModelFile) *Ensemble {
	return &Ensemble{model: model}
}

// Predict standardizes the combined vector, scores both heads and blends
// their probabilities.
func (e *Ensemble) Predict(vec []float64) (string, float64, error) {
	if len(vec) < e.model.EmbeddingDim {
		return "", 0, fmt.Errorf("vector too short: %d < embedding dim %d",
			len(vec), e.model.EmbeddingDim)
	}

	scaled := e.model.Scaler.Apply(vec)
	embPart := scaled[:e.model.EmbeddingDim]
	handPart := scaled[e.model.EmbeddingDim:]

	handProbs := e.model.Handcrafted.Probabilities(handPart)

	embWeight := e.model.HeadWeight
	if allZero(vec[:e.model.EmbeddingDim]) {
		embWeight = 0
	}

	probs := make([]float64, len(e.model.Labels))
	if embWeight > 0 {
		embProbs := e.model.Embedding.Probabilities(embPart)
		for i := range probs {
			probs[i] = embWeight*embProbs[i] + (1-embWeight)*handProbs[i]
		}
	} else {
		copy(probs, handProbs)
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return e.model.Labels[best], probs[best], nil
}

func allZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
