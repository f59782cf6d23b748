package emotion

// MockPredictor returns a fixed answer. Test-only: production deployments
// must load a trained model file, there is no synthetic fallback path.
type MockPredictor struct {
	Label      string
	Confidence float64
	Err        error
}

func (m *MockPredictor) Predict(vec []float64) (string, float64, error) {
	if m.Err != nil {
		return "", 0, m.Err
	}
	return m.Label, m.Confidence, nil
}
