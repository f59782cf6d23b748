package features

// Family weights applied when flattening the named fields into the combined
// classification vector.
const (
	WeightEmbedding = 0.40
	WeightMFCC      = 0.20
	WeightSpectral  = 0.20
	WeightProsodic  = 0.20
)

// Vector is the fixed-shape numeric representation of one audio segment.
// Field groups correspond to the five extraction families; the embedding
// sub-vector comes from the pretrained speech model.
type Vector struct {
	// Spectral
	MFCC              []float64 `json:"mfcc"`
	SpectralCentroid  float64   `json:"spectral_centroid"`
	SpectralRolloff   float64   `json:"spectral_rolloff"`
	SpectralBandwidth float64   `json:"spectral_bandwidth"`
	ZeroCrossingRate  float64   `json:"zero_crossing_rate"`
	Contrast          []float64 `json:"contrast"`
	Chroma            []float64 `json:"chroma"`

	// Prosodic
	PitchMean   float64 `json:"pitch_mean"`
	PitchStd    float64 `json:"pitch_std"`
	PitchMin    float64 `json:"pitch_min"`
	PitchMax    float64 `json:"pitch_max"`
	PitchRange  float64 `json:"pitch_range"`
	EnergyMean  float64 `json:"energy_mean"`
	EnergyStd   float64 `json:"energy_std"`
	EnergyMax   float64 `json:"energy_max"`
	VoicedRatio float64 `json:"voiced_ratio"`

	// Temporal
	Duration   float64 `json:"duration"`
	SpeechRate float64 `json:"speech_rate"`
	PauseRatio float64 `json:"pause_ratio"`

	// Statistical
	Percentiles []float64 `json:"percentiles"` // 25 / 50 / 75 / 90
	Skewness    float64   `json:"skewness"`
	Kurtosis    float64   `json:"kurtosis"`

	// Embedding
	Embedding []float64 `json:"embedding"`

	// Degraded marks that the embedding backend failed and a zero vector was
	// substituted; the classifier lowers its confidence accordingly.
	Degraded bool `json:"degraded,omitempty"`
}

// Combined flattens the vector in a fixed order with the family weighting:
// embedding 40%, MFCC 20%, spectral 20%, prosodic (incl. temporal and
// statistical summaries) 20%. The order and weights must not change without
// retraining the classifier.
func (v *Vector) Combined() []float64 {
	out := make([]float64, 0, len(v.Embedding)+len(v.MFCC)+len(v.Contrast)+len(v.Chroma)+len(v.Percentiles)+18)

	for _, e := range v.Embedding {
		out = append(out, e*WeightEmbedding)
	}
	for _, c := range v.MFCC {
		out = append(out, c*WeightMFCC)
	}

	spectral := []float64{v.SpectralCentroid, v.SpectralRolloff, v.SpectralBandwidth, v.ZeroCrossingRate}
	spectral = append(spectral, v.Contrast...)
	spectral = append(spectral, v.Chroma...)
	for _, s := range spectral {
		out = append(out, s*WeightSpectral)
	}

	prosodic := []float64{
		v.PitchMean, v.PitchStd, v.PitchMin, v.PitchMax, v.PitchRange,
		v.EnergyMean, v.EnergyStd, v.EnergyMax, v.VoicedRatio,
		v.Duration, v.SpeechRate, v.PauseRatio,
		v.Skewness, v.Kurtosis,
	}
	prosodic = append(prosodic, v.Percentiles...)
	for _, p := range prosodic {
		out = append(out, p*WeightProsodic)
	}

	return out
}

// HandcraftedOnly flattens everything except the embedding. Used by the
// ensemble's fallback scorer when the embedding backend is down.
func (v *Vector) HandcraftedOnly() []float64 {
	saved := v.Embedding
	v.Embedding = nil
	out := v.Combined()
	v.Embedding = saved
	return out
}
