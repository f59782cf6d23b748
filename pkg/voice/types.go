package voice

import (
	"time"
)

// Emotion labels produced by the voice classifier.
const (
	EmotionNeutral  = "neutral"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionAngry    = "angry"
	EmotionFear     = "fear"
	EmotionSurprise = "surprise"
	EmotionDisgust  = "disgust"
)

// EmotionLabels is the fixed set of labels the classifier may return.
var EmotionLabels = []string{
	EmotionNeutral, EmotionHappy, EmotionSad, EmotionAngry,
	EmotionFear, EmotionSurprise, EmotionDisgust,
}

// Sentiment labels for transcript text.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Risk bands shared by dissonance and micro-moment results.
const (
	RiskLow        = "low"
	RiskMedium     = "medium"
	RiskMediumHigh = "medium-high"
	RiskHigh       = "high"
)

// Dissonance levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Dissonance interpretations.
const (
	InterpretAuthentic            = "authentic"
	InterpretDefensiveConcealment = "defensive_concealment"
	InterpretRecoveryIndicator    = "recovery_indicator"
	InterpretIntensityMismatch    = "intensity_mismatch"
	InterpretUnclear              = "unclear"
)

// EmotionResult is the classifier verdict for one audio segment.
type EmotionResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	// Degraded is set when the embedding backend was unavailable and the
	// prediction used handcrafted features only.
	Degraded bool `json:"degraded,omitempty"`
}

// SentimentResult is the text-only valence verdict for a transcript.
type SentimentResult struct {
	Label   string  `json:"label"`
	Score   float64 `json:"score"`
	Valence float64 `json:"valence"`
}

// DissonanceDetails carries the raw numbers behind a dissonance score.
type DissonanceDetails struct {
	SentimentScore float64 `json:"sentiment_score"`
	EmotionScore   float64 `json:"emotion_score"`
	Gap            float64 `json:"gap"`
	NormalizedGap  float64 `json:"normalized_gap"`
}

// DissonanceResult describes the gap between what was said and how it sounded.
type DissonanceResult struct {
	Level          string            `json:"level"`
	Score          float64           `json:"score"`
	StatedEmotion  string            `json:"stated_emotion"`
	ActualEmotion  string            `json:"actual_emotion"`
	Interpretation string            `json:"interpretation"`
	RiskLevel      string            `json:"risk_level"`
	Confidence     float64           `json:"confidence"`
	Details        DissonanceDetails `json:"details"`
}

// TremorResult reports 4-8 Hz pitch-envelope oscillation.
type TremorResult struct {
	Detected    bool    `json:"detected"`
	Intensity   float64 `json:"intensity"`
	FrequencyHz float64 `json:"frequency_hz,omitempty"`
}

// SighResult reports validated rise-then-decay energy events.
type SighResult struct {
	Count      int       `json:"count"`
	Intensity  float64   `json:"intensity"`
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// VoiceCrackResult reports abrupt frame-to-frame pitch jumps.
type VoiceCrackResult struct {
	Count      int       `json:"count"`
	Intensity  float64   `json:"intensity"`
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// HesitationResult reports low-energy pause segments.
type HesitationResult struct {
	Count           int     `json:"count"`
	AverageDuration float64 `json:"average_duration"`
	MaxDuration     float64 `json:"max_duration"`
	LongPauses      int     `json:"long_pauses"`
	PauseRatio      float64 `json:"pause_ratio"`
}

// MicroMomentResult bundles the four physiological stress detectors.
type MicroMomentResult struct {
	Tremor         TremorResult     `json:"tremor"`
	Sighs          SighResult       `json:"sighs"`
	VoiceCracks    VoiceCrackResult `json:"voice_cracks"`
	Hesitations    HesitationResult `json:"hesitations"`
	OverallRisk    string           `json:"overall_risk"`
	Interpretation string           `json:"interpretation"`
}

// SessionMetrics are the per-session voice statistics fed to the baseline
// tracker. Values are session-level summaries, not frame series.
type SessionMetrics struct {
	PitchMean       float64            `json:"pitch_mean"`
	PitchStd        float64            `json:"pitch_std"`
	EnergyMean      float64            `json:"energy_mean"`
	EnergyStd       float64            `json:"energy_std"`
	SpeechRate      float64            `json:"speech_rate"`
	ProsodyVariance float64            `json:"prosody_variance"`
	EmotionDist     map[string]float64 `json:"emotion_distribution,omitempty"`
}

// SessionDeviation is the distance of one session from the user's baseline.
// Immutable once created.
type SessionDeviation struct {
	UserID             string    `json:"user_id"`
	SessionID          string    `json:"session_id"`
	Established        bool      `json:"established"`
	DeviationScore     float64   `json:"deviation_score"`
	SignificantChanges []string  `json:"significant_changes,omitempty"`
	BaselineValues     []float64 `json:"baseline_values,omitempty"`
	CurrentValues      []float64 `json:"current_values,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// SessionAnalysis is the combined record handed to the risk-assessment
// collaborator. All fields are JSON-serializable plain data.
type SessionAnalysis struct {
	SessionID    string             `json:"session_id"`
	UserID       string             `json:"user_id"`
	Emotion      *EmotionResult     `json:"emotion"`
	Dissonance   *DissonanceResult  `json:"dissonance"`
	MicroMoments *MicroMomentResult `json:"micro_moments"`
	Deviation    *SessionDeviation  `json:"deviation,omitempty"`
	Metrics      *SessionMetrics    `json:"metrics,omitempty"`
	Degraded     bool               `json:"degraded,omitempty"`
	ProcessedAt  time.Time          `json:"processed_at"`
}

// Clamp limits v to [lo, hi]. Result fields that declare a range pass
// through here before leaving a component.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
