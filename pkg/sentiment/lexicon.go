package sentiment

import (
	"context"
	"strings"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// LexiconModel is a dependency-free fallback scorer used when no remote
// service is configured. It counts polarity words and handles simple
// negation ("not fine" flips polarity for the following word).
type LexiconModel struct {
	positive map[string]float64
	negative map[string]float64
}

// NewLexiconModel builds the fallback scorer with its built-in wordlist.
func NewLexiconModel() *LexiconModel {
	return &LexiconModel{
		positive: map[string]float64{
			"good": 0.6, "great": 0.8, "fine": 0.4, "okay": 0.3, "ok": 0.3,
			"happy": 0.8, "love": 0.9, "wonderful": 0.9, "better": 0.5,
			"calm": 0.5, "relaxed": 0.6, "excited": 0.7, "glad": 0.7,
			"well": 0.4, "perfect": 0.9, "amazing": 0.9,
		},
		negative: map[string]float64{
			"bad": -0.6, "sad": -0.8, "tired": -0.4, "awful": -0.9,
			"terrible": -0.9, "angry": -0.7, "hate": -0.9, "worse": -0.6,
			"anxious": -0.7, "worried": -0.6, "scared": -0.8, "afraid": -0.8,
			"alone": -0.5, "lonely": -0.7, "hurt": -0.7, "exhausted": -0.6,
			"stressed": -0.7, "hopeless": -0.9,
		},
	}
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true,
	"don't": true, "can't": true, "won't": true, "didn't": true,
}

// Score tallies word polarities into a valence in [-1, 1].
func (m *LexiconModel) Score(_ context.Context, text string) (*voice.SentimentResult, error) {
	words := strings.Fields(strings.ToLower(text))
	var total float64
	var hits int
	negate := false
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:'\"")
		if negators[w] {
			negate = true
			continue
		}
		v, ok := m.positive[w]
		if !ok {
			v, ok = m.negative[w]
		}
		if ok {
			if negate {
				v = -v
			}
			total += v
			hits++
		}
		negate = false
	}

	res := &voice.SentimentResult{Label: voice.SentimentNeutral, Score: 0.5}
	if hits == 0 {
		return res, nil
	}
	res.Valence = voice.Clamp(total/float64(hits), -1, 1)
	// Score reflects how much of the text carried polarity, floored so a
	// single strong word is still a usable signal.
	res.Score = voice.Clamp(float64(hits)/float64(len(words))*2, 0.4, 1)
	switch {
	case res.Valence > 0.2:
		res.Label = voice.SentimentPositive
	case res.Valence < -0.2:
		res.Label = voice.SentimentNegative
	}
	return res, nil
}
