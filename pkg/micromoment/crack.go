package micromoment

import (
	"math"

	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// detectCracks flags abrupt pitch discontinuities between consecutive voiced
// frames. Jumps above CrackJumpHz are counted; intensity is the mean jump
// size normalized by CrackScaleHz.
func (d *Detector) detectCracks(pitches []float64, frameRate float64) voice.VoiceCrackResult {
	var res voice.VoiceCrackResult
	var totalNorm float64
	for i := 1; i < len(pitches); i++ {
		if pitches[i] <= 0 || pitches[i-1] <= 0 {
			continue
		}
		jump := math.Abs(pitches[i] - pitches[i-1])
		if jump <= d.cfg.CrackJumpHz {
			continue
		}
		res.Count++
		totalNorm += math.Min(jump/d.cfg.CrackScaleHz, 1)
		if frameRate > 0 {
			res.Timestamps = append(res.Timestamps, float64(i)/frameRate)
		}
	}
	if res.Count > 0 {
		res.Intensity = voice.Clamp01(totalNorm / float64(res.Count))
	}
	return res
}
