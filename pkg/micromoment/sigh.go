package micromoment

import (
	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// detectSighs finds energy swells that decay sharply afterwards. A candidate
// is a prominent peak in the smoothed RMS envelope; it only counts as a sigh
// when the envelope drops by at least SighMinDecay within the decay window
// after the peak.
func (d *Detector) detectSighs(env []float64, frameRate float64) voice.SighResult {
	var res voice.SighResult
	if len(env) < 3 || frameRate <= 0 {
		return res
	}

	smoothed := audio.MovingAverage(env, 5)
	peaks := audio.FindPeaks(smoothed, d.cfg.SighMinProminence)
	window := int(d.cfg.SighDecayWindow * frameRate)
	if window < 1 {
		window = 1
	}

	var totalProminence float64
	for _, p := range peaks {
		end := p.Index + window
		if end > len(smoothed) {
			end = len(smoothed)
		}
		// Deepest point after the peak decides whether the breath
		// actually released.
		minAfter := smoothed[p.Index]
		for _, v := range smoothed[p.Index:end] {
			if v < minAfter {
				minAfter = v
			}
		}
		if smoothed[p.Index]-minAfter < d.cfg.SighMinDecay {
			continue
		}
		res.Count++
		totalProminence += p.Prominence
		res.Timestamps = append(res.Timestamps, float64(p.Index)/frameRate)
	}
	if res.Count > 0 {
		res.Intensity = voice.Clamp01(totalProminence / float64(res.Count) * 4)
	}
	return res
}
