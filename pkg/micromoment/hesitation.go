package micromoment

import (
	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// detectHesitations segments the energy envelope into pauses using an
// adaptive threshold at the configured low percentile of the recording's own
// energy. Adjacent below-threshold frames merge into one pause; pauses longer
// than LongPauseSec are reported separately.
func (d *Detector) detectHesitations(env []float64, frameRate float64) voice.HesitationResult {
	var res voice.HesitationResult
	if len(env) == 0 || frameRate <= 0 {
		return res
	}

	threshold := audio.Percentile(env, d.cfg.HesitationPercentile)
	var durations []float64
	var pauseFrames, run int
	flush := func() {
		if run == 0 {
			return
		}
		durations = append(durations, float64(run)/frameRate)
		run = 0
	}
	for _, e := range env {
		if e <= threshold {
			run++
			pauseFrames++
		} else {
			flush()
		}
	}
	flush()

	for _, dur := range durations {
		res.Count++
		if dur > res.MaxDuration {
			res.MaxDuration = dur
		}
		if dur > d.cfg.LongPauseSec {
			res.LongPauses++
		}
		res.AverageDuration += dur
	}
	if res.Count > 0 {
		res.AverageDuration /= float64(res.Count)
	}
	res.PauseRatio = float64(pauseFrames) / float64(len(env))
	return res
}
