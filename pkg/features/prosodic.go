package features

import (
	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
)

// prosodicFeatures summarize pitch and loudness dynamics over the segment.
type prosodicFeatures struct {
	pitchMean   float64
	pitchStd    float64
	pitchMin    float64
	pitchMax    float64
	pitchRange  float64
	energyMean  float64
	energyStd   float64
	energyMax   float64
	voicedRatio float64
}

func extractProsodic(sig *audio.Signal, tracker *audio.PitchTracker) prosodicFeatures {
	var out prosodicFeatures

	pitches := tracker.Track(sig)
	voiced := audio.Voiced(pitches)
	out.voicedRatio = audio.VoicedRatio(pitches)
	if len(voiced) > 0 {
		out.pitchMean = audio.Mean(voiced)
		out.pitchStd = audio.Std(voiced)
		out.pitchMin = voiced[0]
		out.pitchMax = voiced[0]
		for _, p := range voiced {
			if p < out.pitchMin {
				out.pitchMin = p
			}
			if p > out.pitchMax {
				out.pitchMax = p
			}
		}
		out.pitchRange = out.pitchMax - out.pitchMin
	}

	env := audio.RMSEnvelope(sig.Samples, audio.DefaultFrameSize, audio.DefaultHopSize)
	if len(env) > 0 {
		out.energyMean = audio.Mean(env)
		out.energyStd = audio.Std(env)
		for _, e := range env {
			if e > out.energyMax {
				out.energyMax = e
			}
		}
	}
	return out
}

// temporalFeatures are coarse timing measurements.
type temporalFeatures struct {
	duration   float64
	speechRate float64
	pauseRatio float64
}

// extractTemporal derives duration, a syllable-rate proxy from energy peaks,
// and the fraction of low-energy frames.
func extractTemporal(sig *audio.Signal) temporalFeatures {
	out := temporalFeatures{duration: sig.Seconds()}
	env := audio.RMSEnvelope(sig.Samples, audio.DefaultFrameSize, audio.DefaultHopSize)
	if len(env) == 0 || out.duration <= 0 {
		return out
	}

	// Syllable nuclei approximated by prominent energy peaks.
	smoothed := audio.MovingAverage(env, 5)
	peaks := audio.FindPeaks(smoothed, audio.Mean(smoothed)*0.3)
	out.speechRate = float64(len(peaks)) / out.duration

	threshold := audio.Percentile(env, 20)
	low := 0
	for _, e := range env {
		if e <= threshold {
			low++
		}
	}
	out.pauseRatio = float64(low) / float64(len(env))
	return out
}

// statisticalFeatures describe the raw amplitude distribution.
type statisticalFeatures struct {
	percentiles []float64
	skewness    float64
	kurtosis    float64
}

func extractStatistical(sig *audio.Signal) statisticalFeatures {
	return statisticalFeatures{
		percentiles: []float64{
			audio.Percentile(sig.Samples, 25),
			audio.Percentile(sig.Samples, 50),
			audio.Percentile(sig.Samples, 75),
			audio.Percentile(sig.Samples, 90),
		},
		skewness: audio.Skewness(sig.Samples),
		kurtosis: audio.Kurtosis(sig.Samples),
	}
}
