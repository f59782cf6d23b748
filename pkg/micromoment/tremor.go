package micromoment

import (
	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// detectTremor looks for a periodic 4-8 Hz modulation of the pitch contour,
// the physiological signature of vocal tremor. The pitch track is resampled
// into a gap-filled envelope, mean-removed, smoothed, and its power spectrum
// inspected for energy concentration in the tremor band.
func (d *Detector) detectTremor(pitches []float64, frameRate float64) voice.TremorResult {
	voiced := make([]float64, 0, len(pitches))
	for _, p := range pitches {
		if p > 0 {
			voiced = append(voiced, p)
		}
	}
	if len(voiced) < d.cfg.TremorMinSamples {
		return voice.TremorResult{}
	}

	mean := audio.Mean(voiced)

	// Fill unvoiced gaps with the mean pitch so silence does not leak
	// broadband energy into the modulation spectrum.
	envelope := make([]float64, len(pitches))
	for i, p := range pitches {
		if p > 0 {
			envelope[i] = p - mean
		}
	}
	envelope = audio.MovingAverage(envelope, d.cfg.TremorSmoothWindow)

	power := audio.PowerSpectrum(envelope)
	if len(power) < 2 {
		return voice.TremorResult{}
	}

	// Bin k covers k * frameRate / N Hz, N being the (padded) frame length
	// the spectrum was computed over.
	binHz := frameRate / float64(2*(len(power)-1))
	var bandPower, totalPower float64
	var peakBin int
	var peakPower float64
	for k := 1; k < len(power); k++ {
		f := float64(k) * binHz
		totalPower += power[k]
		if f >= d.cfg.TremorBandLowHz && f <= d.cfg.TremorBandHighHz {
			bandPower += power[k]
			if power[k] > peakPower {
				peakPower = power[k]
				peakBin = k
			}
		}
	}
	if totalPower <= 0 {
		return voice.TremorResult{}
	}

	ratio := bandPower / totalPower
	res := voice.TremorResult{
		Intensity:   voice.Clamp01(ratio),
		FrequencyHz: float64(peakBin) * binHz,
	}
	if ratio >= d.cfg.TremorRatio {
		res.Detected = true
	} else {
		res.FrequencyHz = 0
	}
	return res
}
