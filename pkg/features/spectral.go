package features

import (
	"math"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
)

const (
	numMFCC         = 13
	numMelFilters   = 26
	numContrast     = 6
	numChroma       = 12
	spectralFrame   = 512
	spectralHop     = 256
	rolloffFraction = 0.85
)

// spectralFeatures aggregates frame-level spectral measurements into
// segment-level means.
type spectralFeatures struct {
	mfcc      []float64
	centroid  float64
	rolloff   float64
	bandwidth float64
	zcr       float64
	contrast  []float64
	chroma    []float64
}

func extractSpectral(sig *audio.Signal) spectralFeatures {
	out := spectralFeatures{
		mfcc:     make([]float64, numMFCC),
		contrast: make([]float64, numContrast),
		chroma:   make([]float64, numChroma),
	}
	frames := audio.Frames(sig.Samples, spectralFrame, spectralHop)
	if len(frames) == 0 {
		return out
	}

	filterbank := melFilterbank(numMelFilters, spectralFrame/2+1, sig.SampleRate)
	var centroids, rolloffs, bandwidths []float64
	contrastSum := make([]float64, numContrast)
	chromaSum := make([]float64, numChroma)
	mfccSum := make([]float64, numMFCC)

	for _, frame := range frames {
		mags := audio.MagnitudeSpectrum(frame)
		c := spectralCentroid(mags, sig.SampleRate)
		centroids = append(centroids, c)
		rolloffs = append(rolloffs, spectralRolloff(mags, sig.SampleRate))
		bandwidths = append(bandwidths, spectralBandwidth(mags, c, sig.SampleRate))

		for b, v := range spectralContrast(mags) {
			contrastSum[b] += v
		}
		for b, v := range chromaBins(mags, sig.SampleRate) {
			chromaSum[b] += v
		}
		for b, v := range mfccFrame(mags, filterbank) {
			mfccSum[b] += v
		}
	}

	n := float64(len(frames))
	out.centroid = audio.Mean(centroids)
	out.rolloff = audio.Mean(rolloffs)
	out.bandwidth = audio.Mean(bandwidths)
	out.zcr = audio.ZeroCrossingRate(sig.Samples)
	for b := range contrastSum {
		out.contrast[b] = contrastSum[b] / n
	}
	for b := range chromaSum {
		out.chroma[b] = chromaSum[b] / n
	}
	for b := range mfccSum {
		out.mfcc[b] = mfccSum[b] / n
	}
	return out
}

func binFrequency(bin int, bins int, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / 2 / float64(bins-1)
}

func spectralCentroid(mags []float64, sampleRate int) float64 {
	var weighted, total float64
	for i, m := range mags {
		weighted += binFrequency(i, len(mags), sampleRate) * m
		total += m
	}
	if total < 1e-12 {
		return 0
	}
	return weighted / total
}

func spectralRolloff(mags []float64, sampleRate int) float64 {
	var total float64
	for _, m := range mags {
		total += m
	}
	if total < 1e-12 {
		return 0
	}
	target := total * rolloffFraction
	var acc float64
	for i, m := range mags {
		acc += m
		if acc >= target {
			return binFrequency(i, len(mags), sampleRate)
		}
	}
	return binFrequency(len(mags)-1, len(mags), sampleRate)
}

func spectralBandwidth(mags []float64, centroid float64, sampleRate int) float64 {
	var weighted, total float64
	for i, m := range mags {
		d := binFrequency(i, len(mags), sampleRate) - centroid
		weighted += d * d * m
		total += m
	}
	if total < 1e-12 {
		return 0
	}
	return math.Sqrt(weighted / total)
}

// spectralContrast measures the peak-to-valley spread inside logarithmically
// spaced sub-bands.
func spectralContrast(mags []float64) []float64 {
	out := make([]float64, numContrast)
	if len(mags) < numContrast*2 {
		return out
	}
	for b := 0; b < numContrast; b++ {
		lo := len(mags) * (1 << b) / (1 << numContrast)
		hi := len(mags) * (1 << (b + 1)) / (1 << numContrast)
		if hi > len(mags) {
			hi = len(mags)
		}
		if hi-lo < 2 {
			continue
		}
		band := mags[lo:hi]
		peak := audio.Percentile(band, 90)
		valley := audio.Percentile(band, 10)
		out[b] = math.Log1p(peak) - math.Log1p(valley)
	}
	return out
}

// chromaBins folds spectrum energy onto the 12 pitch classes.
func chromaBins(mags []float64, sampleRate int) []float64 {
	out := make([]float64, numChroma)
	var total float64
	for i := 1; i < len(mags); i++ {
		freq := binFrequency(i, len(mags), sampleRate)
		if freq < 20 {
			continue
		}
		// Pitch class relative to A4 = 440 Hz.
		note := int(math.Round(12*math.Log2(freq/440))+120) % 12
		out[note] += mags[i]
		total += mags[i]
	}
	if total > 1e-12 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}

// melFilterbank builds triangular filters spaced on the mel scale.
func melFilterbank(filters, bins, sampleRate int) [][]float64 {
	hzToMel := func(hz float64) float64 { return 2595 * math.Log10(1+hz/700) }
	melToHz := func(mel float64) float64 { return 700 * (math.Pow(10, mel/2595) - 1) }

	maxMel := hzToMel(float64(sampleRate) / 2)
	points := make([]float64, filters+2)
	for i := range points {
		points[i] = melToHz(maxMel * float64(i) / float64(filters+1))
	}

	bank := make([][]float64, filters)
	for f := 0; f < filters; f++ {
		bank[f] = make([]float64, bins)
		lo, mid, hi := points[f], points[f+1], points[f+2]
		for b := 0; b < bins; b++ {
			freq := binFrequency(b, bins, sampleRate)
			switch {
			case freq >= lo && freq <= mid && mid > lo:
				bank[f][b] = (freq - lo) / (mid - lo)
			case freq > mid && freq <= hi && hi > mid:
				bank[f][b] = (hi - freq) / (hi - mid)
			}
		}
	}
	return bank
}

// mfccFrame computes cepstral coefficients for one magnitude spectrum via
// mel filterbank energies and a type-II DCT.
func mfccFrame(mags []float64, bank [][]float64) []float64 {
	energies := make([]float64, len(bank))
	for f, filter := range bank {
		var sum float64
		for b, w := range filter {
			if b < len(mags) {
				sum += mags[b] * mags[b] * w
			}
		}
		energies[f] = math.Log(sum + 1e-10)
	}

	out := make([]float64, numMFCC)
	n := float64(len(energies))
	for k := 0; k < numMFCC; k++ {
		var sum float64
		for i, e := range energies {
			sum += e * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/n)
		}
		out[k] = sum
	}
	return out
}
