package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Bin is one frequency of a power spectrum.
type Bin struct {
	Hz    float64
	Power float64
}

// Spectrum returns the one-sided power spectrum of a series sampled every
// dt seconds. The mean is removed first so bin 0 carries no offset.
// Non-finite samples are treated as the mean.
func Spectrum(series []float64, dt float64) []Bin {
	n := len(series)
	if n < 2 || dt <= 0 {
		return nil
	}
	mean, count := 0.0, 0
	for _, v := range series {
		if finite(v) {
			mean += v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean /= float64(count)

	centred := make([]float64, n)
	for i, v := range series {
		if finite(v) {
			centred[i] = v - mean
		}
	}

	coeffs := fft.FFTReal(centred)
	bins := make([]Bin, n/2+1)
	for k := range bins {
		mag := cmplx.Abs(coeffs[k])
		bins[k] = Bin{
			Hz:    float64(k) / (float64(n) * dt),
			Power: mag * mag / float64(n),
		}
	}
	return bins
}

// DominantFrequency is the strongest non-zero frequency of the series, with
// its power. A flat series gives 0, 0.
func DominantFrequency(series []float64, dt float64) (float64, float64) {
	bins := Spectrum(series, dt)
	best := Bin{}
	for _, b := range bins[min(1, len(bins)):] {
		if b.Power > best.Power {
			best = b
		}
	}
	if best.Power < 1e-18 {
		return 0, 0
	}
	return best.Hz, best.Power
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
