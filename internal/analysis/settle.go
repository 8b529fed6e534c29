package analysis

import "math"

// SettleTime returns the time after which every sample stays within
// fraction of the series' peak magnitude, or -1 if the last sample still
// exceeds it. Samples are dt apart starting at dt.
func SettleTime(series []float64, dt, fraction float64) float64 {
	peak := 0.0
	for _, v := range series {
		if finite(v) {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	if peak == 0 {
		return 0
	}
	limit := peak * fraction
	for i := len(series) - 1; i >= 0; i-- {
		if !finite(series[i]) || math.Abs(series[i]) > limit {
			if i == len(series)-1 {
				return -1
			}
			return float64(i+2) * dt
		}
	}
	return 0
}

// Summary describes one series.
type Summary struct {
	Min, Max, Mean, Final float64
	Samples               int
}

func Summarize(series []float64) Summary {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range series {
		if !finite(v) {
			continue
		}
		s.Samples++
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Final = v
	}
	if s.Samples == 0 {
		return Summary{}
	}
	s.Mean /= float64(s.Samples)
	return s
}
