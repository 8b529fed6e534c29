package analysis

import (
	"math"
	"strings"
	"testing"
)

func sine(hz, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.2 + 0.05*math.Sin(2*math.Pi*hz*float64(i)*dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	dt := 1.0 / 60
	tests := []struct {
		name string
		hz   float64
		n    int
	}{
		{"power of two", 1.5, 256},
		{"odd length", 2, 301},
		{"slow sway", 0.5, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, power := DominantFrequency(sine(tt.hz, dt, tt.n), dt)
			resolution := 1 / (float64(tt.n) * dt)
			if math.Abs(got-tt.hz) > resolution {
				t.Errorf("dominant = %.3f Hz, want %.3f ± %.3f", got, tt.hz, resolution)
			}
			if power <= 0 {
				t.Errorf("power = %f, want positive", power)
			}
		})
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	hz, power := DominantFrequency([]float64{3, 3, 3, 3, 3, 3}, 0.1)
	if hz != 0 || power != 0 {
		t.Errorf("flat series gave %f Hz, power %f", hz, power)
	}
	if Spectrum([]float64{1}, 0.1) != nil {
		t.Error("one sample has no spectrum")
	}
	if Spectrum([]float64{1, 2}, 0) != nil {
		t.Error("zero dt has no spectrum")
	}
}

func TestSpectrumIgnoresNaN(t *testing.T) {
	series := sine(2, 1.0/60, 240)
	series[17] = math.NaN()
	for _, b := range Spectrum(series, 1.0/60) {
		if math.IsNaN(b.Power) {
			t.Fatal("NaN leaked into the spectrum")
		}
	}
}

func TestSettleTime(t *testing.T) {
	tests := []struct {
		name     string
		series   []float64
		fraction float64
		want     float64
	}{
		{"decays", []float64{10, 5, 2, 0.5, 0.2, 0.1}, 0.1, 0.4},
		{"still moving", []float64{10, 5, 2, 9}, 0.1, -1},
		{"at rest", []float64{0, 0, 0}, 0.1, 0},
		{"never above", []float64{1, 1, 1}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SettleTime(tt.series, 0.1, tt.fraction)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SettleTime = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, math.Inf(1), 3, 2})
	if s.Samples != 3 || s.Min != 1 || s.Max != 3 || s.Mean != 2 || s.Final != 2 {
		t.Errorf("Summarize = %+v", s)
	}
	if Summarize(nil) != (Summary{}) {
		t.Error("empty series should give a zero summary")
	}
}

func TestPortrait(t *testing.T) {
	pts := Portrait([]float64{-1, 0, math.NaN(), 1}, []float64{1, 0, 2})
	if len(pts) != 2 {
		t.Fatalf("points = %d, want 2", len(pts))
	}

	art := PortraitASCII(pts, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("rows = %d, want 10", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 20 {
			t.Fatalf("row width = %d, want 20", n)
		}
	}
	if strings.Count(art, "•") != 2 {
		t.Errorf("expected both points plotted:\n%s", art)
	}
	if !strings.Contains(art, "│") || !strings.Contains(art, "─") {
		t.Errorf("axes missing:\n%s", art)
	}
	if PortraitASCII(nil, 20, 10) != "" {
		t.Error("no points should give empty output")
	}
}
