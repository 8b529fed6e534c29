package metrics

import (
	"testing"
	"time"

	"github.com/san-kum/drape/internal/cloth"
)

func sample(t, strain, kinetic float64) Sample {
	return Sample{Time: t, Stats: cloth.StepStats{MaxStrain: strain, KineticEnergy: kinetic}}
}

func TestKineticEnergyTracksLastFrame(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(sample(0, 0, 3))
	m.Observe(sample(1, 0, 1.5))
	if m.Value() != 1.5 {
		t.Errorf("expected 1.5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestSettle(t *testing.T) {
	m := NewSettle(0.1)
	if m.Value() != -1 {
		t.Errorf("expected -1 before any sample, got %f", m.Value())
	}
	for i, ke := range []float64{5, 2, 0.05, 0.5, 0.02, 0.01} {
		m.Observe(sample(float64(i), 0, ke))
	}
	if m.Value() != 4 {
		t.Errorf("expected settle at t=4, got %f", m.Value())
	}
	m.Observe(sample(6, 0, 1))
	if m.Value() != -1 {
		t.Errorf("expected -1 after motion resumes, got %f", m.Value())
	}
}

func TestStrainMetrics(t *testing.T) {
	maxM, mean := NewMaxStrain(), NewMeanStrain()
	for _, s := range []float64{0.01, 0.05, 0.03} {
		maxM.Observe(sample(0, s, 0))
		mean.Observe(sample(0, s, 0))
	}
	if maxM.Value() != 0.05 {
		t.Errorf("expected max 0.05, got %f", maxM.Value())
	}
	if d := mean.Value() - 0.03; d > 1e-12 || d < -1e-12 {
		t.Errorf("expected mean 0.03, got %f", mean.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(0.1)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", m.Value())
	}
	m.Observe(sample(0, 0.01, 0))
	m.Observe(sample(0, 0.5, 0))
	m.Observe(Sample{Stats: cloth.StepStats{Recovered: 2}})
	m.Observe(sample(0, 0.02, 0))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestFrameBudget(t *testing.T) {
	m := NewFrameBudget(16 * time.Millisecond)
	m.Observe(Sample{FrameTime: 10 * time.Millisecond})
	m.Observe(Sample{FrameTime: 20 * time.Millisecond})
	m.Observe(Sample{Stats: cloth.StepStats{Elapsed: 5 * time.Millisecond}})
	m.Observe(Sample{FrameTime: 30 * time.Millisecond})
	if m.Value() != 0.5 {
		t.Errorf("expected half the frames within budget, got %f", m.Value())
	}
	if m.Worst() != 30*time.Millisecond {
		t.Errorf("expected worst 30ms, got %v", m.Worst())
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("metric %s reports name %s", name, m.Name())
		}
	}
	if _, err := New("beauty"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSetValues(t *testing.T) {
	s := Default(16 * time.Millisecond)
	s.Observe(sample(0, 0.02, 1))
	v := s.Values()
	if v["max_strain"] != 0.02 || v["kinetic_energy"] != 1 {
		t.Errorf("unexpected values %v", v)
	}
	s.Reset()
	if s.Values()["max_strain"] != 0 {
		t.Error("expected reset to clear every metric")
	}
}
