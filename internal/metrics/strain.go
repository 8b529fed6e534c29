package metrics

import "math"

// MaxStrain is the worst relative constraint stretch over the run.
type MaxStrain struct {
	peak float64
}

func NewMaxStrain() *MaxStrain { return &MaxStrain{} }

func (m *MaxStrain) Name() string { return "max_strain" }

func (m *MaxStrain) Observe(s Sample) { m.peak = math.Max(m.peak, s.Stats.MaxStrain) }

func (m *MaxStrain) Value() float64 { return m.peak }

func (m *MaxStrain) Reset() { m.peak = 0 }

// MeanStrain averages the per-frame maximum strain.
type MeanStrain struct {
	sum     float64
	samples int
}

func NewMeanStrain() *MeanStrain { return &MeanStrain{} }

func (m *MeanStrain) Name() string { return "mean_strain" }

func (m *MeanStrain) Observe(s Sample) {
	m.sum += s.Stats.MaxStrain
	m.samples++
}

func (m *MeanStrain) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanStrain) Reset() {
	m.sum = 0
	m.samples = 0
}

// Penetration is the deepest particle intrusion into a body sphere.
type Penetration struct {
	peak float64
}

func NewPenetration() *Penetration { return &Penetration{} }

func (p *Penetration) Name() string { return "penetration" }

func (p *Penetration) Observe(s Sample) { p.peak = math.Max(p.peak, s.Stats.MaxPenetration) }

func (p *Penetration) Value() float64 { return p.peak }

func (p *Penetration) Reset() { p.peak = 0 }
