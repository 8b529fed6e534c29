package metrics

// KineticEnergy is the kinetic energy of the last observed frame.
type KineticEnergy struct {
	last    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(s Sample) {
	k.last = s.Stats.KineticEnergy
	k.samples++
}

func (k *KineticEnergy) Value() float64 { return k.last }

func (k *KineticEnergy) Reset() {
	k.last = 0
	k.samples = 0
}

// Settle reports the time at which kinetic energy last dropped below the
// threshold and stayed there. It is -1 while the cloth is still moving.
type Settle struct {
	threshold float64
	since     float64
	settled   bool
}

func NewSettle(threshold float64) *Settle {
	return &Settle{threshold: threshold, since: -1}
}

func (s *Settle) Name() string { return "settle" }

func (s *Settle) Observe(sample Sample) {
	if sample.Stats.KineticEnergy < s.threshold {
		if !s.settled {
			s.since = sample.Time
			s.settled = true
		}
		return
	}
	s.settled = false
	s.since = -1
}

func (s *Settle) Value() float64 { return s.since }

func (s *Settle) Reset() {
	s.since = -1
	s.settled = false
}
