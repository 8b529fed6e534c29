package metrics

// Stability is the fraction of frames that needed no divergence recovery
// and kept every constraint within maxStrain of its rest length. A run with
// no frames counts as fully stable.
type Stability struct {
	maxStrain float64
	frames    int
	unstable  int
}

func NewStability(maxStrain float64) *Stability {
	return &Stability{maxStrain: maxStrain}
}

func (*Stability) Name() string { return "stability" }

func (s *Stability) Observe(sample Sample) {
	s.frames++
	diverged := sample.Stats.Recovered > 0
	if diverged || sample.Stats.MaxStrain > s.maxStrain {
		s.unstable++
	}
}

func (s *Stability) Value() float64 {
	if s.frames == 0 {
		return 1
	}
	return float64(s.frames-s.unstable) / float64(s.frames)
}

func (s *Stability) Reset() { *s = Stability{maxStrain: s.maxStrain} }
