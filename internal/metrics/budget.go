package metrics

import "time"

// Contacts averages the number of particles touching the body per frame.
type Contacts struct {
	sum     int
	samples int
}

func NewContacts() *Contacts { return &Contacts{} }

func (c *Contacts) Name() string { return "contacts" }

func (c *Contacts) Observe(s Sample) {
	c.sum += s.Stats.Contacts
	c.samples++
}

func (c *Contacts) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return float64(c.sum) / float64(c.samples)
}

func (c *Contacts) Reset() {
	c.sum = 0
	c.samples = 0
}

// FrameBudget is the fraction of frames that finished within the budget.
// Frames without a measured FrameTime fall back to the physics step time.
type FrameBudget struct {
	budget  time.Duration
	within  int
	samples int
	worst   time.Duration
}

func NewFrameBudget(budget time.Duration) *FrameBudget {
	return &FrameBudget{budget: budget}
}

func (f *FrameBudget) Name() string { return "frame_budget" }

func (f *FrameBudget) Observe(s Sample) {
	d := s.FrameTime
	if d == 0 {
		d = s.Stats.Elapsed
	}
	if d <= f.budget {
		f.within++
	}
	if d > f.worst {
		f.worst = d
	}
	f.samples++
}

func (f *FrameBudget) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return float64(f.within) / float64(f.samples)
}

// Worst returns the slowest observed frame.
func (f *FrameBudget) Worst() time.Duration { return f.worst }

func (f *FrameBudget) Reset() {
	f.within = 0
	f.samples = 0
	f.worst = 0
}
