// Package metrics accumulates per-frame quality measures of a cloth run.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/san-kum/drape/internal/cloth"
)

// Sample is one simulated frame as seen by a metric.
type Sample struct {
	Time      float64
	Stats     cloth.StepStats
	FrameTime time.Duration // wall time of the whole frame, zero when not measured
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

var factories = map[string]func() Metric{
	"max_strain":     func() Metric { return NewMaxStrain() },
	"mean_strain":    func() Metric { return NewMeanStrain() },
	"penetration":    func() Metric { return NewPenetration() },
	"kinetic_energy": func() Metric { return NewKineticEnergy() },
	"settle":         func() Metric { return NewSettle(0.05) },
	"stability":      func() Metric { return NewStability(0.1) },
	"contacts":       func() Metric { return NewContacts() },
	"frame_budget":   func() Metric { return NewFrameBudget(16 * time.Millisecond) },
}

// New returns a fresh metric by name with its default parameters.
func New(name string) (Metric, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("metrics: unknown metric %q", name)
	}
	return f(), nil
}

// Names lists every metric New accepts.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Set observes samples into several metrics at once.
type Set []Metric

// Default is the set reported after every run.
func Default(budget time.Duration) Set {
	return Set{
		NewMaxStrain(),
		NewMeanStrain(),
		NewPenetration(),
		NewKineticEnergy(),
		NewStability(0.1),
		NewContacts(),
		NewFrameBudget(budget),
	}
}

func (s Set) Observe(sample Sample) {
	for _, m := range s {
		m.Observe(sample)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values returns the current value of every metric keyed by name.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}
