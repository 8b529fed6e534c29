package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/drape/internal/experiment"
)

func builder(t *testing.T, reg *experiment.Registry) func(map[string]float64) (*experiment.Experiment, error) {
	t.Helper()
	base, err := reg.DefaultConfig("pinned_triangle")
	if err != nil {
		t.Fatal(err)
	}
	base.Duration = 0.25
	base.Session.FrameBudget = 0
	return func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base
		if err := cfg.SetParams(p); err != nil {
			return nil, err
		}
		return experiment.New(cfg, reg), nil
	}
}

func TestGridSearchVisitsEveryPoint(t *testing.T) {
	reg := experiment.NewRegistry()
	g, err := NewGridSearch([]string{"stretch_stiffness", "iterations"}, [][]float64{{0.2, 1.0}, {1, 4, 8}})
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 6 {
		t.Fatalf("expected 6 points, got %d", g.Size())
	}

	best, val, trials, err := g.Search(context.Background(), builder(t, reg), "max_strain")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(trials) != 6 {
		t.Errorf("expected 6 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Err != nil {
			t.Errorf("trial %v failed: %v", tr.Params, tr.Err)
		}
		if tr.Value < val {
			t.Errorf("trial %v beat the reported best %f", tr.Params, val)
		}
	}
	if best["stretch_stiffness"] != 1.0 {
		t.Errorf("expected the stiffest cloth to stretch least, got %v", best)
	}
	ranked := g.Ranked(trials)
	if ranked[0].Value != val {
		t.Errorf("expected ranked head %f, got %f", val, ranked[0].Value)
	}
}

func TestGridSearchMaximize(t *testing.T) {
	reg := experiment.NewRegistry()
	g, _ := NewGridSearch([]string{"stretch_stiffness"}, [][]float64{{0.1, 1.0}})
	g.Maximize = true
	best, _, _, err := g.Search(context.Background(), builder(t, reg), "max_strain")
	if err != nil {
		t.Fatal(err)
	}
	if best["stretch_stiffness"] != 0.1 {
		t.Errorf("expected the softest cloth to stretch most, got %v", best)
	}
}

func TestGridSearchRecordsFailures(t *testing.T) {
	reg := experiment.NewRegistry()
	g, _ := NewGridSearch([]string{"damping"}, [][]float64{{0.9, 2}})
	_, _, trials, err := g.Search(context.Background(), builder(t, reg), "max_strain")
	if err != nil {
		t.Fatal(err)
	}
	if trials[0].Err != nil || trials[1].Err == nil {
		t.Errorf("expected only the out-of-range damping to fail, got %v / %v", trials[0].Err, trials[1].Err)
	}

	_, _, _, err = g.Search(context.Background(), func(map[string]float64) (*experiment.Experiment, error) {
		return nil, errors.New("boom")
	}, "max_strain")
	if err == nil {
		t.Error("expected an error when no point succeeds")
	}
}

func TestGridSearchCancelled(t *testing.T) {
	reg := experiment.NewRegistry()
	g, _ := NewGridSearch([]string{"damping"}, [][]float64{{0.9, 0.95}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := g.Search(ctx, builder(t, reg), "max_strain"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch([]string{"a"}, nil); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	if len(Linspace(3, 9, 1)) != 1 {
		t.Error("expected a single point")
	}
}
