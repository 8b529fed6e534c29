package experiment

import (
	"context"
	"runtime"
	"sync"
)

// Ensemble runs independent copies of one experiment with consecutive
// seeds. Every run owns its engine; at most Workers runs are in flight.
type Ensemble struct {
	cfg       Config
	reg       *Registry
	numRuns   int
	seedStart int64
	Workers   int
	opts      []Option
}

func NewEnsemble(cfg Config, reg *Registry, numRuns int, seedStart int64, opts ...Option) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		reg:       reg,
		numRuns:   numRuns,
		seedStart: seedStart,
		Workers:   runtime.NumCPU(),
		opts:      opts,
	}
}

// Run returns one result per seed in seed order, or the first error.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }()

			cfg := e.cfg
			cfg.Seed = e.seedStart + int64(idx)
			results[idx], errs[idx] = New(cfg, e.reg, e.opts...).Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Summary is the mean and spread of one metric across an ensemble.
type Summary struct {
	Mean, Min, Max float64
}

// Summarize aggregates every metric present in the first result.
func Summarize(results []*Result) map[string]Summary {
	out := make(map[string]Summary)
	if len(results) == 0 {
		return out
	}
	for name := range results[0].Metrics {
		s := Summary{Min: results[0].Metrics[name], Max: results[0].Metrics[name]}
		for _, r := range results {
			v := r.Metrics[name]
			s.Mean += v
			if v < s.Min {
				s.Min = v
			}
			if v > s.Max {
				s.Max = v
			}
		}
		s.Mean /= float64(len(results))
		out[name] = s
	}
	return out
}
