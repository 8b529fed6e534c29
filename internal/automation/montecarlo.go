package automation

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/drape/internal/experiment"
)

// MonteCarloConfig perturbs named parameters of a base experiment by up to
// ±Perturbation (relative) and checks every trial stays stable.
type MonteCarloConfig struct {
	Base         experiment.Config
	Params       []string
	Perturbation float64
	NumTrials    int
	Seed         int64
	// MaxStrain above which a trial counts as unstable.
	MaxStrain float64
}

type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Strain  float64
	Stable  bool
	Err     error
}

// RunMonteCarlo executes the trials one after another. progress, when not
// nil, is called after each trial.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, reg *experiment.Registry, progress func(done, total int)) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo: need at least one trial")
	}
	base, err := baseValues(cfg.Base, cfg.Params)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		params := make(map[string]float64, len(cfg.Params))
		for _, name := range cfg.Params {
			params[name] = base[name] * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		}

		expCfg := cfg.Base
		expCfg.Seed = cfg.Base.Seed + int64(trial)
		r := MonteCarloResult{TrialID: trial, Params: params}
		if err := expCfg.SetParams(params); err != nil {
			r.Err = err
		} else if res, err := experiment.New(expCfg, reg).Run(ctx); err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			r.Err = err
		} else {
			r.Strain = res.Metrics["max_strain"]
			r.Stable = res.Recovered == 0 && (cfg.MaxStrain <= 0 || r.Strain <= cfg.MaxStrain)
		}
		results = append(results, r)

		if progress != nil {
			progress(trial+1, cfg.NumTrials)
		}
	}
	return results, nil
}

// baseValues reads the current value of each named parameter.
func baseValues(cfg experiment.Config, names []string) (map[string]float64, error) {
	out := make(map[string]float64, len(names))
	for _, n := range names {
		v, err := cfg.Param(n)
		if err != nil {
			return nil, fmt.Errorf("monte carlo: %w", err)
		}
		out[n] = v
	}
	return out, nil
}

// MonteCarloStats counts stable and unstable trials. Failed trials count as
// unstable.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

// WorstTrials returns up to n trials with the highest strain.
func WorstTrials(results []MonteCarloResult, n int) []MonteCarloResult {
	out := append([]MonteCarloResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Strain > out[j].Strain })
	if n < len(out) {
		out = out[:n]
	}
	return out
}
