package experiment

import (
	"fmt"
	"math"
	"sort"
)

type param struct {
	get func(c *Config) float64
	set func(c *Config, v float64)
}

// params are the tunable knobs addressable by name from the CLI, the grid
// search and scripts.
var params = map[string]param{
	"stretch_stiffness": {
		func(c *Config) float64 { return c.Physics.StretchStiffness },
		func(c *Config, v float64) { c.Physics.StretchStiffness = v },
	},
	"shear_stiffness": {
		func(c *Config) float64 { return c.Physics.ShearStiffness },
		func(c *Config, v float64) { c.Physics.ShearStiffness = v },
	},
	"bend_stiffness": {
		func(c *Config) float64 { return c.Physics.BendStiffness },
		func(c *Config, v float64) { c.Physics.BendStiffness = v },
	},
	"damping": {
		func(c *Config) float64 { return c.Physics.Damping },
		func(c *Config, v float64) { c.Physics.Damping = v },
	},
	"friction": {
		func(c *Config) float64 { return c.Physics.Friction },
		func(c *Config, v float64) { c.Physics.Friction = v },
	},
	"collision_margin": {
		func(c *Config) float64 { return c.Physics.CollisionMargin },
		func(c *Config, v float64) { c.Physics.CollisionMargin = v },
	},
	"particle_mass": {
		func(c *Config) float64 { return c.Physics.ParticleMass },
		func(c *Config, v float64) { c.Physics.ParticleMass = v },
	},
	"iterations": {
		func(c *Config) float64 { return float64(c.Physics.SolverIterations) },
		func(c *Config, v float64) { c.Physics.SolverIterations = int(math.Round(v)) },
	},
	"gravity": {
		func(c *Config) float64 { return -c.Physics.Gravity[1] },
		func(c *Config, v float64) { c.Physics.Gravity[1] = -v },
	},
	"target_fps": {
		func(c *Config) float64 { return float64(c.Session.TargetFPS) },
		func(c *Config, v float64) { c.Session.TargetFPS = int(math.Round(v)) },
	},
	"amplitude": {
		func(c *Config) float64 { return c.Body.Amplitude },
		func(c *Config, v float64) { c.Body.Amplitude = v },
	},
	"frequency": {
		func(c *Config) float64 { return c.Body.Frequency },
		func(c *Config, v float64) { c.Body.Frequency = v },
	},
	"jitter": {
		func(c *Config) float64 { return c.Body.Jitter },
		func(c *Config, v float64) { c.Body.Jitter = v },
	},
}

// SetParam sets one named parameter on the config.
func (c *Config) SetParam(name string, v float64) error {
	p, ok := params[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("parameter %s must be finite", name)
	}
	p.set(c, v)
	return nil
}

// SetParams applies every entry of p.
func (c *Config) SetParams(p map[string]float64) error {
	for name, v := range p {
		if err := c.SetParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Param returns the current value of a named parameter.
func (c Config) Param(name string) (float64, error) {
	p, ok := params[name]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", name)
	}
	return p.get(&c), nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
