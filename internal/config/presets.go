package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/drape/internal/experiment"
)

// Preset is a named set of parameter overrides.
type Preset struct {
	Description string
	Duration    float64
	Motion      string
	Params      map[string]float64
}

// AnyScenario holds presets that apply to every scenario.
const AnyScenario = "*"

var Presets = map[string]map[string]Preset{
	AnyScenario: {
		"fast": {
			Description: "fewer solver passes at 30 fps",
			Params:      map[string]float64{"iterations": 4, "target_fps": 30},
		},
		"accurate": {
			Description: "more solver passes",
			Params:      map[string]float64{"iterations": 20},
		},
	},
	"drape": {
		"silk": {
			Description: "light, slippery, barely resists bending",
			Params:      map[string]float64{"bend_stiffness": 0.05, "friction": 0.95, "particle_mass": 0.5},
		},
		"denim": {
			Description: "heavy and stiff",
			Params:      map[string]float64{"stretch_stiffness": 1, "bend_stiffness": 0.9, "shear_stiffness": 0.9, "particle_mass": 2},
		},
		"jersey": {
			Description: "stretchy knit",
			Params:      map[string]float64{"stretch_stiffness": 0.5, "bend_stiffness": 0.2},
		},
	},
	"sway": {
		"gentle": {
			Description: "slow, small sway",
			Params:      map[string]float64{"amplitude": 0.02, "frequency": 0.3},
		},
		"brisk": {
			Description: "fast sway with tracking noise",
			Duration:    6,
			Params:      map[string]float64{"amplitude": 0.08, "frequency": 1.5, "jitter": 0.003},
		},
	},
	"pinned_triangle": {
		"stiff": {
			Description: "rigid triangle",
			Params:      map[string]float64{"stretch_stiffness": 1, "iterations": 20},
		},
		"soft": {
			Description: "rubbery triangle",
			Params:      map[string]float64{"stretch_stiffness": 0.2},
		},
	},
	"freefall": {
		"moon": {
			Description: "lunar gravity",
			Duration:    5,
			Params:      map[string]float64{"gravity": 1.62},
		},
		"grippy": {
			Description: "sticks where it lands",
			Params:      map[string]float64{"friction": 0},
		},
	},
	"sphere_drop": {
		"silk": {
			Description: "silk sheet sliding off the shoulders",
			Params:      map[string]float64{"bend_stiffness": 0.05, "friction": 0.95},
		},
		"walk": {
			Description: "sheet on a walking body",
			Duration:    4,
			Motion:      "walk",
			Params:      map[string]float64{"amplitude": 0.3, "frequency": 1},
		},
	},
	"two_garments": {
		"turn": {
			Description: "body twisting instead of walking",
			Motion:      "turn",
			Params:      map[string]float64{"amplitude": 0.5, "frequency": 0.5},
		},
	},
}

// GetPreset finds a preset for the scenario, falling back to the presets
// shared by every scenario.
func GetPreset(scenario, preset string) (Preset, bool) {
	if p, ok := Presets[scenario][preset]; ok {
		return p, true
	}
	p, ok := Presets[AnyScenario][preset]
	return p, ok
}

// ListPresets names the presets usable with a scenario, sorted.
func ListPresets(scenario string) []string {
	seen := make(map[string]bool)
	for name := range Presets[scenario] {
		seen[name] = true
	}
	for name := range Presets[AnyScenario] {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset overlays a named preset on the config.
func (c *Config) ApplyPreset(name string) error {
	p, ok := GetPreset(c.Scenario, name)
	if !ok {
		return fmt.Errorf("unknown preset %q for scenario %s", name, c.Scenario)
	}
	e, err := c.ToExperiment()
	if err != nil {
		return err
	}
	if err := e.SetParams(p.Params); err != nil {
		return fmt.Errorf("preset %s: %w", name, err)
	}
	logging := c.Logging
	*c = *FromExperiment(e)
	c.Logging = logging
	if p.Duration > 0 {
		c.Duration = p.Duration
	}
	if p.Motion != "" {
		c.Body.Motion = p.Motion
	}
	return nil
}

// SetParam overrides one named experiment parameter, as from a CLI flag.
func (c *Config) SetParam(name string, v float64) error {
	e, err := c.ToExperiment()
	if err != nil {
		return err
	}
	if err := e.SetParam(name, v); err != nil {
		return err
	}
	logging := c.Logging
	*c = *FromExperiment(e)
	c.Logging = logging
	return nil
}

// ParamNames lists the names SetParam accepts.
func ParamNames() []string { return experiment.ParamNames() }
