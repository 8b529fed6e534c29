// Package config loads run settings from YAML files and named presets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
)

const (
	DefaultScenario = "drape"
	DefaultDataDir  = "./data"
)

type Config struct {
	Scenario string        `yaml:"scenario"`
	Duration float64       `yaml:"duration"`
	Seed     int64         `yaml:"seed"`
	Physics  PhysicsConfig `yaml:"physics"`
	Session  SessionConfig `yaml:"session"`
	Body     BodyConfig    `yaml:"body"`
	Logging  LoggingConfig `yaml:"logging"`
}

type PhysicsConfig struct {
	Gravity          []float64      `yaml:"gravity,flow"`
	TimeStep         float64        `yaml:"timestep"`
	SolverIterations int            `yaml:"solver_iterations"`
	Damping          float64        `yaml:"damping"`
	StretchStiffness float64        `yaml:"stretch_stiffness"`
	BendStiffness    float64        `yaml:"bend_stiffness"`
	ShearStiffness   float64        `yaml:"shear_stiffness"`
	CollisionMargin  float64        `yaml:"collision_margin"`
	Friction         float64        `yaml:"friction"`
	ParticleMass     float64        `yaml:"particle_mass"`
	Bending          bool           `yaml:"bending"`
	AutoAnchor       bool           `yaml:"auto_anchor"`
	AnchorBand       float64        `yaml:"anchor_band"`
	AnchorRadius     float64        `yaml:"anchor_radius"`
	Floor            bool           `yaml:"floor"`
	FloorHeight      float64        `yaml:"floor_height"`
	MaxSubsteps      int            `yaml:"max_substeps"`
	Spheres          []SphereConfig `yaml:"spheres"`
}

// SphereConfig names its landmarks, e.g. from: left_shoulder, to:
// left_elbow, t: 0.5. An empty to places the sphere on from.
type SphereConfig struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to,omitempty"`
	T      float64 `yaml:"t,omitempty"`
	Radius float64 `yaml:"radius"`
}

type SessionConfig struct {
	TargetFPS     int     `yaml:"target_fps"`
	MaxGarments   int     `yaml:"max_garments"`
	FrameBudgetMS float64 `yaml:"frame_budget_ms"`
}

type BodyConfig struct {
	Motion    string  `yaml:"motion"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Height    float64 `yaml:"height"`
	Jitter    float64 `yaml:"jitter"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// DefaultConfig returns the defaults of the default scenario.
func DefaultConfig() *Config {
	cfg, err := ForScenario(experiment.NewRegistry(), DefaultScenario)
	if err != nil {
		panic(err)
	}
	return cfg
}

// ForScenario returns the defaults of a registered scenario.
func ForScenario(reg *experiment.Registry, scenario string) (*Config, error) {
	exp, err := reg.DefaultConfig(scenario)
	if err != nil {
		return nil, err
	}
	cfg := FromExperiment(exp)
	cfg.Logging = LoggingConfig{Level: "info"}
	return cfg, nil
}

// Load reads a config file over the defaults of the scenario it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		Scenario string `yaml:"scenario"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	scenario := head.Scenario
	if scenario == "" {
		scenario = DefaultScenario
	}
	cfg, err := ForScenario(experiment.NewRegistry(), scenario)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadInto reads a config file over an existing config.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FromExperiment converts a run configuration into its file form.
func FromExperiment(e experiment.Config) *Config {
	p := e.Physics
	cfg := &Config{
		Scenario: e.Scenario,
		Duration: e.Duration,
		Seed:     e.Seed,
		Physics: PhysicsConfig{
			Gravity:          []float64{p.Gravity[0], p.Gravity[1], p.Gravity[2]},
			TimeStep:         p.TimeStep,
			SolverIterations: p.SolverIterations,
			Damping:          p.Damping,
			StretchStiffness: p.StretchStiffness,
			BendStiffness:    p.BendStiffness,
			ShearStiffness:   p.ShearStiffness,
			CollisionMargin:  p.CollisionMargin,
			Friction:         p.Friction,
			ParticleMass:     p.ParticleMass,
			Bending:          p.Bending,
			AutoAnchor:       p.AutoAnchor,
			AnchorBand:       p.AnchorBand,
			AnchorRadius:     p.AnchorRadius,
			Floor:            p.Floor,
			FloorHeight:      p.FloorHeight,
			MaxSubsteps:      p.MaxSubsteps,
			Spheres:          make([]SphereConfig, 0, len(p.Spheres)),
		},
		Session: SessionConfig{
			TargetFPS:     e.Session.TargetFPS,
			MaxGarments:   e.Session.MaxGarments,
			FrameBudgetMS: float64(e.Session.FrameBudget) / float64(time.Millisecond),
		},
		Body: BodyConfig{
			Motion:    e.Body.Motion.String(),
			Amplitude: e.Body.Amplitude,
			Frequency: e.Body.Frequency,
			Height:    e.Body.Height,
			Jitter:    e.Body.Jitter,
		},
	}
	for _, s := range p.Spheres {
		sc := SphereConfig{From: s.From.String(), Radius: s.Radius}
		if s.To != cloth.NoAnchor && s.To != s.From {
			sc.To = s.To.String()
			sc.T = s.T
		}
		cfg.Physics.Spheres = append(cfg.Physics.Spheres, sc)
	}
	return cfg
}

// ToEngineConfig converts the physics section. Sphere landmark names must
// resolve.
func (c *Config) ToEngineConfig() (cloth.Config, error) {
	p := c.Physics
	if len(p.Gravity) != 3 {
		return cloth.Config{}, fmt.Errorf("gravity needs 3 components, got %d", len(p.Gravity))
	}
	out := cloth.Config{
		Gravity:          cloth.Vec3{p.Gravity[0], p.Gravity[1], p.Gravity[2]},
		TimeStep:         p.TimeStep,
		SolverIterations: p.SolverIterations,
		Damping:          p.Damping,
		StretchStiffness: p.StretchStiffness,
		BendStiffness:    p.BendStiffness,
		ShearStiffness:   p.ShearStiffness,
		CollisionMargin:  p.CollisionMargin,
		Friction:         p.Friction,
		ParticleMass:     p.ParticleMass,
		Bending:          p.Bending,
		AutoAnchor:       p.AutoAnchor,
		AnchorBand:       p.AnchorBand,
		AnchorRadius:     p.AnchorRadius,
		Floor:            p.Floor,
		FloorHeight:      p.FloorHeight,
		MaxSubsteps:      p.MaxSubsteps,
	}
	for i, s := range p.Spheres {
		from, err := cloth.ParseLandmark(s.From)
		if err != nil {
			return cloth.Config{}, fmt.Errorf("sphere %d: %w", i, err)
		}
		if from == cloth.NoAnchor {
			return cloth.Config{}, fmt.Errorf("sphere %d: missing from landmark", i)
		}
		to, err := cloth.ParseLandmark(s.To)
		if err != nil {
			return cloth.Config{}, fmt.Errorf("sphere %d: %w", i, err)
		}
		out.Spheres = append(out.Spheres, cloth.Sphere{From: from, To: to, T: s.T, Radius: s.Radius})
	}
	return out, nil
}

// ToExperiment converts the whole file form into a run configuration.
func (c *Config) ToExperiment() (experiment.Config, error) {
	physics, err := c.ToEngineConfig()
	if err != nil {
		return experiment.Config{}, err
	}
	motion, err := pose.ParseMotion(c.Body.Motion)
	if err != nil {
		return experiment.Config{}, err
	}
	settings := session.DefaultSettings()
	settings.TargetFPS = c.Session.TargetFPS
	settings.MaxGarments = c.Session.MaxGarments
	settings.FrameBudget = time.Duration(c.Session.FrameBudgetMS * float64(time.Millisecond))
	return experiment.Config{
		Scenario: c.Scenario,
		Duration: c.Duration,
		Seed:     c.Seed,
		Physics:  physics,
		Session:  settings,
		Body: experiment.Body{
			Motion:    motion,
			Amplitude: c.Body.Amplitude,
			Frequency: c.Body.Frequency,
			Height:    c.Body.Height,
			Jitter:    c.Body.Jitter,
		},
	}, nil
}

// Validate checks the config converts and every value is in range.
func (c *Config) Validate() error {
	e, err := c.ToExperiment()
	if err != nil {
		return err
	}
	if e.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", e.Duration)
	}
	if err := e.Physics.Validate(); err != nil {
		return err
	}
	return e.Session.Validate()
}
