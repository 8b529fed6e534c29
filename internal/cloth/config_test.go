package cloth

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Gravity.Y() != -9.81 {
		t.Errorf("expected gravity -9.81, got %f", cfg.Gravity.Y())
	}
	if cfg.SolverIterations != 10 {
		t.Errorf("expected 10 iterations, got %d", cfg.SolverIterations)
	}
	if cfg.StretchStiffness != 0.9 || cfg.BendStiffness != 0.5 || cfg.ShearStiffness != 0.7 {
		t.Errorf("unexpected stiffness defaults %f/%f/%f", cfg.StretchStiffness, cfg.BendStiffness, cfg.ShearStiffness)
	}
	if len(cfg.Spheres) != 15 {
		t.Errorf("expected 15 body spheres, got %d", len(cfg.Spheres))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero timestep", func(c *Config) { c.TimeStep = 0 }},
		{"nan timestep", func(c *Config) { c.TimeStep = math.NaN() }},
		{"no iterations", func(c *Config) { c.SolverIterations = 0 }},
		{"no substeps", func(c *Config) { c.MaxSubsteps = 0 }},
		{"damping above one", func(c *Config) { c.Damping = 1.5 }},
		{"negative stiffness", func(c *Config) { c.StretchStiffness = -0.1 }},
		{"shear above one", func(c *Config) { c.ShearStiffness = 2 }},
		{"friction nan", func(c *Config) { c.Friction = math.NaN() }},
		{"negative margin", func(c *Config) { c.CollisionMargin = -0.01 }},
		{"negative mass", func(c *Config) { c.ParticleMass = -1 }},
		{"infinite gravity", func(c *Config) { c.Gravity = Vec3{0, math.Inf(-1), 0} }},
		{"bad sphere landmark", func(c *Config) { c.Spheres = []Sphere{{From: 99, To: NoAnchor, Radius: 0.1}} }},
		{"negative sphere radius", func(c *Config) { c.Spheres = []Sphere{{From: Nose, To: NoAnchor, Radius: -1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSphereCenter(t *testing.T) {
	b := body(map[Landmark]Vec3{
		LeftShoulder: {0, 2, 0},
		LeftHip:      {0, 0, 0},
	})
	s := Sphere{From: LeftShoulder, To: LeftHip, T: 0.5, Radius: 0.1}
	c, ok := s.Center(b)
	if !ok || c != (Vec3{0, 1, 0}) {
		t.Errorf("expected torso centre (0,1,0), got %v %v", c, ok)
	}
	if _, ok := (Sphere{From: Nose, To: NoAnchor}).Center(b); ok {
		t.Error("missing landmark should not resolve")
	}
}

func TestLandmarkNames(t *testing.T) {
	tests := []struct {
		name string
		want Landmark
	}{
		{"nose", Nose},
		{"left_shoulder", LeftShoulder},
		{" Right_Hip ", RightHip},
		{"right_foot_index", RightFootIndex},
		{"none", NoAnchor},
	}
	for _, tt := range tests {
		got, err := ParseLandmark(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %s, got %s (%v)", tt.name, tt.want, got, err)
		}
	}
	if _, err := ParseLandmark("tail"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if LeftShoulder != 11 || RightShoulder != 12 || NumLandmarks != 33 {
		t.Error("landmark order must match the 33-point skeleton")
	}
	for l := Nose; l < NumLandmarks; l++ {
		back, err := ParseLandmark(l.String())
		if err != nil || back != l {
			t.Errorf("landmark %d does not round trip through %q", int(l), l.String())
		}
	}
}
