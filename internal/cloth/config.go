package cloth

import (
	"fmt"
	"math"
)

// Sphere approximates one part of the body. The centre is From when To is
// NoAnchor, otherwise the point T of the way from From to To.
type Sphere struct {
	From   Landmark
	To     Landmark
	T      float64
	Radius float64
}

// Center resolves the sphere centre against the current landmarks.
func (s Sphere) Center(body []Vec3) (Vec3, bool) {
	a, ok := LandmarkAt(body, s.From)
	if !ok {
		return Vec3{}, false
	}
	if s.To == NoAnchor || s.To == s.From {
		return a, true
	}
	b, ok := LandmarkAt(body, s.To)
	if !ok {
		return Vec3{}, false
	}
	return a.Add(b.Sub(a).Mul(s.T)), true
}

// DefaultSpheres is the empirically tuned body approximation: head,
// shoulders, arms, torso sides, hips and legs.
func DefaultSpheres() []Sphere {
	at := func(l Landmark, r float64) Sphere { return Sphere{From: l, To: NoAnchor, Radius: r} }
	return []Sphere{
		at(Nose, 0.11),
		at(LeftShoulder, 0.07),
		at(RightShoulder, 0.07),
		at(LeftElbow, 0.05),
		at(RightElbow, 0.05),
		at(LeftWrist, 0.04),
		at(RightWrist, 0.04),
		{From: LeftShoulder, To: LeftHip, T: 0.5, Radius: 0.12},
		{From: RightShoulder, To: RightHip, T: 0.5, Radius: 0.12},
		at(LeftHip, 0.10),
		at(RightHip, 0.10),
		at(LeftKnee, 0.06),
		at(RightKnee, 0.06),
		at(LeftAnkle, 0.05),
		at(RightAnkle, 0.05),
	}
}

type Config struct {
	Gravity          Vec3
	TimeStep         float64
	SolverIterations int
	Damping          float64

	StretchStiffness float64
	BendStiffness    float64
	ShearStiffness   float64

	CollisionMargin float64
	Friction        float64 // velocity scale for particles touching a collider
	ParticleMass    float64

	Bending      bool
	AutoAnchor   bool
	AnchorBand   float64 // fraction of mesh height treated as collar
	AnchorRadius float64

	Floor       bool
	FloorHeight float64

	MaxSubsteps int
	Spheres     []Sphere
}

func DefaultConfig() Config {
	return Config{
		Gravity:          Vec3{0, -9.81, 0},
		TimeStep:         1.0 / 60.0,
		SolverIterations: 10,
		Damping:          0.99,
		StretchStiffness: 0.9,
		BendStiffness:    0.5,
		ShearStiffness:   0.7,
		CollisionMargin:  0.01,
		Friction:         0.7,
		ParticleMass:     1.0,
		Bending:          true,
		AutoAnchor:       true,
		AnchorBand:       0.05,
		AnchorRadius:     0.08,
		Floor:            false,
		FloorHeight:      -2.0,
		MaxSubsteps:      4,
		Spheres:          DefaultSpheres(),
	}
}

// Validate checks every field against its valid range.
func (c Config) Validate() error {
	if !Finite(c.Gravity) {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	if math.IsNaN(c.TimeStep) || math.IsInf(c.TimeStep, 0) || c.TimeStep <= 0 {
		return fmt.Errorf("%w: timestep must be positive, got %f", ErrInvalidConfig, c.TimeStep)
	}
	if c.SolverIterations < 1 {
		return fmt.Errorf("%w: solver iterations must be at least 1, got %d", ErrInvalidConfig, c.SolverIterations)
	}
	if c.MaxSubsteps < 1 {
		return fmt.Errorf("%w: max substeps must be at least 1, got %d", ErrInvalidConfig, c.MaxSubsteps)
	}
	unit := map[string]float64{
		"damping":           c.Damping,
		"stretch stiffness": c.StretchStiffness,
		"bend stiffness":    c.BendStiffness,
		"shear stiffness":   c.ShearStiffness,
		"friction":          c.Friction,
		"anchor band":       c.AnchorBand,
	}
	for name, v := range unit {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %f", ErrInvalidConfig, name, v)
		}
	}
	nonNeg := map[string]float64{
		"collision margin": c.CollisionMargin,
		"particle mass":    c.ParticleMass,
		"anchor radius":    c.AnchorRadius,
	}
	for name, v := range nonNeg {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidConfig, name, v)
		}
	}
	if math.IsNaN(c.FloorHeight) || math.IsInf(c.FloorHeight, 0) {
		return fmt.Errorf("%w: floor height must be finite", ErrInvalidConfig)
	}
	for i, s := range c.Spheres {
		if !s.From.Valid() {
			return fmt.Errorf("%w: sphere %d has invalid landmark %d", ErrInvalidConfig, i, int(s.From))
		}
		if s.To != NoAnchor && !s.To.Valid() {
			return fmt.Errorf("%w: sphere %d has invalid landmark %d", ErrInvalidConfig, i, int(s.To))
		}
		if math.IsNaN(s.Radius) || s.Radius < 0 {
			return fmt.Errorf("%w: sphere %d radius must be non-negative, got %f", ErrInvalidConfig, i, s.Radius)
		}
	}
	return nil
}

func (c Config) stiffness(k ConstraintKind) float64 {
	switch k {
	case Shear:
		return c.ShearStiffness
	case Bend:
		return c.BendStiffness
	default:
		return c.StretchStiffness
	}
}
