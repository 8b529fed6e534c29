package cloth

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Engine owns every particle, constraint and garment of one simulation.
type Engine struct {
	cfg   Config
	state State
	store *store
	body  []Vec3

	external Vec3
	acc      float64
	last     StepStats
	steps    uint64

	log *zap.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger routes engine diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns an uninitialized engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:   DefaultConfig(),
		store: newStore(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize applies cfg and clears any existing garments.
func (e *Engine) Initialize(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Spheres = append([]Sphere(nil), cfg.Spheres...)
	e.cfg = cfg
	e.store.clear()
	e.external = Vec3{}
	e.acc = 0
	e.last = StepStats{}
	e.state = Initialized
	e.log.Info("engine initialized",
		zap.Float64("timestep", cfg.TimeStep),
		zap.Int("iterations", cfg.SolverIterations),
		zap.Int("spheres", len(cfg.Spheres)),
		zap.Bool("floor", cfg.Floor),
	)
	return nil
}

func (e *Engine) IsInitialized() bool { return e.state == Initialized }

func (e *Engine) State() State { return e.state }

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Spheres = append([]Sphere(nil), e.cfg.Spheres...)
	return cfg
}

// AddGarment creates particles and constraints for mesh and returns its handle.
func (e *Engine) AddGarment(mesh Mesh) (Handle, error) {
	if !e.IsInitialized() {
		return 0, ErrNotInitialized
	}
	g, err := e.store.add(mesh, e.cfg, e.body)
	if err != nil {
		return 0, fmt.Errorf("add garment: %w", err)
	}
	e.log.Debug("garment added",
		zap.Uint64("handle", uint64(g.handle)),
		zap.Int("start", g.rng.Start),
		zap.Int("particles", g.rng.Count),
		zap.Int("anchors", g.anchors),
		zap.Int("constraints", g.constraints),
	)
	if g.anchors == 0 && len(mesh.Triangles) > 0 {
		e.log.Warn("garment has no anchors and will fall freely", zap.Uint64("handle", uint64(g.handle)))
	}
	return g.handle, nil
}

// RemoveGarment frees the garment's particles and constraints. Other
// garments keep their particle indices.
func (e *Engine) RemoveGarment(h Handle) error {
	if !e.IsInitialized() {
		return ErrNotInitialized
	}
	if !e.store.remove(h) {
		return &GarmentError{Op: "remove", Handle: h, Err: ErrNotFound}
	}
	e.log.Debug("garment removed",
		zap.Uint64("handle", uint64(h)),
		zap.Int("remaining", len(e.store.garments)),
		zap.Int("particles", len(e.store.particles)),
	)
	return nil
}

// Reset removes every garment and any pending external force.
func (e *Engine) Reset() {
	e.store.clear()
	e.external = Vec3{}
	e.acc = 0
	e.last = StepStats{}
	e.log.Debug("engine reset")
}

// UpdateCollisionBody replaces the body landmarks used by the next step. The
// slice is copied. It may be called in any state.
func (e *Engine) UpdateCollisionBody(landmarks []Vec3) {
	e.body = append(e.body[:0], landmarks...)
}

// Body returns a copy of the current collision body.
func (e *Engine) Body() []Vec3 {
	return append([]Vec3(nil), e.body...)
}

// ApplyExternalForce adds f to the force applied on the next step only.
func (e *Engine) ApplyExternalForce(f Vec3) error {
	sum := e.external.Add(f)
	if !Finite(f) || !Finite(sum) {
		return fmt.Errorf("%w: external force must be finite", ErrInvalidInput)
	}
	e.external = sum
	return nil
}

// Step advances the simulation by dt seconds. A zero dt does nothing.
func (e *Engine) Step(dt float64) (StepStats, error) {
	if !e.IsInitialized() {
		return StepStats{}, ErrNotInitialized
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return StepStats{}, fmt.Errorf("%w: got %v", ErrInvalidTimestep, dt)
	}
	if dt == 0 {
		return StepStats{}, nil
	}

	start := time.Now()
	s := e.store
	ps := s.particles
	for i := range s.contact {
		s.contact[i] = false
	}
	cols := colliders(e.cfg.Spheres, e.body, e.cfg.CollisionMargin)
	floor := floorPlane{enabled: e.cfg.Floor, height: e.cfg.FloorHeight}

	integrate(ps, e.body, forces{gravity: e.cfg.Gravity, external: e.external, damping: e.cfg.Damping}, dt)
	e.external = Vec3{}

	contacts := 0
	for it := 0; it < e.cfg.SolverIterations; it++ {
		project(ps, s.constraints)
		contacts += resolveCollisions(ps, s.contact, cols, floor)
	}
	updateVelocities(ps, s.contact, e.cfg.Friction, dt)
	recovered := recoverNonFinite(ps)

	stats := StepStats{
		Dt:             dt,
		Iterations:     e.cfg.SolverIterations,
		Contacts:       contacts,
		MaxStrain:      maxStrain(ps, s.constraints),
		MaxPenetration: penetration(ps, cols),
		KineticEnergy:  kineticEnergy(ps),
		Recovered:      recovered,
		Elapsed:        time.Since(start),
	}
	if recovered > 0 {
		e.log.Warn("recovered non-finite particles",
			zap.Int("count", recovered),
			zap.Uint64("step", e.steps),
		)
	}
	e.steps++
	e.last = stats
	return stats, nil
}

// Advance feeds wall-clock time into a fixed-step accumulator and runs up to
// MaxSubsteps steps of TimeStep. Time beyond the cap is dropped. It returns
// the number of steps taken.
func (e *Engine) Advance(elapsed time.Duration) (int, error) {
	if !e.IsInitialized() {
		return 0, ErrNotInitialized
	}
	if elapsed < 0 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidTimestep, elapsed)
	}
	ts := e.cfg.TimeStep
	e.acc += elapsed.Seconds()
	n := 0
	for e.acc >= ts && n < e.cfg.MaxSubsteps {
		if _, err := e.Step(ts); err != nil {
			return n, err
		}
		e.acc -= ts
		n++
	}
	if e.acc >= ts {
		e.log.Debug("dropping simulation backlog", zap.Float64("seconds", e.acc))
		e.acc = math.Mod(e.acc, ts)
	}
	return n, nil
}

// LastStats returns the statistics of the most recent non-empty step.
func (e *Engine) LastStats() StepStats { return e.last }

// Positions returns a copy of the garment's particle positions in vertex order.
func (e *Engine) Positions(h Handle) ([]Vec3, error) {
	return e.PositionsInto(h, nil)
}

// PositionsInto is Positions writing into dst, which is grown as needed.
func (e *Engine) PositionsInto(h Handle, dst []Vec3) ([]Vec3, error) {
	g, err := e.garment("positions", h)
	if err != nil {
		return nil, err
	}
	dst = dst[:0]
	for _, p := range e.store.particles[g.rng.Start:g.rng.End()] {
		dst = append(dst, p.Position)
	}
	return dst, nil
}

// Particles returns a copy of the garment's full particle state.
func (e *Engine) Particles(h Handle) ([]Particle, error) {
	g, err := e.garment("particles", h)
	if err != nil {
		return nil, err
	}
	return append([]Particle(nil), e.store.particles[g.rng.Start:g.rng.End()]...), nil
}

// Constraints returns the garment's constraints with indices relative to
// its first vertex.
func (e *Engine) Constraints(h Handle) ([]Constraint, error) {
	g, err := e.garment("constraints", h)
	if err != nil {
		return nil, err
	}
	var out []Constraint
	for _, c := range e.store.constraints {
		if !g.rng.Contains(c.A) {
			continue
		}
		c.A -= g.rng.Start
		c.B -= g.rng.Start
		out = append(out, c)
	}
	return out, nil
}

// Range returns the arena slice owned by the garment.
func (e *Engine) Range(h Handle) (Range, error) {
	g, err := e.garment("range", h)
	if err != nil {
		return Range{}, err
	}
	return g.rng, nil
}

// Garments returns live handles in insertion order.
func (e *Engine) Garments() []Handle {
	out := make([]Handle, 0, len(e.store.order))
	return append(out, e.store.order...)
}

// ParticleCount returns the arena size, including freed ranges.
func (e *Engine) ParticleCount() int { return len(e.store.particles) }

func (e *Engine) ConstraintCount() int { return len(e.store.constraints) }

func (e *Engine) garment(op string, h Handle) (*garment, error) {
	if !e.IsInitialized() {
		return nil, ErrNotInitialized
	}
	g, ok := e.store.lookup(h)
	if !ok {
		return nil, &GarmentError{Op: op, Handle: h, Err: ErrNotFound}
	}
	return g, nil
}
