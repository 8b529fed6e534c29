package cloth

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is the vector type used for all positions and velocities.
type Vec3 = mgl64.Vec3

// Epsilon guards divisions by near-zero lengths and masses.
const Epsilon = 1e-6

// Handle identifies a garment inside one engine. Handles are never reused.
type Handle uint64

type Particle struct {
	Position     Vec3
	PrevPosition Vec3
	Velocity     Vec3
	InvMass      float64 // 0 for anchored and pinned particles
	Anchor       Landmark
}

// Anchored reports whether the particle follows a body landmark.
func (p Particle) Anchored() bool { return p.Anchor != NoAnchor }

// Free reports whether the particle is moved by the integrator and solver.
func (p Particle) Free() bool { return p.InvMass > 0 }

type ConstraintKind uint8

const (
	Stretch ConstraintKind = iota
	Shear
	Bend
)

func (k ConstraintKind) String() string {
	switch k {
	case Stretch:
		return "stretch"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	default:
		return "unknown"
	}
}

// Constraint keeps two particles at RestLength. A and B are indices into the
// engine's particle arena.
type Constraint struct {
	A, B       int
	RestLength float64
	Stiffness  float64
	Kind       ConstraintKind
}

// Mesh is the garment topology handed to AddGarment.
//
// Anchors optionally binds vertex indices to landmarks and disables the
// collar heuristic for that garment. Masses optionally overrides the
// per-vertex mass; a zero mass pins the vertex in place.
type Mesh struct {
	Vertices  []Vec3
	Triangles [][3]int
	Anchors   map[int]Landmark
	Masses    []float64
}

// Range is a contiguous slice of the particle arena.
type Range struct {
	Start, Count int
}

func (r Range) End() int { return r.Start + r.Count }

func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End() }

// StepStats summarises one call to Step.
type StepStats struct {
	Dt             float64
	Iterations     int
	Contacts       int
	MaxStrain      float64
	MaxPenetration float64
	KineticEnergy  float64
	Recovered      int
	Elapsed        time.Duration
}

// State is the engine lifecycle state.
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// Finite reports whether every component of v is a number.
func Finite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
