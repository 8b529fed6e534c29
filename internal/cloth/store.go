package cloth

import (
	"fmt"
	"math"
	"sort"
)

type garment struct {
	handle      Handle
	rng         Range
	anchors     int
	constraints int
}

// store is the particle arena. Live garments own disjoint ranges; removed
// ranges go to a free list and are reused first-fit, so live indices never
// shift.
type store struct {
	particles   []Particle
	contact     []bool
	constraints []Constraint
	garments    map[Handle]*garment
	order       []Handle
	free        []Range
	nextHandle  Handle
}

func newStore() *store {
	return &store{garments: make(map[Handle]*garment), nextHandle: 1}
}

func (s *store) clear() {
	s.particles = s.particles[:0]
	s.contact = s.contact[:0]
	s.constraints = s.constraints[:0]
	s.garments = make(map[Handle]*garment)
	s.order = s.order[:0]
	s.free = s.free[:0]
}

func (s *store) allocate(n int) Range {
	for i, f := range s.free {
		if f.Count < n {
			continue
		}
		r := Range{Start: f.Start, Count: n}
		if f.Count == n {
			s.free = append(s.free[:i], s.free[i+1:]...)
		} else {
			s.free[i] = Range{Start: f.Start + n, Count: f.Count - n}
		}
		return r
	}
	r := Range{Start: len(s.particles), Count: n}
	s.particles = append(s.particles, make([]Particle, n)...)
	s.contact = append(s.contact, make([]bool, n)...)
	return r
}

func (s *store) release(r Range) {
	for i := r.Start; i < r.End(); i++ {
		s.particles[i] = Particle{Anchor: NoAnchor}
		s.contact[i] = false
	}
	s.free = append(s.free, r)
	sort.Slice(s.free, func(i, j int) bool { return s.free[i].Start < s.free[j].Start })

	merged := s.free[:1]
	for _, f := range s.free[1:] {
		last := &merged[len(merged)-1]
		if last.End() == f.Start {
			last.Count += f.Count
			continue
		}
		merged = append(merged, f)
	}
	s.free = merged
}

func (s *store) lookup(h Handle) (*garment, bool) {
	g, ok := s.garments[h]
	return g, ok
}

// live returns garments in insertion order.
func (s *store) live() []*garment {
	out := make([]*garment, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.garments[h])
	}
	return out
}

func (s *store) add(mesh Mesh, cfg Config, body []Vec3) (*garment, error) {
	if err := ValidateMesh(mesh); err != nil {
		return nil, err
	}

	n := len(mesh.Vertices)
	rng := s.allocate(n)
	for i, v := range mesh.Vertices {
		mass := cfg.ParticleMass
		if mesh.Masses != nil {
			mass = mesh.Masses[i]
		}
		inv := 0.0
		if mass > 0 {
			inv = 1 / mass
		}
		s.particles[rng.Start+i] = Particle{
			Position:     v,
			PrevPosition: v,
			InvMass:      inv,
			Anchor:       NoAnchor,
		}
	}

	anchors := mesh.Anchors
	if anchors == nil && cfg.AutoAnchor && len(mesh.Triangles) > 0 {
		anchors = collarAnchors(mesh.Vertices, body, cfg)
	}
	for i, l := range anchors {
		p := &s.particles[rng.Start+i]
		p.Anchor = l
		p.InvMass = 0
	}

	built := buildConstraints(mesh, rng.Start, cfg)
	s.constraints = append(s.constraints, built...)

	g := &garment{handle: s.nextHandle, rng: rng, anchors: len(anchors), constraints: len(built)}
	s.nextHandle++
	s.garments[g.handle] = g
	s.order = append(s.order, g.handle)
	return g, nil
}

func (s *store) remove(h Handle) bool {
	g, ok := s.garments[h]
	if !ok {
		return false
	}
	delete(s.garments, h)
	for i, oh := range s.order {
		if oh == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	kept := s.constraints[:0]
	for _, c := range s.constraints {
		if !g.rng.Contains(c.A) {
			kept = append(kept, c)
		}
	}
	s.constraints = kept

	if len(s.garments) == 0 {
		s.clear()
		return true
	}
	s.release(g.rng)
	return true
}

// ValidateMesh checks vertices, triangles, masses and anchors of a mesh
// before it becomes a garment.
func ValidateMesh(mesh Mesh) error {
	n := len(mesh.Vertices)
	if n == 0 {
		return fmt.Errorf("%w: mesh has no vertices", ErrInvalidInput)
	}
	for i, v := range mesh.Vertices {
		if !Finite(v) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidInput, i)
		}
	}
	for t, tri := range mesh.Triangles {
		for _, idx := range tri {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrInvalidInput, t, idx, n)
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return fmt.Errorf("%w: triangle %d repeats a vertex", ErrInvalidInput, t)
		}
	}
	for idx, l := range mesh.Anchors {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: anchor on vertex %d of %d", ErrInvalidInput, idx, n)
		}
		if !l.Valid() {
			return fmt.Errorf("%w: anchor on vertex %d has invalid landmark %d", ErrInvalidInput, idx, int(l))
		}
	}
	if mesh.Masses != nil {
		if len(mesh.Masses) != n {
			return fmt.Errorf("%w: %d masses for %d vertices", ErrInvalidInput, len(mesh.Masses), n)
		}
		for i, m := range mesh.Masses {
			if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
				return fmt.Errorf("%w: vertex %d has invalid mass %f", ErrInvalidInput, i, m)
			}
		}
	}
	return nil
}
