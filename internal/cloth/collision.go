package cloth

import "math"

type collider struct {
	center Vec3
	radius float64 // tuned sphere radius
	reach  float64 // radius plus collision margin
}

type floorPlane struct {
	enabled bool
	height  float64
}

// colliders places the configured spheres on the current body. Spheres whose
// landmarks are missing are dropped for this step.
func colliders(spheres []Sphere, body []Vec3, margin float64) []collider {
	out := make([]collider, 0, len(spheres))
	for _, s := range spheres {
		c, ok := s.Center(body)
		if !ok {
			continue
		}
		out = append(out, collider{center: c, radius: s.Radius, reach: s.Radius + margin})
	}
	return out
}

// passes bounds the sweeps per particle when overlapping spheres push it
// back into each other.
const passes = 4

// resolveCollisions pushes free particles out of every sphere along the
// centre-to-particle normal and flags them as touching. Distances under
// Epsilon have no usable normal and are skipped. It returns the number of
// particles newly flagged.
func resolveCollisions(ps []Particle, contact []bool, cols []collider, floor floorPlane) int {
	hits := 0
	for i := range ps {
		p := &ps[i]
		if !p.Free() {
			continue
		}
		for pass := 0; pass < passes; pass++ {
			moved := false
			for _, c := range cols {
				d := p.Position.Sub(c.center)
				dist := d.Len()
				if dist >= c.reach || dist < Epsilon {
					continue
				}
				p.Position = c.center.Add(d.Mul(c.reach / dist))
				moved = true
			}
			if !moved {
				break
			}
			if !contact[i] {
				contact[i] = true
				hits++
			}
		}
		if floor.enabled && p.Position.Y() < floor.height {
			p.Position[1] = floor.height
			if !contact[i] {
				contact[i] = true
				hits++
			}
		}
	}
	return hits
}

// penetration returns the deepest intrusion of a free particle into a
// sphere's tuned radius.
func penetration(ps []Particle, cols []collider) float64 {
	worst := 0.0
	for _, p := range ps {
		if !p.Free() {
			continue
		}
		for _, c := range cols {
			worst = math.Max(worst, c.radius-p.Position.Sub(c.center).Len())
		}
	}
	return worst
}
