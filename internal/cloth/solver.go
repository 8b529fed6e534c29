package cloth

import "math"

// project runs one Gauss-Seidel sweep over all constraints. Corrections are
// applied immediately, so later constraints see earlier ones.
func project(ps []Particle, cs []Constraint) {
	for _, c := range cs {
		a, b := &ps[c.A], &ps[c.B]
		w := a.InvMass + b.InvMass
		if w < Epsilon {
			continue
		}
		delta := a.Position.Sub(b.Position)
		dist := delta.Len()
		if dist < Epsilon {
			continue
		}
		corr := c.Stiffness * (dist - c.RestLength) / (w + Epsilon)
		n := delta.Mul(1 / dist)
		if a.InvMass > 0 {
			a.Position = a.Position.Sub(n.Mul(corr * a.InvMass))
		}
		if b.InvMass > 0 {
			b.Position = b.Position.Add(n.Mul(corr * b.InvMass))
		}
	}
}

// maxStrain returns the largest relative length error over the constraint set.
func maxStrain(ps []Particle, cs []Constraint) float64 {
	worst := 0.0
	for _, c := range cs {
		if c.RestLength < Epsilon {
			continue
		}
		d := ps[c.A].Position.Sub(ps[c.B].Position).Len()
		worst = math.Max(worst, math.Abs(d-c.RestLength)/c.RestLength)
	}
	return worst
}

func kineticEnergy(ps []Particle) float64 {
	e := 0.0
	for _, p := range ps {
		if !p.Free() {
			continue
		}
		e += 0.5 * p.Velocity.LenSqr() / p.InvMass
	}
	return e
}
