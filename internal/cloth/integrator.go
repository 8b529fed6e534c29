package cloth

// forces holds the per-step external inputs shared by every particle.
type forces struct {
	gravity  Vec3
	external Vec3 // consumed by a single step, scaled by inverse mass
	damping  float64
}

// integrate advances one garment's particles by dt. Free particles use
// semi-implicit Euler with velocity damping. Anchored particles snap to
// their landmark with no inertia so attachment points never drift.
func integrate(ps []Particle, body []Vec3, f forces, dt float64) {
	for i := range ps {
		p := &ps[i]
		switch {
		case p.Anchored():
			p.PrevPosition = p.Position
			if pos, ok := LandmarkAt(body, p.Anchor); ok {
				p.Position = pos
			}
			p.Velocity = Vec3{}
		case p.Free():
			acc := f.gravity.Add(f.external.Mul(p.InvMass))
			p.Velocity = p.Velocity.Add(acc.Mul(dt)).Mul(f.damping)
			p.PrevPosition = p.Position
			p.Position = p.Position.Add(p.Velocity.Mul(dt))
		default:
			p.PrevPosition = p.Position
		}
	}
}

// updateVelocities rebuilds free particle velocities from the positional
// change of this step and applies friction to particles in contact.
func updateVelocities(ps []Particle, contact []bool, friction, dt float64) {
	inv := 1 / dt
	for i := range ps {
		p := &ps[i]
		if !p.Free() {
			continue
		}
		p.Velocity = p.Position.Sub(p.PrevPosition).Mul(inv)
		if contact[i] {
			p.Velocity = p.Velocity.Mul(friction)
		}
	}
}

// recoverNonFinite restores particles that diverged to their previous
// position and returns how many were reset.
func recoverNonFinite(ps []Particle) int {
	n := 0
	for i := range ps {
		p := &ps[i]
		if Finite(p.Position) && Finite(p.Velocity) {
			continue
		}
		if Finite(p.PrevPosition) {
			p.Position = p.PrevPosition
		} else {
			p.Position = Vec3{}
			p.PrevPosition = Vec3{}
		}
		p.Velocity = Vec3{}
		n++
	}
	return n
}
