package cloth

type edgeKey [2]int

func makeEdge(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type edgeInfo struct {
	opposite []int
	longest  int // triangles in which this is the strictly longest edge
}

// buildConstraints derives distance constraints from triangle edges. Each
// undirected edge yields exactly one constraint no matter how many triangles
// share it. Indices in the result are offset by base.
func buildConstraints(mesh Mesh, base int, cfg Config) []Constraint {
	if len(mesh.Triangles) == 0 {
		return nil
	}
	v := mesh.Vertices

	edges := make(map[edgeKey]*edgeInfo)
	order := make([]edgeKey, 0, len(mesh.Triangles)*3/2+1)

	for _, tri := range mesh.Triangles {
		var lens [3]float64
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			lens[k] = v[a].Sub(v[b]).Len()
		}
		for k := 0; k < 3; k++ {
			key := makeEdge(tri[k], tri[(k+1)%3])
			info, ok := edges[key]
			if !ok {
				info = &edgeInfo{}
				edges[key] = info
				order = append(order, key)
			}
			info.opposite = append(info.opposite, tri[(k+2)%3])
			if lens[k] > lens[(k+1)%3]+Epsilon && lens[k] > lens[(k+2)%3]+Epsilon {
				info.longest++
			}
		}
	}

	out := make([]Constraint, 0, len(order)*2)
	for _, key := range order {
		info := edges[key]
		kind := Stretch
		if len(info.opposite) == 2 && info.longest == 2 {
			kind = Shear
		}
		out = append(out, newConstraint(v, key, base, kind, cfg))
	}

	if !cfg.Bending {
		return out
	}
	bends := make(map[edgeKey]bool)
	for _, key := range order {
		info := edges[key]
		if len(info.opposite) != 2 || info.opposite[0] == info.opposite[1] {
			continue
		}
		bk := makeEdge(info.opposite[0], info.opposite[1])
		if _, isEdge := edges[bk]; isEdge || bends[bk] {
			continue
		}
		bends[bk] = true
		out = append(out, newConstraint(v, bk, base, Bend, cfg))
	}
	return out
}

func newConstraint(v []Vec3, key edgeKey, base int, kind ConstraintKind, cfg Config) Constraint {
	return Constraint{
		A:          base + key[0],
		B:          base + key[1],
		RestLength: v[key[0]].Sub(v[key[1]]).Len(),
		Stiffness:  cfg.stiffness(kind),
		Kind:       kind,
	}
}
