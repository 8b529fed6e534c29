package cloth

import (
	"math"
	"testing"
)

func quad() Mesh {
	return Mesh{
		Vertices:  []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

func countKinds(cs []Constraint) map[ConstraintKind]int {
	out := make(map[ConstraintKind]int)
	for _, c := range cs {
		out[c.Kind]++
	}
	return out
}

func TestQuadConstraints(t *testing.T) {
	cfg := DefaultConfig()
	cs := buildConstraints(quad(), 0, cfg)
	if len(cs) != 6 {
		t.Fatalf("expected 6 constraints, got %d", len(cs))
	}
	kinds := countKinds(cs)
	if kinds[Stretch] != 4 || kinds[Shear] != 1 || kinds[Bend] != 1 {
		t.Errorf("expected 4 stretch, 1 shear, 1 bend, got %v", kinds)
	}
	for _, c := range cs {
		switch c.Kind {
		case Shear:
			if c.A != 0 || c.B != 2 {
				t.Errorf("expected shear on the 0-2 diagonal, got %d-%d", c.A, c.B)
			}
			if c.Stiffness != cfg.ShearStiffness {
				t.Errorf("expected shear stiffness %f, got %f", cfg.ShearStiffness, c.Stiffness)
			}
		case Bend:
			if c.A != 1 || c.B != 3 {
				t.Errorf("expected bend across 1-3, got %d-%d", c.A, c.B)
			}
			if math.Abs(c.RestLength-math.Sqrt2) > 1e-12 {
				t.Errorf("expected bend rest length sqrt(2), got %f", c.RestLength)
			}
		}
	}
}

func TestBendingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bending = false
	cs := buildConstraints(quad(), 0, cfg)
	if len(cs) != 5 {
		t.Errorf("expected 5 edge constraints, got %d", len(cs))
	}
	if countKinds(cs)[Bend] != 0 {
		t.Error("expected no bend constraints")
	}
}

func TestEdgeDedup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bending = false
	m := grid(4, 4, 0.1, 0)
	cs := buildConstraints(m, 0, cfg)

	seen := make(map[edgeKey]bool)
	for _, c := range cs {
		k := makeEdge(c.A, c.B)
		if seen[k] {
			t.Fatalf("duplicate constraint %d-%d", c.A, c.B)
		}
		seen[k] = true
	}
	// 4 rows and 4 columns of 3 edges each, plus 9 quad diagonals.
	if len(cs) != 12+12+9 {
		t.Errorf("expected 33 constraints, got %d", len(cs))
	}
	if n := countKinds(cs)[Shear]; n != 9 {
		t.Errorf("expected 9 shear diagonals, got %d", n)
	}
}

func TestConstraintOffset(t *testing.T) {
	cs := buildConstraints(quad(), 100, DefaultConfig())
	for _, c := range cs {
		if c.A < 100 || c.A > 103 || c.B < 100 || c.B > 103 {
			t.Errorf("constraint %d-%d outside offset range", c.A, c.B)
		}
	}
}

func TestRestLengthFromVertices(t *testing.T) {
	m := Mesh{
		Vertices:  []Vec3{{0, 0, 0}, {3, 0, 0}, {0, 4, 0}},
		Triangles: [][3]int{{0, 1, 2}},
	}
	want := map[edgeKey]float64{{0, 1}: 3, {0, 2}: 4, {1, 2}: 5}
	for _, c := range buildConstraints(m, 0, DefaultConfig()) {
		if got := c.RestLength; got != want[makeEdge(c.A, c.B)] {
			t.Errorf("edge %d-%d: expected rest %f, got %f", c.A, c.B, want[makeEdge(c.A, c.B)], got)
		}
	}
}

func TestNoTrianglesNoConstraints(t *testing.T) {
	m := Mesh{Vertices: []Vec3{{0, 0, 0}, {1, 0, 0}}}
	if cs := buildConstraints(m, 0, DefaultConfig()); len(cs) != 0 {
		t.Errorf("expected no constraints, got %d", len(cs))
	}
}
