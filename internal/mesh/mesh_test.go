package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/drape/internal/cloth"
)

func TestQuad(t *testing.T) {
	m := Quad(2, 1)
	if len(m.Vertices) != 4 || len(m.Triangles) != 2 {
		t.Fatalf("expected 4 vertices and 2 triangles, got %d and %d", len(m.Vertices), len(m.Triangles))
	}
	lo, hi := Bounds(m.Vertices)
	if lo != (Vec3{-1, -0.5, 0}) || hi != (Vec3{1, 0.5, 0}) {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}
}

func TestGrid(t *testing.T) {
	tests := []struct {
		cols, rows int
		wantErr    bool
	}{
		{2, 2, false},
		{5, 7, false},
		{1, 4, true},
		{4, 1, true},
	}
	for _, tt := range tests {
		m, err := Grid(tt.cols, tt.rows, 1, 1)
		if (err != nil) != tt.wantErr {
			t.Errorf("%dx%d: expected error %v, got %v", tt.cols, tt.rows, tt.wantErr, err)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(m.Vertices) != tt.cols*tt.rows {
			t.Errorf("%dx%d: expected %d vertices, got %d", tt.cols, tt.rows, tt.cols*tt.rows, len(m.Vertices))
		}
		if want := 2 * (tt.cols - 1) * (tt.rows - 1); len(m.Triangles) != want {
			t.Errorf("%dx%d: expected %d triangles, got %d", tt.cols, tt.rows, want, len(m.Triangles))
		}
	}
	if _, err := Grid(3, 3, 0, 1); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestTShirt(t *testing.T) {
	m := TShirt()
	if len(m.Vertices) != 300 {
		t.Fatalf("expected 300 vertices, got %d", len(m.Vertices))
	}
	if len(m.Triangles) != 2*14*19 {
		t.Errorf("expected %d triangles, got %d", 2*14*19, len(m.Triangles))
	}
	lo, hi := Bounds(m.Vertices)
	if math.Abs(hi.Y()-1) > 1e-12 || math.Abs(lo.Y()+0.5) > 1e-12 {
		t.Errorf("expected y from -0.5 to 1.0, got %f to %f", lo.Y(), hi.Y())
	}
	if hi.X() <= 0.4 {
		t.Errorf("sleeves should extend past the body width, max x %f", hi.X())
	}
	if m.Vertices[0].X() != -0.4 {
		t.Errorf("collar row should not flare, got x %f", m.Vertices[0].X())
	}

	e := cloth.New()
	if err := e.Initialize(cloth.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddGarment(m); err != nil {
		t.Errorf("template rejected by engine: %v", err)
	}
}

func TestSkirt(t *testing.T) {
	m, err := Skirt(12, 4, 0.2, 0.3, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Vertices) != 48 {
		t.Errorf("expected 48 vertices, got %d", len(m.Vertices))
	}
	if len(m.Triangles) != 2*12*3 {
		t.Errorf("expected 72 triangles, got %d", len(m.Triangles))
	}
	if m.Anchors[0] != cloth.LeftHip || m.Anchors[6] != cloth.RightHip {
		t.Errorf("expected hip anchors, got %v", m.Anchors)
	}
	hem := m.Vertices[len(m.Vertices)-12]
	if math.Abs(hem.Len()-math.Hypot(0.3, 0.5)) > 1e-9 {
		t.Errorf("unexpected hem vertex %v", hem)
	}
	if _, err := Skirt(2, 4, 0.2, 0.3, 0.5); err == nil {
		t.Error("expected error for too few segments")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("%s: round trip gave %s (%v)", k, got, err)
		}
	}
	if k, _ := ParseKind("T-Shirt"); k != TShirtKind {
		t.Errorf("expected tshirt, got %s", k)
	}
	if _, err := ParseKind("cape"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestFromKind(t *testing.T) {
	for _, k := range append(Kinds(), Unknown) {
		m := FromKind(k)
		if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
			t.Errorf("%s: empty template", k)
		}
	}
}

func testBody() []Vec3 {
	b := make([]Vec3, cloth.NumLandmarks)
	b[cloth.LeftShoulder] = Vec3{0.2, 1.4, 0}
	b[cloth.RightShoulder] = Vec3{-0.2, 1.4, 0}
	b[cloth.LeftHip] = Vec3{0.15, 0.9, 0}
	b[cloth.RightHip] = Vec3{-0.15, 0.9, 0}
	return b
}

func TestFitShirtToShoulders(t *testing.T) {
	m, err := Fit(TShirt(), testBody())
	if err != nil {
		t.Fatal(err)
	}
	left := m.Vertices[shirtCols-1]
	right := m.Vertices[0]
	if left.Sub(Vec3{0.2, 1.4, 0}).Len() > 1e-9 {
		t.Errorf("collar corner should land on the left shoulder, got %v", left)
	}
	if right.Sub(Vec3{-0.2, 1.4, 0}).Len() > 1e-9 {
		t.Errorf("collar corner should land on the right shoulder, got %v", right)
	}
	orig := TShirt()
	if orig.Vertices[0].X() != -0.4 {
		t.Error("fit must not modify the template")
	}
}

func TestFitSkirtToHips(t *testing.T) {
	s, _ := Skirt(12, 4, 0.2, 0.3, 0.5)
	m, err := Fit(s, testBody())
	if err != nil {
		t.Fatal(err)
	}
	if m.Vertices[0].Sub(Vec3{0.15, 0.9, 0}).Len() > 1e-9 {
		t.Errorf("waist should span the hips, got %v", m.Vertices[0])
	}
}

func TestFitWithoutBody(t *testing.T) {
	if _, err := Fit(TShirt(), nil); !errors.Is(err, ErrNoBody) {
		t.Errorf("expected ErrNoBody, got %v", err)
	}
}

func TestNormals(t *testing.T) {
	ns := Normals(Quad(1, 1))
	for i, n := range ns {
		if math.Abs(n.Z()-1) > 1e-12 {
			t.Errorf("vertex %d: expected +z normal, got %v", i, n)
		}
	}
}

func BenchmarkTShirt(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TShirt()
	}
}
