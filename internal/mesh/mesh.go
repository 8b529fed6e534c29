// Package mesh builds garment meshes for the cloth engine.
package mesh

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/drape/internal/cloth"
)

type Vec3 = cloth.Vec3

// Kind is a garment category.
type Kind int

const (
	Unknown Kind = iota
	TShirtKind
	ShirtKind
	JacketKind
	CoatKind
	DressKind
	PantsKind
	ShortsKind
	SkirtKind
)

var kindNames = map[Kind]string{
	Unknown:    "unknown",
	TShirtKind: "tshirt",
	ShirtKind:  "shirt",
	JacketKind: "jacket",
	CoatKind:   "coat",
	DressKind:  "dress",
	PantsKind:  "pants",
	ShortsKind: "shorts",
	SkirtKind:  "skirt",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a garment name such as "tshirt" or "skirt".
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("mesh: unknown garment kind %q", name)
}

// Kinds lists every known garment kind except Unknown.
func Kinds() []Kind {
	return []Kind{TShirtKind, ShirtKind, JacketKind, CoatKind, DressKind, PantsKind, ShortsKind, SkirtKind}
}

// Quad returns a width x height rectangle centred on the origin in the XY
// plane, split into two triangles.
func Quad(width, height float64) cloth.Mesh {
	hw, hh := width/2, height/2
	return cloth.Mesh{
		Vertices: []Vec3{
			{-hw, -hh, 0},
			{hw, -hh, 0},
			{hw, hh, 0},
			{-hw, hh, 0},
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// Grid returns a cols x rows lattice spanning width x height in the XY
// plane. Row 0 is at y=0 and rows extend downwards; x is centred on 0.
// Vertex (r, c) has index r*cols+c.
func Grid(cols, rows int, width, height float64) (cloth.Mesh, error) {
	if cols < 2 || rows < 2 {
		return cloth.Mesh{}, fmt.Errorf("mesh: grid needs at least 2x2 vertices, got %dx%d", cols, rows)
	}
	if width <= 0 || height <= 0 {
		return cloth.Mesh{}, fmt.Errorf("mesh: grid size must be positive, got %gx%g", width, height)
	}
	m := cloth.Mesh{Vertices: make([]Vec3, 0, cols*rows)}
	for r := 0; r < rows; r++ {
		y := -float64(r) / float64(rows-1) * height
		for c := 0; c < cols; c++ {
			x := (float64(c)/float64(cols-1) - 0.5) * width
			m.Vertices = append(m.Vertices, Vec3{x, y, 0})
		}
	}
	m.Triangles = lattice(cols, rows)
	return m, nil
}

// lattice triangulates a row-major cols x rows vertex grid.
func lattice(cols, rows int) [][3]int {
	tris := make([][3]int, 0, 2*(cols-1)*(rows-1))
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i := r*cols + c
			tris = append(tris, [3]int{i, i + 1, i + cols + 1}, [3]int{i, i + cols + 1, i + cols})
		}
	}
	return tris
}

const (
	shirtRows = 20
	shirtCols = 15
)

// TShirt returns the shirt template: a 15x20 lattice from y=1.0 down to
// y=-0.5, 0.8 wide, with sleeves flaring out across rows 2 to 5.
func TShirt() cloth.Mesh {
	m := cloth.Mesh{Vertices: make([]Vec3, 0, shirtRows*shirtCols)}
	for r := 0; r < shirtRows; r++ {
		y := 1.0 - float64(r)/float64(shirtRows-1)*1.5
		for c := 0; c < shirtCols; c++ {
			t := float64(c) / float64(shirtCols-1)
			x := (t - 0.5) * 0.8
			if r >= 2 && r <= 5 {
				sleeve := 0.3 * (1 - math.Abs(float64(r)-3.5)/2)
				if t < 0.3 {
					x -= sleeve
				}
				if t > 0.7 {
					x += sleeve
				}
			}
			m.Vertices = append(m.Vertices, Vec3{x, y, 0})
		}
	}
	m.Triangles = lattice(shirtCols, shirtRows)
	return m
}

// Skirt returns an open tube of rings, waist ring first, flaring from
// radius waist to radius hem over length. The two waist vertices on the x
// axis are anchored to the hips.
func Skirt(segments, rings int, waist, hem, length float64) (cloth.Mesh, error) {
	if segments < 3 || rings < 2 {
		return cloth.Mesh{}, fmt.Errorf("mesh: skirt needs 3 segments and 2 rings, got %d and %d", segments, rings)
	}
	if waist <= 0 || hem <= 0 || length <= 0 {
		return cloth.Mesh{}, fmt.Errorf("mesh: skirt dimensions must be positive")
	}
	m := cloth.Mesh{Vertices: make([]Vec3, 0, segments*rings)}
	for r := 0; r < rings; r++ {
		f := float64(r) / float64(rings-1)
		radius := waist + (hem-waist)*f
		y := -f * length
		for s := 0; s < segments; s++ {
			a := 2 * math.Pi * float64(s) / float64(segments)
			m.Vertices = append(m.Vertices, Vec3{radius * math.Cos(a), y, radius * math.Sin(a)})
		}
	}
	for r := 0; r < rings-1; r++ {
		for s := 0; s < segments; s++ {
			i := r*segments + s
			j := r*segments + (s+1)%segments
			m.Triangles = append(m.Triangles,
				[3]int{i, j, j + segments},
				[3]int{i, j + segments, i + segments})
		}
	}
	anchors := map[int]cloth.Landmark{0: cloth.LeftHip}
	if segments%2 == 0 {
		anchors[segments/2] = cloth.RightHip
	}
	m.Anchors = anchors
	return m, nil
}

// FromKind returns the template for a garment kind. Kinds without a
// dedicated template fall back to the closest shape.
func FromKind(k Kind) cloth.Mesh {
	switch k {
	case TShirtKind, ShirtKind, JacketKind, CoatKind, DressKind:
		return TShirt()
	case SkirtKind:
		m, _ := Skirt(24, 10, 0.16, 0.3, 0.5)
		return m
	case PantsKind, ShortsKind:
		m, _ := Grid(9, 11, 0.8, 1.0)
		return m
	default:
		return Quad(1, 1)
	}
}

// Bounds returns the axis-aligned bounding box of the vertices.
func Bounds(vertices []Vec3) (lo, hi Vec3) {
	if len(vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	lo, hi = vertices[0], vertices[0]
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], v[i])
			hi[i] = math.Max(hi[i], v[i])
		}
	}
	return lo, hi
}

// Clone deep-copies a mesh so transforms do not alias the template.
func Clone(m cloth.Mesh) cloth.Mesh {
	out := cloth.Mesh{
		Vertices:  append([]Vec3(nil), m.Vertices...),
		Triangles: append([][3]int(nil), m.Triangles...),
	}
	if m.Masses != nil {
		out.Masses = append([]float64(nil), m.Masses...)
	}
	if m.Anchors != nil {
		out.Anchors = make(map[int]cloth.Landmark, len(m.Anchors))
		for k, v := range m.Anchors {
			out.Anchors[k] = v
		}
	}
	return out
}

// Translate returns a copy of m moved by offset.
func Translate(m cloth.Mesh, offset Vec3) cloth.Mesh {
	out := Clone(m)
	for i := range out.Vertices {
		out.Vertices[i] = out.Vertices[i].Add(offset)
	}
	return out
}

// Scale returns a copy of m scaled per axis about the origin.
func Scale(m cloth.Mesh, s Vec3) cloth.Mesh {
	out := Clone(m)
	for i, v := range out.Vertices {
		out.Vertices[i] = Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
	}
	return out
}
