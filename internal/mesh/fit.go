package mesh

import (
	"errors"
	"fmt"

	"github.com/san-kum/drape/internal/cloth"
)

var ErrNoBody = errors.New("mesh: body landmarks missing for fit")

// Fit scales and moves a garment so its top edge spans the body: shoulder
// to shoulder for tops, hip to hip for garments anchored at the hips.
// Scaling is uniform about the centre of the top edge.
func Fit(m cloth.Mesh, body []Vec3) (cloth.Mesh, error) {
	if len(m.Vertices) == 0 {
		return cloth.Mesh{}, fmt.Errorf("mesh: fit on empty mesh")
	}
	left, right := cloth.LeftShoulder, cloth.RightShoulder
	for _, l := range m.Anchors {
		if l == cloth.LeftHip || l == cloth.RightHip {
			left, right = cloth.LeftHip, cloth.RightHip
			break
		}
	}
	pl, okL := cloth.LandmarkAt(body, left)
	pr, okR := cloth.LandmarkAt(body, right)
	if !okL || !okR {
		return cloth.Mesh{}, fmt.Errorf("%w: need %s and %s", ErrNoBody, left, right)
	}

	_, hi := Bounds(m.Vertices)
	top := make([]Vec3, 0)
	for _, v := range m.Vertices {
		if v.Y() >= hi.Y()-cloth.Epsilon {
			top = append(top, v)
		}
	}
	tlo, thi := Bounds(top)
	width := thi.X() - tlo.X()
	if width < cloth.Epsilon {
		return cloth.Mesh{}, fmt.Errorf("mesh: top edge has no width")
	}

	s := pl.Sub(pr).Len() / width
	pivot := Vec3{(tlo.X() + thi.X()) / 2, hi.Y(), (tlo.Z() + thi.Z()) / 2}
	mid := pl.Add(pr).Mul(0.5)

	out := Clone(m)
	for i, v := range out.Vertices {
		out.Vertices[i] = v.Sub(pivot).Mul(s).Add(mid)
	}
	return out, nil
}

// Normals returns area-weighted unit vertex normals. Vertices not used by
// any triangle get a zero normal.
func Normals(m cloth.Mesh) []Vec3 {
	return NormalsAt(m.Vertices, m.Triangles)
}

// NormalsAt computes normals for deformed positions sharing m's topology.
func NormalsAt(positions []Vec3, triangles [][3]int) []Vec3 {
	out := make([]Vec3, len(positions))
	for _, t := range triangles {
		a, b, c := positions[t[0]], positions[t[1]], positions[t[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range t {
			out[i] = out[i].Add(n)
		}
	}
	for i, n := range out {
		if n.Len() > 1e-4 {
			out[i] = n.Normalize()
		}
	}
	return out
}
