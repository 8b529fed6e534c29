package viz

import (
	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/session"
)

// Bones are the skeleton segments drawn for the body.
var Bones = [][2]cloth.Landmark{
	{cloth.LeftEar, cloth.RightEar},
	{cloth.LeftShoulder, cloth.RightShoulder},
	{cloth.LeftShoulder, cloth.LeftElbow},
	{cloth.LeftElbow, cloth.LeftWrist},
	{cloth.RightShoulder, cloth.RightElbow},
	{cloth.RightElbow, cloth.RightWrist},
	{cloth.LeftShoulder, cloth.LeftHip},
	{cloth.RightShoulder, cloth.RightHip},
	{cloth.LeftHip, cloth.RightHip},
	{cloth.LeftHip, cloth.LeftKnee},
	{cloth.LeftKnee, cloth.LeftAnkle},
	{cloth.RightHip, cloth.RightKnee},
	{cloth.RightKnee, cloth.RightAnkle},
	{cloth.LeftAnkle, cloth.LeftFootIndex},
	{cloth.RightAnkle, cloth.RightFootIndex},
}

// Scene rasterises session views onto a canvas. It implements
// session.Renderer.
type Scene struct {
	Canvas *Canvas
	Camera *Camera

	ShowBody    bool
	ShowFloor   bool
	FloorHeight float64

	edges    map[cloth.Handle][][2]int
	frame    int
	rendered int
}

func NewScene(cols, rows int) *Scene {
	return &Scene{
		Canvas:   NewCanvas(cols, rows),
		Camera:   NewCamera(),
		ShowBody: true,
		edges:    make(map[cloth.Handle][][2]int),
	}
}

// Render draws v. The view's slices are only read during the call.
func (s *Scene) Render(v session.View) error {
	s.frame = v.Frame
	s.rendered++
	s.Draw(v)
	return nil
}

// LastFrame is the frame index of the most recent Render.
func (s *Scene) LastFrame() int { return s.frame }

// Rendered counts Render calls.
func (s *Scene) Rendered() int { return s.rendered }

// Draw clears the canvas and draws v from the current camera.
func (s *Scene) Draw(v session.View) {
	s.Canvas.Clear()
	w, h := s.Canvas.Dots()
	p := s.Camera.Projector(w, h)

	if s.ShowFloor {
		s.drawFloor(p)
	}
	if s.ShowBody {
		for _, b := range Bones {
			s.segment(p, v.Body, int(b[0]), int(b[1]))
		}
		if x, y, _, ok := s.point(p, v.Body, int(cloth.Nose)); ok {
			s.Canvas.Set(x, y)
			s.Canvas.Set(x+1, y)
		}
	}

	live := make(map[cloth.Handle]bool, len(v.Garments))
	for _, g := range v.Garments {
		live[g.Handle] = true
		for _, e := range s.garmentEdges(g) {
			s.segment(p, g.Positions, e[0], e[1])
		}
	}
	for h := range s.edges {
		if !live[h] {
			delete(s.edges, h)
		}
	}
}

func (s *Scene) garmentEdges(g session.GarmentView) [][2]int {
	if e, ok := s.edges[g.Handle]; ok {
		return e
	}
	e := MeshEdges(g.Triangles)
	s.edges[g.Handle] = e
	return e
}

// MeshEdges returns each distinct triangle edge once, lower index first.
func MeshEdges(tris [][3]int) [][2]int {
	seen := make(map[[2]int]bool, len(tris)*3/2)
	out := make([][2]int, 0, len(tris)*3/2)
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			a, b := t[k], t[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := [2]int{a, b}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

func (s *Scene) point(p Projector, pts []cloth.Vec3, i int) (int, int, float64, bool) {
	if i < 0 || i >= len(pts) {
		return 0, 0, 0, false
	}
	v := pts[i]
	if !cloth.Finite(v) {
		return 0, 0, 0, false
	}
	return p.Project(v)
}

func (s *Scene) segment(p Projector, pts []cloth.Vec3, i, j int) {
	x0, y0, _, ok0 := s.point(p, pts, i)
	x1, y1, _, ok1 := s.point(p, pts, j)
	if ok0 && ok1 {
		s.Canvas.Line(x0, y0, x1, y1)
	}
}

func (s *Scene) drawFloor(p Projector) {
	const half, step = 1.5, 0.5
	y := s.FloorHeight
	for t := -half; t <= half+1e-9; t += step {
		line := []cloth.Vec3{{-half, y, t}, {half, y, t}, {t, y, -half}, {t, y, half}}
		s.segment(p, line, 0, 1)
		s.segment(p, line, 2, 3)
	}
}
