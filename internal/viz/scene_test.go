package viz

import (
	"bytes"
	"image/color"
	"image/gif"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/mesh"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
)

func TestMeshEdges(t *testing.T) {
	quad := mesh.Quad(1, 1)
	edges := MeshEdges(quad.Triangles)
	if len(edges) != 5 {
		t.Fatalf("quad edges = %d, want 5", len(edges))
	}
	for _, e := range edges {
		if e[0] >= e[1] {
			t.Errorf("edge %v should list the lower index first", e)
		}
	}
	if got := MeshEdges(nil); len(got) != 0 {
		t.Errorf("no triangles should give no edges, got %v", got)
	}
}

func TestSceneDrawsBodyAndGarments(t *testing.T) {
	body := pose.TPose(pose.DefaultHeight)
	quad := mesh.Translate(mesh.Quad(0.4, 0.4), cloth.Vec3{0, 1.2, 0.2})

	s := NewScene(40, 20)
	if err := s.Render(session.View{Frame: 3, Body: body}); err != nil {
		t.Fatal(err)
	}
	bodyDots := s.Canvas.Count()
	if bodyDots == 0 {
		t.Fatal("skeleton should light dots")
	}
	if s.LastFrame() != 3 || s.Rendered() != 1 {
		t.Errorf("frame bookkeeping: last %d rendered %d", s.LastFrame(), s.Rendered())
	}

	s.ShowBody = false
	v := session.View{Body: body, Garments: []session.GarmentView{{
		Handle:    7,
		ID:        "quad",
		Positions: quad.Vertices,
		Triangles: quad.Triangles,
	}}}
	s.Draw(v)
	if s.Canvas.Count() == 0 {
		t.Fatal("garment wireframe should light dots")
	}
	if len(s.edges) != 1 {
		t.Errorf("edge cache size = %d, want 1", len(s.edges))
	}

	s.Draw(session.View{Body: body})
	if s.Canvas.Count() != 0 {
		t.Error("nothing should be drawn with the body hidden and no garments")
	}
	if len(s.edges) != 0 {
		t.Error("edges of garments no longer in view should be dropped")
	}
}

func TestSceneSkipsMissingLandmarks(t *testing.T) {
	body := pose.TPose(pose.DefaultHeight)
	nan := cloth.Vec3{math.NaN(), 0, 0}
	for i := range body {
		body[i] = nan
	}
	s := NewScene(20, 10)
	s.Draw(session.View{Body: body})
	if s.Canvas.Count() != 0 {
		t.Error("non-finite landmarks should not be drawn")
	}
	s.Draw(session.View{Body: body[:3]})
}

func TestSceneFloor(t *testing.T) {
	s := NewScene(40, 20)
	s.ShowBody = false
	s.ShowFloor = true
	s.Draw(session.View{})
	if s.Canvas.Count() == 0 {
		t.Error("floor grid should be visible from the default camera")
	}
}

func TestGIFRecorder(t *testing.T) {
	r := NewGIFRecorder(0, color.White)
	var buf bytes.Buffer
	if err := r.Encode(&buf); err == nil {
		t.Error("encoding with no frames should fail")
	}

	c := NewCanvas(4, 2)
	c.Line(0, 0, 7, 7)
	r.Capture(c)
	c.Clear()
	c.Set(1, 1)
	r.Capture(c)
	r.Capture(NewCanvas(8, 8))
	if r.Len() != 2 {
		t.Fatalf("frames = %d, want 2 (mismatched size dropped)", r.Len())
	}

	if err := r.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	g, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 2 || g.Delay[0] != 2 {
		t.Errorf("decoded %d frames with delay %d", len(g.Image), g.Delay[0])
	}
	if b := g.Image[0].Bounds(); b.Dx() != 8*dotPixels || b.Dy() != 8*dotPixels {
		t.Errorf("frame bounds = %v", b)
	}

	r.Reset()
	if r.Len() != 0 {
		t.Error("reset should drop frames")
	}
}

func TestSparklineAndGauge(t *testing.T) {
	if got := Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline = %q", got)
	}
	got := []rune(Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 5))
	if len(got) != 5 || got[0] != '▁' || got[4] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	if got := Gauge(0.5, 4); got != "██░░" {
		t.Errorf("gauge = %q", got)
	}
	if got := Gauge(3, 2); got != "██" {
		t.Errorf("overfull gauge = %q", got)
	}
	if got := Gauge(-1, 2); got != "░░" {
		t.Errorf("negative gauge = %q", got)
	}
	if !strings.Contains("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏", Spinner(-3)) {
		t.Error("spinner frame out of set")
	}
}

func TestThemes(t *testing.T) {
	if ThemeByName("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
	last := Themes[len(Themes)-1].Name
	if NextTheme(last).Name != Themes[0].Name {
		t.Error("next theme should wrap")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names incomplete")
	}
}
