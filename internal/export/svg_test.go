package export

import (
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/mesh"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
	"github.com/san-kum/drape/internal/viz"
)

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("invalid svg: %v", err)
		}
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2, "#fff") != "" {
		t.Error("nil canvas should give empty output")
	}
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)
	doc := CanvasToSVG(c, 2, "#00ff00")
	wellFormed(t, doc)
	if n := strings.Count(doc, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	if !strings.Contains(doc, `width="16" height="16"`) {
		t.Error("size should be dots times scale")
	}
}

func TestViewToSVG(t *testing.T) {
	quad := mesh.Translate(mesh.Quad(0.4, 0.4), cloth.Vec3{0, 1.2, 0.2})
	v := session.View{
		Body: pose.TPose(pose.DefaultHeight),
		Garments: []session.GarmentView{{
			ID:        "quad",
			Positions: quad.Vertices,
			Triangles: quad.Triangles,
		}},
	}
	doc := ViewToSVG(v, viz.NewCamera(), 400, 300, DefaultViewStyle)
	wellFormed(t, doc)
	if !strings.Contains(doc, `<g id="body"`) || !strings.Contains(doc, `<g id="quad"`) {
		t.Error("missing body or garment group")
	}
	garment := doc[strings.Index(doc, `<g id="quad"`):]
	if n := strings.Count(garment, "<line"); n != 5 {
		t.Errorf("garment lines = %d, want 5", n)
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("one point is not a series")
	}
	doc := SeriesToSVG([]float64{0, 1, math.NaN(), 0.5, 2}, 100, 50, "#ff0000")
	wellFormed(t, doc)
	if n := strings.Count(doc, " L"); n != 3 {
		t.Errorf("segments = %d, want 3 (NaN skipped)", n)
	}
	flat := SeriesToSVG([]float64{3, 3, 3}, 100, 50, "#fff")
	wellFormed(t, flat)
}
