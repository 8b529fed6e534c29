// Package export renders frames and series as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/session"
	"github.com/san-kum/drape/internal/viz"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, w, h float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background)
}

// CanvasToSVG draws every lit braille dot as a circle, scale pixels apart.
func CanvasToSVG(c *viz.Canvas, scale float64, ink string) string {
	if c == nil {
		return ""
	}
	w, h := c.Dots()
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", ink)
	r := scale * 0.4
	c.Each(func(x, y int) {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
			(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
	})
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type ViewStyle struct {
	Body    string
	Garment string
	Width   float64 // stroke width
}

var DefaultViewStyle = ViewStyle{Body: "#666688", Garment: "#cba6f7", Width: 1}

// ViewToSVG draws a frame as vector line segments from the camera's point
// of view: the skeleton in one group, each garment in its own.
func ViewToSVG(v session.View, cam *viz.Camera, width, height int, style ViewStyle) string {
	p := cam.Projector(width, height)
	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	seg := func(pts []cloth.Vec3, i, j int) {
		if i >= len(pts) || j >= len(pts) {
			return
		}
		x0, y0, _, ok0 := p.Project(pts[i])
		x1, y1, _, ok1 := p.Project(pts[j])
		if ok0 && ok1 {
			fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\"/>\n", x0, y0, x1, y1)
		}
	}

	if len(v.Body) > 0 {
		fmt.Fprintf(&sb, "<g id=\"body\" stroke=\"%s\" stroke-width=\"%.1f\">\n", style.Body, style.Width*2)
		for _, b := range viz.Bones {
			seg(v.Body, int(b[0]), int(b[1]))
		}
		sb.WriteString("</g>\n")
	}
	for _, g := range v.Garments {
		fmt.Fprintf(&sb, "<g id=\"%s\" stroke=\"%s\" stroke-width=\"%.1f\">\n", g.ID, style.Garment, style.Width)
		for _, e := range viz.MeshEdges(g.Triangles) {
			seg(g.Positions, e[0], e[1])
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as one polyline.
func SeriesToSVG(values []float64, width, height int, stroke string) string {
	pts := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			pts = append(pts, v)
		}
	}
	if len(pts) < 2 {
		return ""
	}

	lo, hi := pts[0], pts[0]
	for _, v := range pts {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"M", stroke)
	for i, v := range pts {
		x := float64(i) / float64(len(pts)-1) * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}
