package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.Dots(); w != 8 || h != 8 {
		t.Fatalf("dots = %dx%d, want 8x8", w, h)
	}

	c.Set(3, 5)
	if !c.Lit(3, 5) {
		t.Error("dot (3,5) should be lit")
	}
	if c.Grid[1][1] != brailleBlank|0x10 {
		t.Errorf("cell rune = %U, want %U", c.Grid[1][1], brailleBlank|0x10)
	}

	c.unset(3, 5)
	if c.Lit(3, 5) || c.Grid[1][1] != brailleBlank {
		t.Error("unset should restore the blank cell")
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}, {100, 100}} {
		c.Set(p[0], p[1])
		if c.Lit(p[0], p[1]) {
			t.Errorf("out of bounds dot %v reported lit", p)
		}
	}
	if n := c.Count(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestCanvasLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 0, 9, 0, 10},
		{"vertical", 2, 1, 2, 7, 7},
		{"diagonal", 0, 0, 5, 5, 6},
		{"reversed", 9, 3, 0, 3, 10},
		{"point", 4, 4, 4, 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(5, 2)
			c.Line(tt.x0, tt.y0, tt.x1, tt.y1)
			if !c.Lit(tt.x0, tt.y0) || !c.Lit(tt.x1, tt.y1) {
				t.Error("endpoints should be lit")
			}
			if n := c.Count(); n != tt.want {
				t.Errorf("count = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestCanvasEachAndString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)

	var got [][2]int
	c.Each(func(x, y int) { got = append(got, [2]int{x, y}) })
	if len(got) != 2 || got[0] != [2]int{0, 0} || got[1] != [2]int{5, 7} {
		t.Errorf("each = %v", got)
	}

	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("rows = %d, want 2", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 3 {
			t.Errorf("row width = %d, want 3", n)
		}
	}

	c.Clear()
	if c.Count() != 0 {
		t.Error("clear left dots lit")
	}
}

func TestCanvasResize(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(1, 1)
	c.Resize(10, 0)
	if c.Width != 10 || c.Height != 1 {
		t.Errorf("size = %dx%d, want 10x1", c.Width, c.Height)
	}
	if c.Count() != 0 {
		t.Error("resize should clear")
	}
}
