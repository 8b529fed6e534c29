package main

import (
	"strings"
	"testing"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/session"
)

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		value   float64
		wantErr bool
	}{
		{"damping=0.95", "damping", 0.95, false},
		{" iterations = 12 ", "iterations", 12, false},
		{"damping", "", 0, true},
		{"=1", "", 0, true},
		{"damping=abc", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, v, err := parseAssignment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (name != tt.name || v != tt.value) {
				t.Errorf("got %s=%v, want %s=%v", name, v, tt.name, tt.value)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	name, vals, err := parseRange("damping=0.9:0.99:4")
	if err != nil {
		t.Fatal(err)
	}
	if name != "damping" || len(vals) != 4 || vals[0] != 0.9 || vals[3] != 0.99 {
		t.Errorf("got %s %v", name, vals)
	}

	for _, bad := range []string{"damping", "damping=1:2", "damping=a:2:3", "damping=1:b:3", "damping=1:2:0", "=1:2:3"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Errorf("%q should not parse", bad)
		}
	}
}

func TestFormatParams(t *testing.T) {
	got := formatParams(map[string]float64{"iterations": 10, "damping": 0.95})
	if got != "damping=0.95 iterations=10" {
		t.Errorf("formatParams = %q", got)
	}
}

func TestLastViewCopies(t *testing.T) {
	body := []cloth.Vec3{{0, 1, 0}}
	pos := []cloth.Vec3{{1, 2, 3}}
	var l lastView
	if err := l.Render(session.View{Frame: 3, Body: body, Garments: []session.GarmentView{{ID: "a", Positions: pos}}}); err != nil {
		t.Fatal(err)
	}
	body[0] = cloth.Vec3{9, 9, 9}
	pos[0] = cloth.Vec3{9, 9, 9}

	if l.view.Frame != 3 || l.view.Body[0] != (cloth.Vec3{0, 1, 0}) {
		t.Errorf("body not copied: %+v", l.view)
	}
	if l.view.Garments[0].Positions[0] != (cloth.Vec3{1, 2, 3}) {
		t.Error("garment positions not copied")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		total int
		lines int
		last  string
	}{
		{20, 10, "100%"},
		{5, 5, "100%"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		var b strings.Builder
		obs := progress(&b, tt.total)
		for i := 0; i < tt.total; i++ {
			obs(experiment.Frame{Time: float64(i)})
		}
		lines := strings.Split(strings.TrimSpace(b.String()), "\n")
		if tt.lines == 0 {
			if b.Len() != 0 {
				t.Errorf("total %d: unexpected output %q", tt.total, b.String())
			}
			continue
		}
		if len(lines) != tt.lines || !strings.Contains(lines[len(lines)-1], tt.last) {
			t.Errorf("total %d: got %q", tt.total, b.String())
		}
	}
}
