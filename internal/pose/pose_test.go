package pose

import (
	"math"
	"testing"

	"github.com/san-kum/drape/internal/cloth"
)

func TestTPose(t *testing.T) {
	b := TPose(DefaultHeight)
	if len(b) != cloth.NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", cloth.NumLandmarks, len(b))
	}
	if b[cloth.LeftShoulder].X() <= 0 || b[cloth.RightShoulder].X() >= 0 {
		t.Errorf("left shoulder should be on +x, got %v %v", b[cloth.LeftShoulder], b[cloth.RightShoulder])
	}
	if b[cloth.Nose].Y() <= b[cloth.LeftShoulder].Y() || b[cloth.LeftHip].Y() >= b[cloth.LeftShoulder].Y() {
		t.Error("expected nose above shoulders above hips")
	}

	tall := TPose(2 * DefaultHeight)
	if math.Abs(tall[cloth.Nose].Y()-2*b[cloth.Nose].Y()) > 1e-12 {
		t.Errorf("expected landmarks to scale with height, got %f", tall[cloth.Nose].Y())
	}
}

func TestStaticIsConstant(t *testing.T) {
	a := NewAnimator(Static, 0.1, 1, DefaultHeight, 0, 1)
	f0 := a.Frame(0)
	f1 := a.Frame(0.37)
	for i := range f0 {
		if f0[i] != f1[i] {
			t.Errorf("landmark %d moved in static pose", i)
		}
	}
}

func TestMotions(t *testing.T) {
	base := TPose(DefaultHeight)
	tests := []struct {
		motion Motion
		check  func(f []Vec3) bool
	}{
		{Sway, func(f []Vec3) bool { return math.Abs(f[cloth.Nose].X()-base[cloth.Nose].X()-0.1) < 1e-9 }},
		{Bob, func(f []Vec3) bool { return math.Abs(f[cloth.Nose].Y()-base[cloth.Nose].Y()-0.1) < 1e-9 }},
		{Turn, func(f []Vec3) bool { return f[cloth.LeftShoulder].Z() != 0 }},
		{Walk, func(f []Vec3) bool {
			return f[cloth.LeftAnkle].Z() != base[cloth.LeftAnkle].Z() &&
				(f[cloth.LeftAnkle].Z()-base[cloth.LeftAnkle].Z())*(f[cloth.RightAnkle].Z()-base[cloth.RightAnkle].Z()) < 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.motion.String(), func(t *testing.T) {
			a := NewAnimator(tt.motion, 0.1, 1, DefaultHeight, 0, 1)
			f := a.Frame(0.25) // quarter period: sin = 1
			if !tt.check(f) {
				t.Errorf("%s: unexpected frame", tt.motion)
			}
		})
	}
}

func TestTurnKeepsDistances(t *testing.T) {
	a := NewAnimator(Turn, 0.6, 1, DefaultHeight, 0, 1)
	base := TPose(DefaultHeight)
	f := a.Frame(0.2)
	d0 := base[cloth.LeftShoulder].Sub(base[cloth.RightShoulder]).Len()
	d1 := f[cloth.LeftShoulder].Sub(f[cloth.RightShoulder]).Len()
	if math.Abs(d0-d1) > 1e-9 {
		t.Errorf("turn should be rigid, shoulder width %f became %f", d0, d1)
	}
}

func TestJitterIsSeeded(t *testing.T) {
	a := NewAnimator(Static, 0, 0, DefaultHeight, 0.01, 42)
	b := NewAnimator(Static, 0, 0, DefaultHeight, 0.01, 42)
	fa, fb := a.Frame(0), b.Frame(0)
	base := TPose(DefaultHeight)
	moved := false
	for i := range fa {
		if fa[i] != fb[i] {
			t.Fatalf("landmark %d differs between equal seeds", i)
		}
		if fa[i] != base[i] {
			moved = true
		}
	}
	if !moved {
		t.Error("expected jitter to perturb landmarks")
	}
}

func TestParseMotion(t *testing.T) {
	for _, name := range Motions() {
		m, err := ParseMotion(name)
		if err != nil || m.String() != name {
			t.Errorf("%s: got %s (%v)", name, m, err)
		}
	}
	if m, err := ParseMotion(""); err != nil || m != Static {
		t.Errorf("empty motion should be static, got %s (%v)", m, err)
	}
	if _, err := ParseMotion("moonwalk"); err == nil {
		t.Error("expected error for unknown motion")
	}
}

func TestFrameIntoReusesBuffer(t *testing.T) {
	a := NewAnimator(Sway, 0.1, 1, DefaultHeight, 0, 1)
	buf := make([]Vec3, 0, cloth.NumLandmarks)
	out := a.FrameInto(0.1, buf)
	if len(out) != cloth.NumLandmarks || &out[0] != &buf[:1][0] {
		t.Error("expected FrameInto to fill the caller buffer")
	}
}
