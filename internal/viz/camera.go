package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const maxPitch = 1.4

// Camera orbits a target point at a fixed distance.
type Camera struct {
	Target     mgl64.Vec3
	Distance   float64
	Yaw, Pitch float64 // radians; yaw 0 looks down -z
	FOV        float64 // vertical, radians
	Near, Far  float64
}

// NewCamera frames a standing figure of default height.
func NewCamera() *Camera {
	return &Camera{
		Target:   mgl64.Vec3{0, 1.0, 0},
		Distance: 3.2,
		Pitch:    0.15,
		FOV:      mgl64.DegToRad(40),
		Near:     0.1,
		Far:      50,
	}
}

func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	return c.Target.Add(mgl64.Vec3{
		c.Distance * cp * math.Sin(c.Yaw),
		c.Distance * math.Sin(c.Pitch),
		c.Distance * cp * math.Cos(c.Yaw),
	})
}

// Orbit turns the camera about the target.
func (c *Camera) Orbit(yaw, pitch float64) {
	c.Yaw = math.Mod(c.Yaw+yaw, 2*math.Pi)
	c.Pitch = mgl64.Clamp(c.Pitch+pitch, -maxPitch, maxPitch)
}

func (c *Camera) ZoomIn()  { c.Distance = math.Max(0.5, c.Distance/1.2) }
func (c *Camera) ZoomOut() { c.Distance = math.Min(20, c.Distance*1.2) }

// Matrix is the combined projection and view transform.
func (c *Camera) Matrix(aspect float64) mgl64.Mat4 {
	view := mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
	return mgl64.Perspective(c.FOV, aspect, c.Near, c.Far).Mul4(view)
}

// Projector maps world points to dots on a w x h dot surface.
type Projector struct {
	mvp  mgl64.Mat4
	w, h int
}

func (c *Camera) Projector(w, h int) Projector {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	return Projector{mvp: c.Matrix(aspect), w: w, h: h}
}

// Project returns the dot coordinates and normalised depth of p. ok is
// false when p is behind the camera or outside the clip volume.
func (p Projector) Project(v mgl64.Vec3) (x, y int, depth float64, ok bool) {
	clip := p.mvp.Mul4x1(v.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if math.Abs(ndc[0]) > 1 || math.Abs(ndc[1]) > 1 || ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, 0, false
	}
	x = int((ndc[0] + 1) * 0.5 * float64(p.w-1))
	y = int((1 - ndc[1]) * 0.5 * float64(p.h-1))
	return x, y, ndc[2], true
}
