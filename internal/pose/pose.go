// Package pose produces synthetic 33-point body landmarks for driving the
// cloth engine without a camera.
package pose

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/drape/internal/cloth"
)

type Vec3 = cloth.Vec3

// DefaultHeight is the standing height the reference skeleton is built for.
const DefaultHeight = 1.7

// reference skeleton in metres for a DefaultHeight figure standing in a
// T-pose, feet on y=0, facing +z. +x is the figure's left.
var reference = [cloth.NumLandmarks]Vec3{
	cloth.Nose:           {0, 1.62, 0.08},
	cloth.LeftEyeInner:   {0.015, 1.66, 0.07},
	cloth.LeftEye:        {0.03, 1.66, 0.07},
	cloth.LeftEyeOuter:   {0.045, 1.66, 0.06},
	cloth.RightEyeInner:  {-0.015, 1.66, 0.07},
	cloth.RightEye:       {-0.03, 1.66, 0.07},
	cloth.RightEyeOuter:  {-0.045, 1.66, 0.06},
	cloth.LeftEar:        {0.075, 1.64, 0},
	cloth.RightEar:       {-0.075, 1.64, 0},
	cloth.MouthLeft:      {0.025, 1.57, 0.07},
	cloth.MouthRight:     {-0.025, 1.57, 0.07},
	cloth.LeftShoulder:   {0.19, 1.42, 0},
	cloth.RightShoulder:  {-0.19, 1.42, 0},
	cloth.LeftElbow:      {0.45, 1.42, 0},
	cloth.RightElbow:     {-0.45, 1.42, 0},
	cloth.LeftWrist:      {0.7, 1.42, 0},
	cloth.RightWrist:     {-0.7, 1.42, 0},
	cloth.LeftPinky:      {0.78, 1.41, -0.01},
	cloth.RightPinky:     {-0.78, 1.41, -0.01},
	cloth.LeftIndex:      {0.79, 1.43, 0.01},
	cloth.RightIndex:     {-0.79, 1.43, 0.01},
	cloth.LeftThumb:      {0.75, 1.44, 0.03},
	cloth.RightThumb:     {-0.75, 1.44, 0.03},
	cloth.LeftHip:        {0.11, 0.95, 0},
	cloth.RightHip:       {-0.11, 0.95, 0},
	cloth.LeftKnee:       {0.11, 0.52, 0.01},
	cloth.RightKnee:      {-0.11, 0.52, 0.01},
	cloth.LeftAnkle:      {0.11, 0.09, 0},
	cloth.RightAnkle:     {-0.11, 0.09, 0},
	cloth.LeftHeel:       {0.11, 0.05, -0.05},
	cloth.RightHeel:      {-0.11, 0.05, -0.05},
	cloth.LeftFootIndex:  {0.11, 0.02, 0.12},
	cloth.RightFootIndex: {-0.11, 0.02, 0.12},
}

// TPose returns all 33 landmarks for a figure of the given height.
func TPose(height float64) []Vec3 {
	if height <= 0 {
		height = DefaultHeight
	}
	s := height / DefaultHeight
	out := make([]Vec3, cloth.NumLandmarks)
	for i, p := range reference {
		out[i] = p.Mul(s)
	}
	return out
}

// Motion selects how an Animator moves the skeleton over time.
type Motion int

const (
	Static Motion = iota
	Sway          // side to side
	Bob           // up and down
	Turn          // twist about the vertical axis
	Walk          // legs and arms swing in place
)

var motionNames = []string{"static", "sway", "bob", "turn", "walk"}

func (m Motion) String() string {
	if m < 0 || int(m) >= len(motionNames) {
		return fmt.Sprintf("motion(%d)", int(m))
	}
	return motionNames[m]
}

func ParseMotion(name string) (Motion, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Static, nil
	}
	for i, n := range motionNames {
		if n == name {
			return Motion(i), nil
		}
	}
	return Static, fmt.Errorf("pose: unknown motion %q", name)
}

// Motions lists every motion name.
func Motions() []string {
	return append([]string(nil), motionNames...)
}

// Animator moves a T-pose skeleton over time.
type Animator struct {
	Motion    Motion
	Amplitude float64 // metres, or radians for Turn
	Frequency float64 // Hz
	Height    float64
	Jitter    float64 // stddev of per-landmark tracking noise in metres

	base []Vec3
	rng  *rand.Rand
}

// NewAnimator builds an animator. Seed drives the jitter noise.
func NewAnimator(m Motion, amplitude, frequency, height, jitter float64, seed int64) *Animator {
	if height <= 0 {
		height = DefaultHeight
	}
	return &Animator{
		Motion:    m,
		Amplitude: amplitude,
		Frequency: frequency,
		Height:    height,
		Jitter:    jitter,
		base:      TPose(height),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Frame returns the landmarks at time t seconds.
func (a *Animator) Frame(t float64) []Vec3 {
	return a.FrameInto(t, nil)
}

// FrameInto writes the landmarks at time t into dst.
func (a *Animator) FrameInto(t float64, dst []Vec3) []Vec3 {
	dst = append(dst[:0], a.base...)
	phase := 2 * math.Pi * a.Frequency * t
	wave := a.Amplitude * math.Sin(phase)

	switch a.Motion {
	case Sway:
		offset := Vec3{wave, 0, 0}
		for i := range dst {
			dst[i] = dst[i].Add(offset)
		}
	case Bob:
		offset := Vec3{0, math.Abs(wave), 0}
		for i := range dst {
			dst[i] = dst[i].Add(offset)
		}
	case Turn:
		hip := dst[cloth.LeftHip].Add(dst[cloth.RightHip]).Mul(0.5)
		rot := mgl64.Rotate3DY(wave)
		for i := range dst {
			dst[i] = rot.Mul3x1(dst[i].Sub(hip)).Add(hip)
		}
	case Walk:
		a.walk(dst, wave)
	}

	if a.Jitter > 0 && a.rng != nil {
		for i := range dst {
			dst[i] = dst[i].Add(Vec3{
				a.rng.NormFloat64() * a.Jitter,
				a.rng.NormFloat64() * a.Jitter,
				a.rng.NormFloat64() * a.Jitter,
			})
		}
	}
	return dst
}

// walk swings each leg forward about its hip and each arm about its
// shoulder, opposite sides in antiphase.
func (a *Animator) walk(dst []Vec3, wave float64) {
	swing := func(pivot cloth.Landmark, joints []cloth.Landmark, rot mgl64.Mat3) {
		p := dst[pivot]
		for _, j := range joints {
			dst[j] = rot.Mul3x1(dst[j].Sub(p)).Add(p)
		}
	}
	leftLeg := []cloth.Landmark{cloth.LeftKnee, cloth.LeftAnkle, cloth.LeftHeel, cloth.LeftFootIndex}
	rightLeg := []cloth.Landmark{cloth.RightKnee, cloth.RightAnkle, cloth.RightHeel, cloth.RightFootIndex}
	leftArm := []cloth.Landmark{cloth.LeftElbow, cloth.LeftWrist, cloth.LeftPinky, cloth.LeftIndex, cloth.LeftThumb}
	rightArm := []cloth.Landmark{cloth.RightElbow, cloth.RightWrist, cloth.RightPinky, cloth.RightIndex, cloth.RightThumb}

	// Positive X rotation moves -y points towards -z.
	swing(cloth.LeftHip, leftLeg, mgl64.Rotate3DX(-wave))
	swing(cloth.RightHip, rightLeg, mgl64.Rotate3DX(wave))
	swing(cloth.LeftShoulder, leftArm, mgl64.Rotate3DY(wave*0.5))
	swing(cloth.RightShoulder, rightArm, mgl64.Rotate3DY(wave*0.5))
}
