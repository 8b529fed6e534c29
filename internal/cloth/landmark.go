package cloth

import (
	"fmt"
	"strings"
)

// Landmark indexes the 33-point body skeleton supplied by pose tracking.
type Landmark int

// NoAnchor marks a particle that is not bound to any landmark.
const NoAnchor Landmark = -1

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex

	NumLandmarks = 33
)

var landmarkNames = [NumLandmarks]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

func (l Landmark) String() string {
	if l == NoAnchor {
		return "none"
	}
	if l < 0 || int(l) >= NumLandmarks {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Valid reports whether l names one of the 33 skeleton points.
func (l Landmark) Valid() bool { return l >= 0 && int(l) < NumLandmarks }

// ParseLandmark resolves a snake_case landmark name such as "left_shoulder".
func ParseLandmark(name string) (Landmark, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "none" || name == "" {
		return NoAnchor, nil
	}
	for i, n := range landmarkNames {
		if n == name {
			return Landmark(i), nil
		}
	}
	return NoAnchor, fmt.Errorf("%w: unknown landmark %q", ErrInvalidInput, name)
}

// LandmarkAt returns landmark l of body when the body has a finite entry
// for it.
func LandmarkAt(body []Vec3, l Landmark) (Vec3, bool) {
	if l < 0 || int(l) >= len(body) || !Finite(body[l]) {
		return Vec3{}, false
	}
	return body[l], true
}
