package session

import "time"

// Stats accumulates frame timings over a session.
type Stats struct {
	Frames       int
	OverBudget   int
	TotalTime    time.Duration // time spent inside Frame
	MaxFrameTime time.Duration
	MinFrameTime time.Duration
	FPS          float64 // from wall-clock spacing between frames, smoothed
}

// AvgFrameTime is the mean time spent inside Frame.
func (s Stats) AvgFrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Frames)
}

const fpsSmoothing = 0.1

func (s *Stats) observe(r Report, interval time.Duration, haveInterval bool) {
	s.Frames++
	s.TotalTime += r.FrameTime
	if r.FrameTime > s.MaxFrameTime {
		s.MaxFrameTime = r.FrameTime
	}
	if s.Frames == 1 || r.FrameTime < s.MinFrameTime {
		s.MinFrameTime = r.FrameTime
	}
	if r.OverBudget {
		s.OverBudget++
	}
	if !haveInterval || interval <= 0 {
		return
	}
	fps := float64(time.Second) / float64(interval)
	if s.FPS == 0 {
		s.FPS = fps
		return
	}
	s.FPS += fpsSmoothing * (fps - s.FPS)
}
