// Package session drives a cloth engine frame by frame: it owns the garment
// catalogue, the try-on list and the pose handoff from the tracker.
//
// A Session is used from a single goroutine, except PublishPose which may be
// called from the tracking goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/mesh"
)

var (
	ErrNotStarted      = errors.New("session: not started")
	ErrUnknownGarment  = errors.New("session: unknown garment")
	ErrGarmentNotWorn  = errors.New("session: garment not worn")
	ErrInvalidSettings = errors.New("session: invalid settings")
)

// Settings configures the frame loop.
type Settings struct {
	TargetFPS   int
	MaxGarments int
	FrameBudget time.Duration
	FitToBody   bool // scale and place garments on the body before adding
}

func DefaultSettings() Settings {
	return Settings{
		TargetFPS:   60,
		MaxGarments: 3,
		FrameBudget: 16 * time.Millisecond,
		FitToBody:   true,
	}
}

func (s Settings) Validate() error {
	if s.TargetFPS < 1 {
		return fmt.Errorf("%w: target fps must be at least 1, got %d", ErrInvalidSettings, s.TargetFPS)
	}
	if s.MaxGarments < 1 {
		return fmt.Errorf("%w: max garments must be at least 1, got %d", ErrInvalidSettings, s.MaxGarments)
	}
	if s.FrameBudget < 0 {
		return fmt.Errorf("%w: frame budget must be non-negative", ErrInvalidSettings)
	}
	return nil
}

// PoseSource produces body landmarks for a point in time.
type PoseSource interface {
	FrameInto(t float64, dst []cloth.Vec3) []cloth.Vec3
}

// Worn is a garment currently simulated on the body.
type Worn struct {
	Handle    cloth.Handle
	ID        string
	Triangles [][3]int
	Since     int // frame index at which it was put on
}

// GarmentView is the renderable state of one worn garment.
type GarmentView struct {
	Handle    cloth.Handle
	ID        string
	Positions []cloth.Vec3
	Triangles [][3]int
}

// View is everything a renderer needs for one frame. Slices are owned by
// the session and valid until the next frame.
type View struct {
	Frame    int
	Time     float64
	Body     []cloth.Vec3
	Garments []GarmentView
}

type Renderer interface {
	Render(v View) error
}

// Report summarises one processed frame.
type Report struct {
	Frame      int
	Time       float64
	Stats      cloth.StepStats
	FrameTime  time.Duration
	OverBudget bool
	Garments   int
	PoseSeq    uint64
}

type Observer func(Report)

type Session struct {
	settings Settings
	eng      *cloth.Engine
	body     *cloth.BodyBuffer
	renderer Renderer
	log      *zap.Logger

	catalog   map[string]cloth.Mesh
	worn      []Worn
	observers []Observer
	active    bool

	frame   int
	poseSeq uint64
	pose    []cloth.Vec3
	views   []GarmentView
	stats   Stats
	last    time.Time
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// New creates a session around a fresh engine initialized with cfg.
func New(cfg cloth.Config, settings Settings, opts ...Option) (*Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		settings: settings,
		body:     cloth.NewBodyBuffer(),
		catalog:  make(map[string]cloth.Mesh),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eng = cloth.New(cloth.WithLogger(s.log.Named("cloth")))
	if err := s.eng.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	return s, nil
}

func (s *Session) Engine() *cloth.Engine { return s.eng }

func (s *Session) Settings() Settings { return s.settings }

// OnFrame registers an observer called after every frame.
func (s *Session) OnFrame(o Observer) {
	s.observers = append(s.observers, o)
}

// Start begins accepting frames and try-ons.
func (s *Session) Start() {
	if s.active {
		return
	}
	s.active = true
	s.stats = Stats{}
	s.frame = 0
	s.last = time.Time{}
	s.log.Info("session started",
		zap.Int("target_fps", s.settings.TargetFPS),
		zap.Int("max_garments", s.settings.MaxGarments),
	)
}

// Stop takes off every garment and stops the session.
func (s *Session) Stop() {
	if !s.active {
		return
	}
	s.active = false
	s.worn = s.worn[:0]
	s.eng.Reset()
	s.log.Info("session stopped", zap.Int("frames", s.stats.Frames))
}

func (s *Session) Active() bool { return s.active }

// PublishPose hands new landmarks to the next frame. Safe to call from
// another goroutine.
func (s *Session) PublishPose(landmarks []cloth.Vec3) {
	s.body.Publish(landmarks)
}

// Load registers a garment template under id, replacing any previous one.
func (s *Session) Load(id string, m cloth.Mesh) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownGarment)
	}
	if err := cloth.ValidateMesh(m); err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	s.catalog[id] = mesh.Clone(m)
	return nil
}

// Catalog lists loaded garment ids in order.
func (s *Session) Catalog() []string {
	ids := make([]string, 0, len(s.catalog))
	for id := range s.catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TryOn puts a loaded garment on the body. When the body already wears
// MaxGarments, the garment worn longest is taken off first.
func (s *Session) TryOn(id string) (cloth.Handle, error) {
	return s.TryOnFit(id, s.settings.FitToBody)
}

// TryOnFit is TryOn with fitting to the body chosen per garment.
func (s *Session) TryOnFit(id string, fit bool) (cloth.Handle, error) {
	if !s.active {
		return 0, ErrNotStarted
	}
	m, ok := s.catalog[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGarment, id)
	}

	s.syncPose()
	if fit {
		if fitted, err := mesh.Fit(m, s.pose); err == nil {
			m = fitted
		} else {
			s.log.Debug("garment not fitted", zap.String("id", id), zap.Error(err))
		}
	}

	h, err := s.eng.AddGarment(m)
	if err != nil {
		return 0, fmt.Errorf("try on %s: %w", id, err)
	}
	// The new garment is in place before the oldest comes off, so a
	// failed try-on leaves the wardrobe unchanged.
	if len(s.worn) >= s.settings.MaxGarments {
		oldest := s.worn[0]
		if err := s.eng.RemoveGarment(oldest.Handle); err != nil {
			return 0, fmt.Errorf("evict %s: %w", oldest.ID, err)
		}
		s.worn = append(s.worn[:0], s.worn[1:]...)
		s.log.Info("garment evicted", zap.String("id", oldest.ID), zap.Uint64("handle", uint64(oldest.Handle)))
	}
	s.worn = append(s.worn, Worn{Handle: h, ID: id, Triangles: m.Triangles, Since: s.frame})
	s.log.Info("garment on",
		zap.String("id", id),
		zap.Uint64("handle", uint64(h)),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("worn", len(s.worn)),
	)
	return h, nil
}

// Remove takes off one worn garment.
func (s *Session) Remove(h cloth.Handle) error {
	for i, w := range s.worn {
		if w.Handle != h {
			continue
		}
		if err := s.eng.RemoveGarment(h); err != nil {
			return err
		}
		s.worn = append(s.worn[:i], s.worn[i+1:]...)
		s.log.Info("garment off", zap.String("id", w.ID), zap.Uint64("handle", uint64(h)))
		return nil
	}
	return fmt.Errorf("%w: handle %d", ErrGarmentNotWorn, h)
}

// RemoveID takes off every worn instance of a catalogue garment.
func (s *Session) RemoveID(id string) error {
	found := false
	for _, w := range append([]Worn(nil), s.worn...) {
		if w.ID != id {
			continue
		}
		found = true
		if err := s.Remove(w.Handle); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrGarmentNotWorn, id)
	}
	return nil
}

// RemoveAll takes off every garment.
func (s *Session) RemoveAll() {
	for _, w := range s.worn {
		if err := s.eng.RemoveGarment(w.Handle); err != nil {
			s.log.Warn("remove failed", zap.Uint64("handle", uint64(w.Handle)), zap.Error(err))
		}
	}
	s.worn = s.worn[:0]
}

// Worn returns the garments on the body, oldest first.
func (s *Session) Worn() []Worn {
	return append([]Worn(nil), s.worn...)
}

// Positions returns the current positions of a worn garment.
func (s *Session) Positions(h cloth.Handle) ([]cloth.Vec3, error) {
	return s.eng.Positions(h)
}

func (s *Session) syncPose() {
	var seq uint64
	s.pose, seq = s.body.Snapshot(s.pose)
	if seq != s.poseSeq {
		s.poseSeq = seq
		s.eng.UpdateCollisionBody(s.pose)
	}
}

// Frame advances the simulation by one frame of 1/TargetFPS seconds using
// the latest published pose, then renders and notifies observers.
func (s *Session) Frame() (Report, error) {
	if !s.active {
		return Report{}, ErrNotStarted
	}
	start := time.Now()
	dt := 1 / float64(s.settings.TargetFPS)

	s.syncPose()
	stats, err := s.eng.Step(dt)
	if err != nil {
		return Report{}, fmt.Errorf("frame %d: %w", s.frame, err)
	}

	if cap(s.views) < len(s.worn) {
		s.views = append(s.views[:cap(s.views)], make([]GarmentView, len(s.worn)-cap(s.views))...)
	}
	s.views = s.views[:len(s.worn)]
	for i, w := range s.worn {
		v := &s.views[i]
		v.Handle, v.ID, v.Triangles = w.Handle, w.ID, w.Triangles
		v.Positions, err = s.eng.PositionsInto(w.Handle, v.Positions)
		if err != nil {
			return Report{}, fmt.Errorf("frame %d: %w", s.frame, err)
		}
	}

	t := float64(s.frame+1) * dt
	if s.renderer != nil {
		view := View{Frame: s.frame, Time: t, Body: s.pose, Garments: s.views}
		if err := s.renderer.Render(view); err != nil {
			s.log.Warn("render failed", zap.Int("frame", s.frame), zap.Error(err))
		}
	}

	end := time.Now()
	elapsed := end.Sub(start)
	rep := Report{
		Frame:     s.frame,
		Time:      t,
		Stats:     stats,
		FrameTime: elapsed,
		Garments:  len(s.worn),
		PoseSeq:   s.poseSeq,
	}
	if s.settings.FrameBudget > 0 && elapsed > s.settings.FrameBudget {
		rep.OverBudget = true
		s.log.Warn("frame over budget",
			zap.Int("frame", s.frame),
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", s.settings.FrameBudget),
		)
	}
	s.stats.observe(rep, end.Sub(s.last), !s.last.IsZero())
	s.last = end
	s.frame++

	for _, o := range s.observers {
		o(rep)
	}
	return rep, nil
}

// Run processes frames until frames have run or ctx is done. With a
// non-nil source, a pose for each frame's time is published first. With
// realtime set, frames are paced at TargetFPS.
func (s *Session) Run(ctx context.Context, frames int, src PoseSource, realtime bool) error {
	if !s.active {
		return ErrNotStarted
	}
	var tick <-chan time.Time
	if realtime {
		ticker := time.NewTicker(time.Second / time.Duration(s.settings.TargetFPS))
		defer ticker.Stop()
		tick = ticker.C
	}
	dt := 1 / float64(s.settings.TargetFPS)
	var buf []cloth.Vec3
	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}
		if src != nil {
			buf = src.FrameInto(float64(s.frame)*dt, buf)
			s.PublishPose(buf)
		}
		if _, err := s.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the accumulated frame statistics.
func (s *Session) Stats() Stats { return s.stats }
