// Package automation runs scripted try-on sessions described in YAML.
package automation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/mesh"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
)

// Action kinds.
const (
	TryOn     = "tryon"
	Remove    = "remove"
	RemoveAll = "remove_all"
	Force     = "force"
	Motion    = "motion"
)

// Script is a frame-timed try-on sequence.
type Script struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Frames      int                `yaml:"frames"`
	FPS         int                `yaml:"fps"`
	MaxGarments int                `yaml:"max_garments"`
	Seed        int64              `yaml:"seed"`
	Body        BodySpec           `yaml:"body"`
	Params      map[string]float64 `yaml:"params"`
	Garments    []GarmentSpec      `yaml:"garments"`
	Actions     []Action           `yaml:"actions"`
	// ContinueOnError records failed actions instead of stopping.
	ContinueOnError bool `yaml:"continue_on_error"`
}

type BodySpec struct {
	Motion    string  `yaml:"motion"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
	Height    float64 `yaml:"height"`
	Jitter    float64 `yaml:"jitter"`
}

// GarmentSpec names a catalogue entry built from a template kind.
type GarmentSpec struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	Fit  *bool  `yaml:"fit"`
}

// Action runs before the frame with the given index is simulated.
type Action struct {
	Frame   int       `yaml:"frame"`
	Action  string    `yaml:"action"`
	Garment string    `yaml:"garment"`
	Force   []float64 `yaml:"force"`
	Motion  string    `yaml:"motion"`
}

// Event is the outcome of one executed action.
type Event struct {
	Frame   int
	Action  string
	Garment string
	Handle  cloth.Handle
	Err     error
}

type Result struct {
	Script string
	Events []Event
	Run    *experiment.Result
}

// Failed returns the events whose action returned an error.
func (r *Result) Failed() []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// LoadScript reads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	s.defaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) defaults() {
	if s.FPS == 0 {
		s.FPS = 60
	}
	if s.MaxGarments == 0 {
		s.MaxGarments = 3
	}
	if s.Body.Height == 0 {
		s.Body.Height = pose.DefaultHeight
	}
	for i := range s.Actions {
		s.Actions[i].Action = strings.ToLower(strings.TrimSpace(s.Actions[i].Action))
		if s.Actions[i].Action == "reset" {
			s.Actions[i].Action = RemoveAll
		}
	}
}

// Validate checks the script without running it.
func (s *Script) Validate() error {
	if s.Frames < 1 {
		return fmt.Errorf("script %s: frames must be at least 1", s.Name)
	}
	if _, err := pose.ParseMotion(s.Body.Motion); err != nil {
		return fmt.Errorf("script %s: %w", s.Name, err)
	}
	ids := make(map[string]bool, len(s.Garments))
	for _, g := range s.Garments {
		if g.ID == "" {
			return fmt.Errorf("script %s: garment without id", s.Name)
		}
		if _, err := mesh.ParseKind(g.Kind); err != nil {
			return fmt.Errorf("script %s: garment %s: %w", s.Name, g.ID, err)
		}
		ids[g.ID] = true
	}
	for i, a := range s.Actions {
		if a.Frame < 0 || a.Frame >= s.Frames {
			return fmt.Errorf("script %s: action %d at frame %d outside [0,%d)", s.Name, i, a.Frame, s.Frames)
		}
		switch a.Action {
		case TryOn, Remove:
			if !ids[a.Garment] {
				return fmt.Errorf("script %s: action %d uses unknown garment %q", s.Name, i, a.Garment)
			}
		case RemoveAll:
		case Force:
			if len(a.Force) != 3 {
				return fmt.Errorf("script %s: action %d force needs 3 components", s.Name, i)
			}
		case Motion:
			if _, err := pose.ParseMotion(a.Motion); err != nil {
				return fmt.Errorf("script %s: action %d: %w", s.Name, i, err)
			}
		default:
			return fmt.Errorf("script %s: action %d has unknown kind %q", s.Name, i, a.Action)
		}
	}
	return nil
}

// ordered returns the actions sorted by frame, keeping file order within
// a frame.
func (s *Script) ordered() []Action {
	out := append([]Action(nil), s.Actions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
	return out
}

// RunScript executes the script on a fresh session configured from
// physics.
func RunScript(ctx context.Context, script *Script, physics cloth.Config, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := experiment.Config{Physics: physics}
	if err := cfg.SetParams(script.Params); err != nil {
		return nil, fmt.Errorf("script %s: %w", script.Name, err)
	}

	settings := session.DefaultSettings()
	settings.TargetFPS = script.FPS
	settings.MaxGarments = script.MaxGarments
	s, err := session.New(cfg.Physics, settings, session.WithLogger(log.Named("session")))
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", script.Name, err)
	}

	motion, _ := pose.ParseMotion(script.Body.Motion)
	b := script.Body
	anim := pose.NewAnimator(motion, b.Amplitude, b.Frequency, b.Height, b.Jitter, script.Seed)

	fits := make(map[string]bool, len(script.Garments))
	for _, g := range script.Garments {
		kind, _ := mesh.ParseKind(g.Kind)
		if err := s.Load(g.ID, mesh.FromKind(kind)); err != nil {
			return nil, err
		}
		fits[g.ID] = g.Fit == nil || *g.Fit
	}

	s.PublishPose(anim.Frame(0))
	s.Start()
	defer s.Stop()

	rec := experiment.NewRecorder(s.Engine(), settings.FrameBudget)
	s.OnFrame(rec.Observe)

	res := &Result{Script: script.Name}
	actions := script.ordered()
	next := 0
	dt := 1 / float64(script.FPS)
	var buf []cloth.Vec3
	start := time.Now()
	particles := 0

	log.Info("script started", zap.String("script", script.Name), zap.Int("frames", script.Frames), zap.Int("actions", len(actions)))
	for frame := 0; frame < script.Frames; frame++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		buf = anim.FrameInto(float64(frame)*dt, buf)
		s.PublishPose(buf)

		for next < len(actions) && actions[next].Frame == frame {
			a := actions[next]
			next++
			ev := apply(s, anim, a, fits)
			res.Events = append(res.Events, ev)
			if ev.Err != nil {
				log.Warn("action failed", zap.Int("frame", frame), zap.String("action", a.Action), zap.Error(ev.Err))
				if !script.ContinueOnError {
					return res, fmt.Errorf("frame %d %s: %w", frame, a.Action, ev.Err)
				}
			}
		}
		if n := s.Engine().ParticleCount(); n > particles {
			particles = n
		}

		if _, err := s.Frame(); err != nil {
			return res, err
		}
	}

	res.Run = &experiment.Result{
		Scenario:    "script:" + script.Name,
		Seed:        script.Seed,
		Dt:          dt,
		Duration:    float64(script.Frames) * dt,
		Frames:      rec.Frames,
		Metrics:     rec.Metrics(),
		Garments:    len(s.Worn()),
		Particles:   particles,
		Constraints: s.Engine().ConstraintCount(),
		Recovered:   rec.Recovered,
		Session:     s.Stats(),
		Wall:        time.Since(start),
	}
	log.Info("script finished", zap.String("script", script.Name), zap.Int("events", len(res.Events)), zap.Int("failed", len(res.Failed())))
	return res, nil
}

func apply(s *session.Session, anim *pose.Animator, a Action, fits map[string]bool) Event {
	ev := Event{Frame: a.Frame, Action: a.Action, Garment: a.Garment}
	switch a.Action {
	case TryOn:
		ev.Handle, ev.Err = s.TryOnFit(a.Garment, fits[a.Garment])
	case Remove:
		ev.Err = s.RemoveID(a.Garment)
	case RemoveAll:
		s.RemoveAll()
	case Force:
		ev.Err = s.Engine().ApplyExternalForce(cloth.Vec3{a.Force[0], a.Force[1], a.Force[2]})
	case Motion:
		anim.Motion, ev.Err = pose.ParseMotion(a.Motion)
	}
	return ev
}
