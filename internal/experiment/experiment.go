package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/metrics"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
)

// Body describes the synthetic pose driving a run.
type Body struct {
	Motion    pose.Motion
	Amplitude float64
	Frequency float64
	Height    float64
	Jitter    float64
}

type Config struct {
	Scenario string
	Duration float64 // seconds of simulated time
	Seed     int64
	Physics  cloth.Config
	Session  session.Settings
	Body     Body
}

func defaultSession() session.Settings {
	s := session.DefaultSettings()
	s.MaxGarments = 4
	return s
}

// Frames is the number of frames the run takes at the session frame rate.
func (c Config) Frames() int {
	return int(math.Round(c.Duration * float64(c.Session.TargetFPS)))
}

// Frame is the per-frame record of a run.
type Frame struct {
	Time        float64
	StepMS      float64
	Strain      float64
	Penetration float64
	Kinetic     float64
	Contacts    int
	CentroidY   float64
}

type Result struct {
	Scenario    string
	Seed        int64
	Dt          float64
	Duration    float64
	Frames      []Frame
	Metrics     map[string]float64
	Garments    int
	Particles   int
	Constraints int
	Recovered   int
	Session     session.Stats
	Wall        time.Duration
}

// Observer sees each frame record as the run produces it.
type Observer func(Frame)

type Experiment struct {
	cfg       Config
	reg       *Registry
	log       *zap.Logger
	observers []Observer
	renderer  session.Renderer
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.log = l
		}
	}
}

func WithRenderer(r session.Renderer) Option {
	return func(e *Experiment) { e.renderer = r }
}

func New(cfg Config, reg *Registry, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg, reg: reg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) validate() error {
	if e.cfg.Duration <= 0 || math.IsNaN(e.cfg.Duration) {
		return fmt.Errorf("duration must be positive, got %f", e.cfg.Duration)
	}
	return e.cfg.Session.Validate()
}

// Prepare builds a started session wearing the scenario's garments on the
// first pose of the animator. The caller owns the session and must Stop it.
func (e *Experiment) Prepare() (*session.Session, *pose.Animator, error) {
	if err := e.validate(); err != nil {
		return nil, nil, err
	}
	sc, err := e.reg.Get(e.cfg.Scenario)
	if err != nil {
		return nil, nil, err
	}
	garments, err := sc.Garments()
	if err != nil {
		return nil, nil, fmt.Errorf("build %s garments: %w", sc.Name, err)
	}

	settings := e.cfg.Session
	settings.FitToBody = sc.Fit
	if settings.MaxGarments < len(garments) {
		settings.MaxGarments = len(garments)
	}
	opts := []session.Option{session.WithLogger(e.log.Named("session"))}
	if e.renderer != nil {
		opts = append(opts, session.WithRenderer(e.renderer))
	}
	s, err := session.New(e.cfg.Physics, settings, opts...)
	if err != nil {
		return nil, nil, err
	}

	b := e.cfg.Body
	anim := pose.NewAnimator(b.Motion, b.Amplitude, b.Frequency, b.Height, b.Jitter, e.cfg.Seed)
	s.PublishPose(anim.Frame(0))

	s.Start()
	for _, g := range garments {
		if err := s.Load(g.ID, g.Mesh); err != nil {
			s.Stop()
			return nil, nil, err
		}
		if _, err := s.TryOn(g.ID); err != nil {
			s.Stop()
			return nil, nil, err
		}
	}
	return s, anim, nil
}

// Run simulates the scenario for the configured duration. When ctx is
// cancelled the partial result is returned with ctx's error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	s, anim, err := e.Prepare()
	if err != nil {
		return nil, err
	}
	defer s.Stop()
	settings := s.Settings()

	eng := s.Engine()
	dt := 1 / float64(settings.TargetFPS)
	res := &Result{
		Scenario:    e.cfg.Scenario,
		Seed:        e.cfg.Seed,
		Dt:          dt,
		Duration:    e.cfg.Duration,
		Garments:    len(s.Worn()),
		Particles:   eng.ParticleCount(),
		Constraints: eng.ConstraintCount(),
	}

	rec := NewRecorder(eng, settings.FrameBudget, e.observers...)
	s.OnFrame(rec.Observe)

	e.log.Info("experiment started",
		zap.String("scenario", e.cfg.Scenario),
		zap.Int("frames", e.cfg.Frames()),
		zap.Int("particles", res.Particles),
		zap.Int("constraints", res.Constraints),
		zap.Int64("seed", e.cfg.Seed),
	)
	start := time.Now()
	runErr := s.Run(ctx, e.cfg.Frames(), anim, false)
	res.Wall = time.Since(start)
	res.Session = s.Stats()
	res.Frames = rec.Frames
	res.Recovered = rec.Recovered
	res.Metrics = rec.Metrics()

	if runErr != nil {
		return res, runErr
	}
	if res.Recovered > 0 {
		e.log.Warn("non-finite particles recovered", zap.String("scenario", e.cfg.Scenario), zap.Int("count", res.Recovered))
	}
	e.log.Info("experiment finished",
		zap.String("scenario", e.cfg.Scenario),
		zap.Duration("wall", res.Wall),
		zap.Float64("max_strain", res.Metrics["max_strain"]),
	)
	return res, nil
}

// Recorder turns session frame reports into frame records and metric
// values. Register Observe with Session.OnFrame.
type Recorder struct {
	Frames    []Frame
	Recovered int

	eng       *cloth.Engine
	set       metrics.Set
	buf       []cloth.Vec3
	observers []Observer
}

func NewRecorder(eng *cloth.Engine, budget time.Duration, observers ...Observer) *Recorder {
	return &Recorder{
		eng:       eng,
		set:       append(metrics.Default(budget), metrics.NewSettle(0.05)),
		observers: observers,
	}
}

func (r *Recorder) Observe(rep session.Report) {
	f := Frame{
		Time:        rep.Time,
		StepMS:      float64(rep.Stats.Elapsed) / float64(time.Millisecond),
		Strain:      rep.Stats.MaxStrain,
		Penetration: rep.Stats.MaxPenetration,
		Kinetic:     rep.Stats.KineticEnergy,
		Contacts:    rep.Stats.Contacts,
	}
	f.CentroidY, r.buf = CentroidY(r.eng, r.buf)
	r.Frames = append(r.Frames, f)
	r.Recovered += rep.Stats.Recovered
	r.set.Observe(metrics.Sample{Time: rep.Time, Stats: rep.Stats, FrameTime: rep.FrameTime})
	for _, o := range r.observers {
		o(f)
	}
}

// Metrics returns the current value of every recorded metric.
func (r *Recorder) Metrics() map[string]float64 { return r.set.Values() }

// CentroidY is the mean height of every simulated particle. buf is reused
// for position reads and returned.
func CentroidY(eng *cloth.Engine, buf []cloth.Vec3) (float64, []cloth.Vec3) {
	sum, n := 0.0, 0
	for _, h := range eng.Garments() {
		var err error
		buf, err = eng.PositionsInto(h, buf)
		if err != nil {
			continue
		}
		for _, p := range buf {
			sum += p.Y()
		}
		n += len(buf)
	}
	if n == 0 {
		return 0, buf
	}
	return sum / float64(n), buf
}

// Series extracts one column of a result's frame records.
func (r *Result) Series(name string) ([]float64, error) {
	pick, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("unknown series: %s", name)
	}
	out := make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		out[i] = pick(f)
	}
	return out, nil
}

// Columns are the frame record fields in storage order.
var Columns = []string{"time", "step_ms", "strain", "penetration", "kinetic", "contacts", "centroid_y"}

var columns = map[string]func(Frame) float64{
	"time":        func(f Frame) float64 { return f.Time },
	"step_ms":     func(f Frame) float64 { return f.StepMS },
	"strain":      func(f Frame) float64 { return f.Strain },
	"penetration": func(f Frame) float64 { return f.Penetration },
	"kinetic":     func(f Frame) float64 { return f.Kinetic },
	"contacts":    func(f Frame) float64 { return float64(f.Contacts) },
	"centroid_y":  func(f Frame) float64 { return f.CentroidY },
}

// Values returns the frame record as a row in Columns order.
func (f Frame) Values() []float64 {
	out := make([]float64, len(Columns))
	for i, c := range Columns {
		out[i] = columns[c](f)
	}
	return out
}

// FrameFromValues is the inverse of Frame.Values.
func FrameFromValues(v []float64) (Frame, error) {
	if len(v) != len(Columns) {
		return Frame{}, fmt.Errorf("expected %d values, got %d", len(Columns), len(v))
	}
	return Frame{
		Time:        v[0],
		StepMS:      v[1],
		Strain:      v[2],
		Penetration: v[3],
		Kinetic:     v[4],
		Contacts:    int(v[5]),
		CentroidY:   v[6],
	}, nil
}
