package viz

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"go.uber.org/zap"

	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/mesh"
	"github.com/san-kum/drape/internal/pose"
	"github.com/san-kum/drape/internal/session"
)

const (
	canvasCols      = 60
	canvasRows      = 24
	panelWidth      = 48
	historyCapacity = 240
	gustFrames      = 20
	gustForce       = 4.0
	orbitStep       = 0.12
)

// extraKinds are offered in the catalog next to the scenario's garments.
var extraKinds = []mesh.Kind{mesh.TShirtKind, mesh.SkirtKind, mesh.PantsKind}

type TickMsg time.Time

// Model is the interactive try-on viewer.
type Model struct {
	cfg  experiment.Config
	reg  *experiment.Registry
	log  *zap.Logger
	exp  *experiment.Experiment
	sess *session.Session
	anim *pose.Animator

	scene  *Scene
	theme  Theme
	styles styles
	pose   []cloth.Vec3

	frame   int
	running bool
	help    bool
	gust    int
	next    int
	last    session.Report
	strain  []float64
	message string
	err     error

	recorder  *GIFRecorder
	recording bool
	gifPath   string
}

// NewModel prepares the scenario in cfg and returns a viewer over it.
func NewModel(cfg experiment.Config, reg *experiment.Registry, log *zap.Logger) (*Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	scene := NewScene(canvasCols, canvasRows)
	scene.ShowFloor = cfg.Physics.Floor
	scene.FloorHeight = cfg.Physics.FloorHeight
	theme := Themes[0]
	m := &Model{
		cfg:     cfg,
		reg:     reg,
		log:     log,
		scene:   scene,
		theme:   theme,
		styles:  newStyles(theme),
		running: true,
		strain:  make([]float64, 0, historyCapacity),
		gifPath: "drape.gif",
	}
	m.exp = experiment.New(cfg, reg, experiment.WithLogger(log), experiment.WithRenderer(scene))
	if err := m.prepare(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) prepare() error {
	s, anim, err := m.exp.Prepare()
	if err != nil {
		return err
	}
	catalog := make(map[string]bool)
	for _, id := range s.Catalog() {
		catalog[id] = true
	}
	for _, k := range extraKinds {
		if catalog[k.String()] {
			continue
		}
		if err := s.Load(k.String(), mesh.FromKind(k)); err != nil {
			s.Stop()
			return err
		}
	}
	m.sess, m.anim = s, anim
	m.frame, m.gust, m.next = 0, 0, 0
	m.strain = m.strain[:0]
	m.last = session.Report{}
	m.err = nil
	return nil
}

// Session exposes the running session.
func (m *Model) Session() *session.Session { return m.sess }

// Close stops the session.
func (m *Model) Close() {
	if m.sess != nil && m.sess.Active() {
		m.sess.Stop()
	}
}

func (m *Model) dt() float64 { return 1 / float64(m.sess.Settings().TargetFPS) }

func (m *Model) tick() tea.Cmd {
	interval := time.Duration(m.dt() * float64(time.Second))
	return tea.Tick(interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

// Update handles keys, resizes and frame ticks.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.key(msg.String())
	case tea.WindowSizeMsg:
		cols := max(20, msg.Width-panelWidth-4)
		rows := max(8, msg.Height-4)
		m.scene.Canvas.Resize(cols, rows)
	case TickMsg:
		if m.running {
			m.Advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) key(k string) tea.Cmd {
	switch k {
	case "q", "ctrl+c", "esc":
		if m.recording {
			m.stopRecording()
		}
		return tea.Quit
	case " ":
		m.running = !m.running
	case "n":
		m.tryNext()
	case "d":
		m.removeLast()
	case "c":
		m.sess.RemoveAll()
		m.message = "cleared"
	case "m":
		m.anim.Motion = (m.anim.Motion + 1) % pose.Motion(len(pose.Motions()))
		m.message = "motion: " + m.anim.Motion.String()
	case "f":
		m.gust = gustFrames
		m.message = "gust"
	case "left", "h":
		m.scene.Camera.Orbit(-orbitStep, 0)
	case "right", "l":
		m.scene.Camera.Orbit(orbitStep, 0)
	case "up", "k":
		m.scene.Camera.Orbit(0, orbitStep)
	case "down", "j":
		m.scene.Camera.Orbit(0, -orbitStep)
	case "+", "=":
		m.scene.Camera.ZoomIn()
	case "-", "_":
		m.scene.Camera.ZoomOut()
	case "b":
		m.scene.ShowBody = !m.scene.ShowBody
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = newStyles(m.theme)
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recorder = NewGIFRecorder(int(100*m.dt()+0.5), color.White)
			m.recording = true
			m.message = "recording"
		}
	case "r":
		m.sess.Stop()
		if err := m.prepare(); err != nil {
			m.err = err
			m.running = false
		}
		m.message = "restarted"
	case "?":
		m.help = !m.help
	}
	return nil
}

// Advance runs one session frame on the animated pose.
func (m *Model) Advance() {
	if m.err != nil {
		return
	}
	m.pose = m.anim.FrameInto(float64(m.frame)*m.dt(), m.pose)
	m.sess.PublishPose(m.pose)
	if m.gust > 0 {
		m.gust--
		if err := m.sess.Engine().ApplyExternalForce(cloth.Vec3{gustForce, 0, -gustForce / 2}); err != nil {
			m.log.Warn("gust rejected", zap.Error(err))
		}
	}
	rep, err := m.sess.Frame()
	if err != nil {
		m.err = err
		m.running = false
		m.log.Error("frame failed", zap.Error(err))
		return
	}
	m.last = rep
	m.frame++
	if len(m.strain) == historyCapacity {
		copy(m.strain, m.strain[1:])
		m.strain = m.strain[:historyCapacity-1]
	}
	m.strain = append(m.strain, rep.Stats.MaxStrain)
	if m.recording {
		m.recorder.Capture(m.scene.Canvas)
	}
}

func (m *Model) tryNext() {
	catalog := m.sess.Catalog()
	worn := make(map[string]bool)
	for _, w := range m.sess.Worn() {
		worn[w.ID] = true
	}
	for i := 0; i < len(catalog); i++ {
		id := catalog[(m.next+i)%len(catalog)]
		if worn[id] {
			continue
		}
		m.next = (m.next + i + 1) % len(catalog)
		if _, err := m.sess.TryOnFit(id, true); err != nil {
			m.message = "try on failed: " + err.Error()
			return
		}
		m.message = "wearing " + id
		return
	}
	m.message = "everything is on"
}

func (m *Model) removeLast() {
	worn := m.sess.Worn()
	if len(worn) == 0 {
		m.message = "nothing worn"
		return
	}
	w := worn[len(worn)-1]
	if err := m.sess.Remove(w.Handle); err != nil {
		m.message = err.Error()
		return
	}
	m.message = "took off " + w.ID
}

func (m *Model) stopRecording() {
	m.recording = false
	if m.recorder.Len() == 0 {
		m.message = "nothing recorded"
		return
	}
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.message = "gif: " + err.Error()
		return
	}
	m.message = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.gifPath)
	m.log.Info("gif saved", zap.String("path", m.gifPath), zap.Int("frames", m.recorder.Len()))
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.bad.Render("ERROR")
	case m.recording:
		return m.styles.bad.Render("● REC")
	case !m.running:
		return m.styles.warn.Render("PAUSED")
	default:
		return m.styles.good.Render(Spinner(m.frame) + " RUNNING")
	}
}

func (m *Model) row(label, value string) string {
	return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
}

// View renders the canvas next to the status panel.
func (m *Model) View() string {
	st := m.last.Stats
	var s strings.Builder
	s.WriteString(m.styles.title.Render(strings.ToUpper(m.cfg.Scenario)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.strain) > 1 {
		chart := asciigraph.Plot(m.strain, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("max strain"))
		s.WriteString(m.styles.garment.Render(chart) + "\n\n")
	}

	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", m.last.Time)))
	s.WriteString(m.row("Frame", fmt.Sprintf("%d", m.frame)))
	s.WriteString(m.row("Motion", m.anim.Motion.String()))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d", m.sess.Engine().ParticleCount())))
	s.WriteString(m.row("Strain", fmt.Sprintf("%.4f", st.MaxStrain)))
	s.WriteString(m.row("Penetration", fmt.Sprintf("%.4f", st.MaxPenetration)))
	s.WriteString(m.row("Contacts", fmt.Sprintf("%d", st.Contacts)))
	s.WriteString(m.row("Kinetic", fmt.Sprintf("%.3f J", st.KineticEnergy)))
	s.WriteString(m.row("Step", fmt.Sprintf("%.2f ms", float64(m.last.FrameTime)/float64(time.Millisecond))))
	stats := m.sess.Stats()
	s.WriteString(m.row("FPS", fmt.Sprintf("%.1f", stats.FPS)))
	if budget := m.sess.Settings().FrameBudget; budget > 0 {
		ratio := float64(m.last.FrameTime) / float64(budget)
		bar := Gauge(ratio, 12)
		if ratio > 1 {
			bar = m.styles.bad.Render(bar)
		}
		s.WriteString(m.row("Budget", bar+fmt.Sprintf(" %d over", stats.OverBudget)))
	}

	s.WriteString("\n" + m.styles.title.UnsetMarginBottom().Render("WEARING") + "\n")
	worn := m.sess.Worn()
	if len(worn) == 0 {
		s.WriteString(m.styles.muted.Render("  (nothing)") + "\n")
	}
	for _, w := range worn {
		s.WriteString("  " + m.styles.garment.Render(w.ID) + m.styles.muted.Render(fmt.Sprintf(" since frame %d", w.Since)) + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + m.styles.bad.Render(m.err.Error()) + "\n")
	} else if m.message != "" {
		s.WriteString("\n" + m.styles.muted.Render(m.message) + "\n")
	}
	s.WriteString(m.styles.help.Render("SP:Pause N:Next D:Off C:Clear\nM:Motion F:Gust ←→↑↓:Orbit ±:Zoom\nB:Body T:Theme G:GIF R:Restart ?:Help Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.scene.Canvas.String()),
		m.styles.panel.Render(s.String()),
	)
	if m.help {
		return helpText + "\n  themes: " + strings.Join(ThemeNames(), ", ") + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Try on next garment      ║
║  D        - Take off last garment    ║
║  C        - Clear all garments       ║
║  M        - Cycle body motion        ║
║  F        - Gust of wind             ║
║  Arrows   - Orbit camera             ║
║  + / -    - Zoom                     ║
║  B        - Toggle skeleton          ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  R        - Restart scenario         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
