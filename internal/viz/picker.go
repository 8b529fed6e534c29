package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/pose"
)

const (
	pickScenario = iota
	pickMotion
	pickDone
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true).MarginBottom(1)
	menuItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	menuNote     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// Picker is a two-step menu choosing a scenario and a body motion.
type Picker struct {
	stage     int
	cursor    int
	scenarios []experiment.Scenario
	motions   []string
	scenario  string
	motion    string
}

func NewPicker(reg *experiment.Registry) Picker {
	p := Picker{motions: pose.Motions()}
	for _, name := range reg.ListScenarios() {
		if sc, err := reg.Get(name); err == nil {
			p.scenarios = append(p.scenarios, sc)
		}
	}
	return p
}

// Chosen returns the selection once both steps are done.
func (p Picker) Chosen() (scenario, motion string, ok bool) {
	return p.scenario, p.motion, p.stage == pickDone
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) items() int {
	if p.stage == pickScenario {
		return len(p.scenarios)
	}
	return len(p.motions)
}

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < p.items()-1 {
			p.cursor++
		}
	case "esc", "backspace":
		if p.stage == pickMotion {
			p.stage, p.cursor = pickScenario, 0
		}
	case "enter", " ":
		if p.items() == 0 {
			return p, tea.Quit
		}
		switch p.stage {
		case pickScenario:
			sc := p.scenarios[p.cursor]
			p.scenario = sc.Name
			p.stage, p.cursor = pickMotion, 0
			for i, m := range p.motions {
				if m == sc.Motion.String() {
					p.cursor = i
				}
			}
		case pickMotion:
			p.motion = p.motions[p.cursor]
			p.stage = pickDone
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p Picker) View() string {
	var s strings.Builder
	switch p.stage {
	case pickScenario:
		s.WriteString(menuTitle.Render("DRAPE · choose a scenario") + "\n")
		for i, sc := range p.scenarios {
			line := fmt.Sprintf("%-16s", sc.Name)
			if i == p.cursor {
				s.WriteString(menuSelected.Render("> "+line) + menuNote.Render(sc.Description) + "\n")
			} else {
				s.WriteString(menuItem.Render("  "+line) + menuNote.Render(sc.Description) + "\n")
			}
		}
	case pickMotion:
		s.WriteString(menuTitle.Render(p.scenario+" · choose a body motion") + "\n")
		for i, m := range p.motions {
			if i == p.cursor {
				s.WriteString(menuSelected.Render("> "+m) + "\n")
			} else {
				s.WriteString(menuItem.Render("  "+m) + "\n")
			}
		}
	default:
		return ""
	}
	s.WriteString("\n" + menuNote.Render("↑↓ move · enter select · esc back · q quit"))
	return s.String()
}
