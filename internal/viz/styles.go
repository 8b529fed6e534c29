package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title, garment, label, value, muted, good, warn, bad lipgloss.Style
	panel, canvas, help                                  lipgloss.Style
}

func newStyles(t Theme) styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styles{
		title:   fg(t.Title).Bold(true).MarginBottom(1),
		garment: fg(t.Garment),
		label:   fg(t.Label).Width(12),
		value:   fg(t.Value),
		muted:   fg(t.Muted),
		good:    fg(t.Good).Bold(true),
		warn:    fg(t.Warning).Bold(true),
		bad:     fg(t.Error).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(0, 2).
			Width(44),
		canvas: fg(t.Garment).Padding(0, 1),
		help:   fg(t.Muted).Italic(true).MarginTop(1),
	}
}

// Spinner returns one frame of a braille spinner.
func Spinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	if frame < 0 {
		frame = -frame
	}
	return frames[frame%len(frames)]
}

// Gauge renders ratio in [0, 1] as a bar of the given width.
func Gauge(ratio float64, width int) string {
	if width < 1 {
		return ""
	}
	filled := int(ratio*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline maps values onto eight block heights, keeping the most recent
// width values.
func Sparkline(values []float64, width int) string {
	if width < 1 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		out[i] = blocks[max(0, min(idx, len(blocks)-1))]
	}
	return string(out)
}
