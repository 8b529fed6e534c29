package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live viewer.
type Theme struct {
	Name    string
	Title   lipgloss.Color
	Garment lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Good    lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "atelier",
		Title:   lipgloss.Color("#f5c2e7"),
		Garment: lipgloss.Color("#cba6f7"),
		Label:   lipgloss.Color("#a6adc8"),
		Value:   lipgloss.Color("#cdd6f4"),
		Muted:   lipgloss.Color("#6c7086"),
		Border:  lipgloss.Color("#45475a"),
		Good:    lipgloss.Color("#a6e3a1"),
		Warning: lipgloss.Color("#f9e2af"),
		Error:   lipgloss.Color("#f38ba8"),
	},
	{
		Name:    "runway",
		Title:   lipgloss.Color("#ffffff"),
		Garment: lipgloss.Color("#ff5f87"),
		Label:   lipgloss.Color("#9e9e9e"),
		Value:   lipgloss.Color("#eeeeee"),
		Muted:   lipgloss.Color("#585858"),
		Border:  lipgloss.Color("#3a3a3a"),
		Good:    lipgloss.Color("#5fd75f"),
		Warning: lipgloss.Color("#ffaf00"),
		Error:   lipgloss.Color("#ff0000"),
	},
	{
		Name:    "denim",
		Title:   lipgloss.Color("#87d7ff"),
		Garment: lipgloss.Color("#5f87d7"),
		Label:   lipgloss.Color("#8a8aaa"),
		Value:   lipgloss.Color("#dadaff"),
		Muted:   lipgloss.Color("#4e4e6e"),
		Border:  lipgloss.Color("#303050"),
		Good:    lipgloss.Color("#87ffaf"),
		Warning: lipgloss.Color("#ffd75f"),
		Error:   lipgloss.Color("#ff5f5f"),
	},
	{
		Name:    "mono",
		Title:   lipgloss.Color("255"),
		Garment: lipgloss.Color("252"),
		Label:   lipgloss.Color("245"),
		Value:   lipgloss.Color("252"),
		Muted:   lipgloss.Color("240"),
		Border:  lipgloss.Color("238"),
		Good:    lipgloss.Color("250"),
		Warning: lipgloss.Color("250"),
		Error:   lipgloss.Color("255"),
	},
}

// ThemeByName falls back to the first theme for unknown names.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after the named one, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
