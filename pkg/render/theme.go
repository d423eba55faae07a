package render

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Primary lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Value   lipgloss.Style // hex pattern values
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Pass   string
	Fail   string
	Warn   string
	Info   string
	Bullet string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("178")), // amber
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Warn:   "⚠",
			Info:   "●",
			Bullet: "·",
		},
	}
}

// BenchTheme returns a muted theme for long bench sessions.
func BenchTheme() Theme {
	return Theme{
		Name:    "bench",
		Primary: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),  // pale blue
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("187")), // pale gold
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "✓",
			Fail:   "✗",
			Warn:   "!",
			Info:   "·",
			Bullet: "·",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors, ASCII icons).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Primary: lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle(),
		Value:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Pass:   "+",
			Fail:   "x",
			Warn:   "!",
			Info:   "*",
			Bullet: "-",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "bench":
		return BenchTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}
