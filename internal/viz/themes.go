package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for reports and the replay
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Lanes   []lipgloss.Color
}

var (
	ThemeStrip = Theme{
		Name:    "strip",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ffff00"), // christmas tree amber
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff4444"),
		Lanes: []lipgloss.Color{
			"#00ccff", "#ff00ff", "#00ff88", "#ffaa00", "#ff4444", "#aa88ff",
		},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"), // green phosphor
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		Lanes: []lipgloss.Color{
			"#00ff00", "#88ff88", "#00aa00", "#ccffcc",
		},
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
		Lanes: []lipgloss.Color{
			"#ffffff", "#0088ff", "#cccccc", "#00aaaa",
		},
	}

	CurrentTheme = ThemeStrip

	Themes = []Theme{
		ThemeStrip,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeStrip
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Lane returns the color of the i-th car on the grid.
func (t Theme) Lane(i int) lipgloss.Color {
	if len(t.Lanes) == 0 {
		return t.Text
	}
	return t.Lanes[i%len(t.Lanes)]
}

// LaneStyle renders text in the i-th lane color of the current theme.
func LaneStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Lane(i)).Bold(true)
}
