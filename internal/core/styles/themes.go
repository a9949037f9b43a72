package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color

	// AddedBg and RemovedBg tint changed lines in the diff pane.
	AddedBg   lipgloss.Color
	RemovedBg lipgloss.Color

	Light bool
}

// DefaultTheme is the name of the default dark theme.
const DefaultTheme = "tokyo-night"

// DefaultLightTheme is used when the terminal has a light background.
const DefaultLightTheme = "github-light"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#7dcfff",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Background: "#1a1b26",
		Surface:    "#3b4261",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
		AddedBg:    "#20303b",
		RemovedBg:  "#37222c",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#8ec07c",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Background: "#282828",
		Surface:    "#3c3836",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
		AddedBg:    "#32361a",
		RemovedBg:  "#3c1f1e",
	},
	"catppuccin": {
		Primary:    "#89b4fa", // Blue
		Secondary:  "#94e2d5", // Teal
		Foreground: "#cdd6f4", // Text
		Muted:      "#6c7086", // Overlay0
		Background: "#1e1e2e", // Base
		Surface:    "#313244", // Surface0
		Success:    "#a6e3a1", // Green
		Warning:    "#f9e2af", // Yellow
		Error:      "#f38ba8", // Red
		AddedBg:    "#2b3b36",
		RemovedBg:  "#3b2a36",
	},
	"github-light": {
		Primary:    "#0969da",
		Secondary:  "#1b7c83",
		Foreground: "#1f2328",
		Muted:      "#6e7781",
		Background: "#ffffff",
		Surface:    "#eaeef2",
		Success:    "#1a7f37",
		Warning:    "#9a6700",
		Error:      "#cf222e",
		AddedBg:    "#dafbe1",
		RemovedBg:  "#ffebe9",
		Light:      true,
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// Resolve picks the palette for name. "auto" and "" follow the terminal
// background; unknown names fall back to the default theme.
func Resolve(name string) Palette {
	switch name {
	case "", "auto":
		if lipgloss.HasDarkBackground() {
			return themes[DefaultTheme]
		}
		return themes[DefaultLightTheme]
	}
	if p, ok := themes[name]; ok {
		return p
	}
	return themes[DefaultTheme]
}
