package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme behind the persisted dark-mode flag.
type Theme struct {
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Danger     lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#1a1a2e"),
		Accent:     lipgloss.Color("#0f4c81"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#d1d5db"),
		Danger:     lipgloss.Color("#b91c1c"),
		IsDark:     false,
	}
}

func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#e5e7eb"),
		Accent:     lipgloss.Color("#7dd3fc"),
		Muted:      lipgloss.Color("#9ca3af"),
		Border:     lipgloss.Color("#374151"),
		Danger:     lipgloss.Color("#f87171"),
		IsDark:     true,
	}
}

// Styles holds the rendered components of a feed card.
type Styles struct {
	Theme    Theme
	Author   lipgloss.Style
	Time     lipgloss.Style
	Meta     lipgloss.Style
	Liked    lipgloss.Style
	Danger   lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
	Help     lipgloss.Style
}

func NewStyles(theme Theme) Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return Styles{
		Theme:    theme,
		Author:   lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Time:     lipgloss.NewStyle().Foreground(theme.Muted),
		Meta:     lipgloss.NewStyle().Foreground(theme.Muted),
		Liked:    lipgloss.NewStyle().Foreground(theme.Danger),
		Danger:   lipgloss.NewStyle().Foreground(theme.Danger),
		Card:     card,
		Selected: card.BorderForeground(theme.Accent),
		Status:   lipgloss.NewStyle().Foreground(theme.Accent),
		Help:     lipgloss.NewStyle().Foreground(theme.Muted),
	}
}

// StylesFor maps the persisted theme flag to a style set.
func StylesFor(darkMode bool) Styles {
	if darkMode {
		return NewStyles(DarkTheme())
	}

	return NewStyles(LightTheme())
}
