// Package ui implements the interactive terminal screens: the page shell and
// navigation bar, form screens, the product table, and the modal dialogs
// that deliver outcome notifications.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Brand palette. The semantic colors are shared between both themes.
var (
	colorSuccess     = lipgloss.Color("#2e7d32")
	colorDestructive = lipgloss.Color("#e53935")
	colorWarning     = lipgloss.Color("#f9a825")

	lightForeground = lipgloss.Color("#1a2233")
	lightPrimary    = lipgloss.Color("#2451b3")
	lightMuted      = lipgloss.Color("#8a8f98")
	lightBorder     = lipgloss.Color("#d4d8de")

	darkForeground = lipgloss.Color("#e8eaed")
	darkPrimary    = lipgloss.Color("#7aa2f7")
	darkMuted      = lipgloss.Color("#565f6e")
	darkBorder     = lipgloss.Color("#3b4252")
)

// Theme is the active color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light scheme.
func LightTheme() Theme {
	return Theme{
		Foreground: lightForeground,
		Primary:    lightPrimary,
		Muted:      lightMuted,
		Border:     lightBorder,
	}
}

// DarkTheme returns the dark scheme.
func DarkTheme() Theme {
	return Theme{
		Foreground: darkForeground,
		Primary:    darkPrimary,
		Muted:      darkMuted,
		Border:     darkBorder,
		IsDark:     true,
	}
}

// ThemeFor resolves a theme name from the configuration. "auto" probes the
// terminal background.
func ThemeFor(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	default:
		if lipgloss.HasDarkBackground() {
			return DarkTheme()
		}
		return LightTheme()
	}
}

// Styles bundles every lipgloss style the screens use.
type Styles struct {
	Theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style

	NavBar       lipgloss.Style
	NavItem      lipgloss.Style
	NavActive    lipgloss.Style
	Footer       lipgloss.Style
	StatusDetail lipgloss.Style

	Panel lipgloss.Style

	Label      lipgloss.Style
	Required   lipgloss.Style
	FieldOK    lipgloss.Style
	FieldError lipgloss.Style
	Hint       lipgloss.Style

	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
	ButtonDisabled lipgloss.Style

	BadgeInStock    lipgloss.Style
	BadgeLowStock   lipgloss.Style
	BadgeOutOfStock lipgloss.Style

	DialogBox     lipgloss.Style
	DialogTitle   lipgloss.Style
	DialogSuccess lipgloss.Style
	DialogError   lipgloss.Style
	DialogWarning lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	base := lipgloss.NewStyle().Foreground(theme.Foreground)

	button := lipgloss.NewStyle().Padding(0, 3).Bold(true)

	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return Styles{
		Theme: theme,

		Title:    base.Bold(true).Foreground(theme.Primary),
		Subtitle: base.Foreground(theme.Muted),

		NavBar:       lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(theme.Border),
		NavItem:      lipgloss.NewStyle().Padding(0, 2).Foreground(theme.Muted),
		NavActive:    lipgloss.NewStyle().Padding(0, 2).Bold(true).Foreground(theme.Primary).Underline(true),
		Footer:       lipgloss.NewStyle().Foreground(theme.Muted),
		StatusDetail: lipgloss.NewStyle().Foreground(theme.Primary),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),

		Label:      base,
		Required:   lipgloss.NewStyle().Foreground(colorDestructive),
		FieldOK:    lipgloss.NewStyle().Foreground(colorSuccess),
		FieldError: lipgloss.NewStyle().Foreground(colorDestructive),
		Hint:       lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),

		ButtonActive:   button.Foreground(lipgloss.Color("#ffffff")).Background(theme.Primary),
		ButtonInactive: button.Foreground(theme.Primary),
		ButtonDisabled: button.Foreground(theme.Muted),

		BadgeInStock:    badge.Foreground(colorSuccess),
		BadgeLowStock:   badge.Foreground(colorWarning),
		BadgeOutOfStock: badge.Foreground(colorDestructive),

		DialogBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 3),
		DialogTitle:   base.Bold(true),
		DialogSuccess: lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		DialogError:   lipgloss.NewStyle().Foreground(colorDestructive).Bold(true),
		DialogWarning: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
	}
}
