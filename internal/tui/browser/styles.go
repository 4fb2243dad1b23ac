package browser

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kain88-de/reviewr/internal/config"
)

// palette holds the colors of one theme.
type palette struct {
	fg, muted, accent, highlight, selectedBg, border, fail lipgloss.Color
}

var (
	darkPalette = palette{
		fg:         lipgloss.Color("15"),
		muted:      lipgloss.Color("242"),
		accent:     lipgloss.Color("39"),
		highlight:  lipgloss.Color("214"),
		selectedBg: lipgloss.Color("236"),
		border:     lipgloss.Color("240"),
		fail:       lipgloss.Color("196"),
	}
	lightPalette = palette{
		fg:         lipgloss.Color("0"),
		muted:      lipgloss.Color("245"),
		accent:     lipgloss.Color("25"),
		highlight:  lipgloss.Color("130"),
		selectedBg: lipgloss.Color("254"),
		border:     lipgloss.Color("250"),
		fail:       lipgloss.Color("160"),
	}
	highContrastPalette = palette{
		fg:         lipgloss.Color("15"),
		muted:      lipgloss.Color("15"),
		accent:     lipgloss.Color("11"),
		highlight:  lipgloss.Color("11"),
		selectedBg: lipgloss.Color("4"),
		border:     lipgloss.Color("15"),
		fail:       lipgloss.Color("9"),
	}
)

// Styles are the lipgloss styles of the browser.
type Styles struct {
	Frame      lipgloss.Style
	FrameTitle lipgloss.Style
	Header     lipgloss.Style
	Tab        lipgloss.Style
	ActiveTab  lipgloss.Style
	Item       lipgloss.Style
	Selected   lipgloss.Style
	Label      lipgloss.Style
	Footer     lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
}

// hasDarkBackground is replaced in tests to avoid querying the terminal.
var hasDarkBackground = termenv.HasDarkBackground

// NewStyles builds the styles for a ui_preferences.theme value. The
// Default theme follows the terminal background.
func NewStyles(theme string) Styles {
	var p palette
	switch theme {
	case config.ThemeDark:
		p = darkPalette
	case config.ThemeLight:
		p = lightPalette
	case config.ThemeHighContrast:
		p = highContrastPalette
	default:
		if hasDarkBackground() {
			p = darkPalette
		} else {
			p = lightPalette
		}
	}

	s := Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		FrameTitle: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		Header:     lipgloss.NewStyle().Bold(true).Foreground(p.fg),
		Tab:        lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		ActiveTab:  lipgloss.NewStyle().Foreground(p.highlight).Bold(true).Padding(0, 1),
		Item:       lipgloss.NewStyle().Foreground(p.fg),
		Selected:   lipgloss.NewStyle().Background(p.selectedBg).Foreground(p.fg).Bold(true),
		Label:      lipgloss.NewStyle().Foreground(p.muted),
		Footer:     lipgloss.NewStyle().Foreground(p.muted),
		Status:     lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		Error:      lipgloss.NewStyle().Foreground(p.fail),
	}
	if theme == config.ThemeHighContrast {
		s.Selected = s.Selected.Reverse(true)
	}
	return s
}
