// Package theme holds the color palette and shared lipgloss styles. The
// active palette can be swapped at runtime by the accessibility settings.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is a complete set of UI colors.
type Palette struct {
	Name      string
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgDark    color.Color
	BgCard    color.Color
	Border    color.Color
}

// Space is the default dark sci-fi palette: neon cyan on deep space navy.
var Space = Palette{
	Name:      "space",
	Primary:   lipgloss.Color("#22D3EE"), // Cyan
	Secondary: lipgloss.Color("#A78BFA"), // Violet
	Accent:    lipgloss.Color("#F472B6"), // Pink
	Success:   lipgloss.Color("#34D399"), // Emerald
	Error:     lipgloss.Color("#F87171"), // Red
	Text:      lipgloss.Color("#E2E8F0"),
	TextDim:   lipgloss.Color("#64748B"),
	BgDark:    lipgloss.Color("#020617"),
	BgCard:    lipgloss.Color("#0F172A"),
	Border:    lipgloss.Color("#1E3A5F"),
}

// Daylight is used when dark mode is turned off.
var Daylight = Palette{
	Name:      "daylight",
	Primary:   lipgloss.Color("#0E7490"),
	Secondary: lipgloss.Color("#6D28D9"),
	Accent:    lipgloss.Color("#BE185D"),
	Success:   lipgloss.Color("#047857"),
	Error:     lipgloss.Color("#B91C1C"),
	Text:      lipgloss.Color("#0F172A"),
	TextDim:   lipgloss.Color("#475569"),
	BgDark:    lipgloss.Color("#F8FAFC"),
	BgCard:    lipgloss.Color("#E2E8F0"),
	Border:    lipgloss.Color("#94A3B8"),
}

// HighContrast uses pure black and white with saturated accents.
var HighContrast = Palette{
	Name:      "high-contrast",
	Primary:   lipgloss.Color("#FFFF00"),
	Secondary: lipgloss.Color("#00FFFF"),
	Accent:    lipgloss.Color("#FF00FF"),
	Success:   lipgloss.Color("#00FF00"),
	Error:     lipgloss.Color("#FF0000"),
	Text:      lipgloss.Color("#FFFFFF"),
	TextDim:   lipgloss.Color("#FFFFFF"),
	BgDark:    lipgloss.Color("#000000"),
	BgCard:    lipgloss.Color("#000000"),
	Border:    lipgloss.Color("#FFFFFF"),
}

// Colors of the active palette.
var (
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgDark    color.Color
	BgCard    color.Color
	Border    color.Color
)

// Typography
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style
)

// Layout
var (
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style
)

// States
var (
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Correct    lipgloss.Style
	Incorrect  lipgloss.Style
	Banner     lipgloss.Style
)

// Components
var (
	ProgressEmpty  lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
)

var active Palette

func init() {
	Apply(Space)
}

// Active returns the palette currently applied.
func Active() Palette {
	return active
}

// For picks the palette matching the accessibility toggles. High contrast
// wins over dark mode.
func For(highContrast, darkMode bool) Palette {
	switch {
	case highContrast:
		return HighContrast
	case !darkMode:
		return Daylight
	}
	return Space
}

// Apply makes p the active palette and rebuilds every shared style.
func Apply(p Palette) {
	active = p
	Primary, Secondary, Accent = p.Primary, p.Secondary, p.Accent
	Success, Error = p.Success, p.Error
	Text, TextDim = p.Text, p.TextDim
	BgDark, BgCard, Border = p.BgDark, p.BgCard, p.Border

	Title = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim)
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Header = lipgloss.NewStyle().Background(BgCard).Padding(0, 2)
	Footer = lipgloss.NewStyle().Background(BgCard).Padding(0, 2)
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Correct = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)
	Banner = lipgloss.NewStyle().
		Foreground(Error).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Error).
		PaddingLeft(1)

	ProgressEmpty = lipgloss.NewStyle().Background(Border)
	ButtonActive = lipgloss.NewStyle().
		Background(Primary).
		Foreground(BgDark).
		Bold(true).
		Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
}
