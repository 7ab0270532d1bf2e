package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/ui/theme"
)

// ContentWidth returns the inner width used for screen bodies so that
// panels line up on wide terminals.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 96)
}

// Panel wraps content in a rounded card of width cw with a title line.
func Panel(title, content string, cw int) string {
	body := content
	if title != "" {
		body = theme.Title.Render(title) + "\n\n" + content
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw).
		Padding(0, 1).
		Render(body)
}

// Stat renders a big value over a small caption, for dashboard tiles.
func Stat(value, caption string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Width(width).
		Align(lipgloss.Center).
		Render(theme.Title.Render(value) + "\n" + theme.Subtitle.Render(caption))
}

// Avatar renders initials inside a small badge.
func Avatar(initials string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.Primary).
		Bold(true).
		Padding(0, 2).
		Render(initials)
}
