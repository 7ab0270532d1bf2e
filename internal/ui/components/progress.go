package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/ui/theme"
)

// eighths are the partial cells used for the leading edge of the bar.
var eighths = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// ProgressBar is a one-line bar with an optional label and percentage.
type ProgressBar struct {
	Label       string
	Percent     float64 // clamped to [0,1] when drawn
	ShowPercent bool
	Width       int // total width including label and percentage
}

// NewProgressBar creates a progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}

// View draws the bar at eighth-of-a-cell resolution.
func (p ProgressBar) View() string {
	pct := clamp01(p.Percent)

	var prefix, suffix string
	if p.Label != "" {
		prefix = theme.Body.Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = theme.Subtitle.Render(fmt.Sprintf(" %3d%%", int(pct*100+0.5)))
	}

	cells := max(p.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)
	units := int(pct * float64(cells*8))
	full, part := units/8, units%8

	fill := lipgloss.NewStyle().Foreground(theme.Secondary).Background(theme.Border)
	bar := strings.Repeat("█", full) + eighths[part]
	rest := cells - full
	if part > 0 {
		rest--
	}
	return prefix + fill.Render(bar) + theme.ProgressEmpty.Render(strings.Repeat(" ", rest)) + suffix
}
