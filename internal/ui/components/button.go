package components

import (
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// Button renders a form button; active buttons are highlighted.
func Button(label string, active bool) string {
	if active {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render(label)
}
