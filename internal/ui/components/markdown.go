package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders md for the terminal at the given wrap width. It falls
// back to the raw text when the renderer fails.
func Markdown(md string, width int, dark bool) string {
	style := "dark"
	if !dark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
