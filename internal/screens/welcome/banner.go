package welcome

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/ui/theme"
)

const bannerArt = `
 ╦  ╔═╗╔═╗╦═╗╔╗╔╦╔╗╔╔═╗  ╦ ╦╦ ╦╔╗
 ║  ║╣ ╠═╣╠╦╝║║║║║║║║ ╦  ╠═╣║ ║╠╩╗
 ╩═╝╚═╝╩ ╩╩╚═╝╚╝╩╝╚╝╚═╝  ╩ ╩╚═╝╚═╝`

const bannerCompact = "L E A R N I N G   H U B"

// bannerWidth is the widest line of bannerArt.
const bannerWidth = 36

// RenderBanner returns the banner styled in the primary color, revealing
// only the first lines rows. Narrow terminals get the compact form.
func RenderBanner(width, lines int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < bannerWidth+4 {
		return style.Render(bannerCompact)
	}
	rows := strings.Split(bannerArt, "\n")
	if lines < len(rows) {
		rows = rows[:max(lines, 0)]
	}
	return style.Render(strings.Join(rows, "\n"))
}
