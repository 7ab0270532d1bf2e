package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/ui/theme"
)

// MenuItem is one selectable row. Badge is right-hand metadata such as a
// module count or a duration.
type MenuItem struct {
	Label    string
	Detail   string
	Badge    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with keyboard selection. When Height is set only
// a window of rows around the selection is drawn.
type Menu struct {
	Items    []MenuItem
	Selected int
	Height   int
}

// NewMenu selects the first enabled item, or -1 when none is enabled.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.next(-1, 1)
	return m
}

// next returns the first enabled index after from in direction dir, or
// from itself when there is none.
func (m Menu) next(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			return i
		}
	}
	return from
}

// Current returns the selected item.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// Update moves the selection with arrows, vim keys, home/end and digits,
// and runs the selected action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k":
		m.Selected = m.next(m.Selected, -1)
	case "down", "j":
		m.Selected = m.next(m.Selected, 1)
	case "home", "g":
		m.jump(m.next(-1, 1))
	case "end", "G":
		m.jump(m.next(len(m.Items), -1))
	case "enter":
		if it, ok := m.Current(); ok && !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.Items) && !m.Items[i].Disabled {
				m.jump(i)
			}
		}
	}
	return m, nil
}

func (m *Menu) jump(i int) {
	if i >= 0 && i < len(m.Items) {
		m.Selected = i
	}
}

// window returns the [lo, hi) range of rows to draw.
func (m Menu) window() (int, int) {
	n := len(m.Items)
	if m.Height <= 0 || n <= m.Height {
		return 0, n
	}
	lo := max(m.Selected-m.Height/2, 0)
	hi := lo + m.Height
	if hi > n {
		hi, lo = n, n-m.Height
	}
	return lo, hi
}

// View renders the visible rows. The detail line only appears under the
// selected row.
func (m Menu) View() string {
	lo, hi := m.window()
	var b strings.Builder
	if lo > 0 {
		b.WriteString(theme.Hint.Render("    ↑") + "\n")
	}
	for i := lo; i < hi; i++ {
		it := m.Items[i]
		line := "    " + it.Label
		style := theme.Unselected
		switch {
		case it.Disabled:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			line = "  ▸ " + it.Label
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		if it.Badge != "" {
			b.WriteString("  " + theme.Hint.Render(it.Badge))
		}
		if i == m.Selected && it.Detail != "" {
			b.WriteString("\n" + theme.Hint.Render("      "+it.Detail))
		}
		b.WriteString("\n")
	}
	if hi < len(m.Items) {
		b.WriteString(theme.Hint.Render("    ↓") + "\n")
	}
	return b.String()
}
