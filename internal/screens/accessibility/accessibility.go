// Package accessibility is the settings screen for the reading aids.
package accessibility

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// SettingsScreen lists every toggle. Changes apply immediately and are
// saved under a11y.Key.
type SettingsScreen struct {
	deps   *screen.Deps
	cursor int
}

var _ screen.Screen = (*SettingsScreen)(nil)

// New creates the settings screen.
func New(d *screen.Deps) *SettingsScreen {
	return &SettingsScreen{deps: d}
}

func (s *SettingsScreen) Title() string {
	return s.deps.T.T("a11y.title")
}

func (s *SettingsScreen) Init() tea.Cmd { return nil }

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		s.cursor = max(s.cursor-1, 0)
	case "down", "j":
		s.cursor = min(s.cursor+1, len(a11y.Toggles)-1)
	case "enter", "space":
		return s, s.flip(a11y.Toggles[s.cursor])
	case "d":
		return s, s.deps.SetAccess(a11y.Defaults())
	}
	return s, nil
}

func (s *SettingsScreen) flip(t a11y.Toggle) tea.Cmd {
	return s.deps.SetAccess(s.deps.Access().Flip(t))
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Space", Description: t.T("hint.toggle")},
		{Key: "d", Description: t.T("hint.defaults")},
		{Key: "Tab", Description: t.T("hint.menu")},
	}
}

func (s *SettingsScreen) View(width, height int) string {
	t := s.deps.T
	cw := components.ContentWidth(width)
	current := s.deps.Access()

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(t.T("a11y.subtitle")))
	b.WriteString("\n\n")
	for i, tg := range a11y.Toggles {
		box := "[ ]"
		if current.Get(tg) {
			box = "[x]"
		}
		line := box + " " + t.T(tg.ID())
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("▸ " + line))
			b.WriteString("\n    " + theme.Hint.Render(t.T(tg.ID()+"_detail")))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + theme.Subtitle.Render(t.T("a11y.preview")) + "\n")
	sample := current.Format(t.T("a11y.sample"))
	b.WriteString(theme.Card.Width(current.WrapWidth(cw-4)).Render(theme.Body.Render(sample)))
	return components.Panel(t.T("a11y.heading"), b.String(), cw)
}
