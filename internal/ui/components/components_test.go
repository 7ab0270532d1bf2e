package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func press(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func TestMenuSkipsDisabled(t *testing.T) {
	called := ""
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "a", Action: func() tea.Cmd { called = "a"; return nil }},
		{Label: "off2", Disabled: true},
		{Label: "b", Action: func() tea.Cmd { called = "b"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(press("down"))
	if m.Selected != 3 {
		t.Errorf("down should skip disabled item, got %d", m.Selected)
	}
	m, _ = m.Update(press("enter"))
	if called != "b" {
		t.Errorf("enter should run selected action, ran %q", called)
	}
	m, _ = m.Update(press("up"))
	if m.Selected != 1 {
		t.Errorf("up should skip disabled item, got %d", m.Selected)
	}
}

func TestMultiChoiceJumpKeys(t *testing.T) {
	mc := NewMultiChoice("q", []string{"x", "y", "z"})
	mc, _ = mc.Update(press("3"))
	if mc.Selected != 2 {
		t.Errorf("digit 3 should select third option, got %d", mc.Selected)
	}
	mc, _ = mc.Update(press("a"))
	if mc.Selected != 0 {
		t.Errorf("letter a should select first option, got %d", mc.Selected)
	}
	mc, _ = mc.Update(press("9"))
	if mc.Selected != 0 {
		t.Errorf("out of range digit should be ignored, got %d", mc.Selected)
	}

	mc.Submit(0, 1)
	mc, _ = mc.Update(press("down"))
	if mc.Selected != 0 {
		t.Error("submitted selector should ignore keys")
	}
	if !strings.Contains(mc.View(), "B)  y") {
		t.Error("view should label options with letters")
	}
}

func TestSpinnerStaticNeverTicks(t *testing.T) {
	s := Spinner{ID: 1, Static: true}
	if s.Tick() != nil {
		t.Error("static spinner must not schedule ticks")
	}
	s2 := Spinner{ID: 2}
	s2, cmd := s2.Update(SpinnerTickMsg{ID: 2}, false)
	if cmd != nil {
		t.Error("inactive spinner must stop ticking")
	}
	if s2.View() != spinnerFrames[1] {
		t.Errorf("expected frame advance, got %q", s2.View())
	}
	_, cmd = s2.Update(SpinnerTickMsg{ID: 3}, true)
	if cmd != nil {
		t.Error("foreign tick must be ignored")
	}
}

func TestProgressBarClamps(t *testing.T) {
	over := NewProgressBar("", 1.7, false, 10).View()
	under := NewProgressBar("", -1, false, 10).View()
	if over == "" || under == "" {
		t.Fatal("bars should render")
	}
}

func TestMenuJumpsAndWindows(t *testing.T) {
	items := make([]MenuItem, 8)
	for i := range items {
		items[i] = MenuItem{Label: string(rune('a' + i))}
	}
	items[2].Disabled = true
	m := NewMenu(items)
	m.Height = 3

	m, _ = m.Update(press("3"))
	if m.Selected != 0 {
		t.Errorf("digit on a disabled item should be ignored, got %d", m.Selected)
	}
	m, _ = m.Update(press("5"))
	if m.Selected != 4 {
		t.Errorf("digit 5 should select fifth item, got %d", m.Selected)
	}
	m, _ = m.Update(press("G"))
	if m.Selected != 7 {
		t.Errorf("G should select last item, got %d", m.Selected)
	}
	view := m.View()
	if strings.Contains(view, "  ▸ a") || !strings.Contains(view, "▸ h") || !strings.Contains(view, "↑") {
		t.Errorf("window should follow the selection:\n%s", view)
	}
	m, _ = m.Update(press("g"))
	if m.Selected != 0 {
		t.Errorf("g should select first item, got %d", m.Selected)
	}
}

func TestMenuWithoutEnabledItems(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "x", Disabled: true}})
	if _, ok := m.Current(); ok {
		t.Error("no item should be current")
	}
	m, cmd := m.Update(press("enter"))
	if cmd != nil || m.Selected != -1 {
		t.Error("enter on an empty selection must do nothing")
	}
}
