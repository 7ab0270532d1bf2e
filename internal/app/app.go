// Package app is the root Bubble Tea model: it frames the routed screen with
// the header, footer, sidebar and command bar and owns the global keys.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/command"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/screens/aicore"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
)

// askMsg opens the AI core and submits a question to it.
type askMsg struct {
	question string
}

// sidebarEntry is one line of the tab menu.
type sidebarEntry struct {
	id     string
	screen nav.Screen
	logout bool
}

var sidebar = []sidebarEntry{
	{id: "sidebar.mission_control", screen: nav.Welcome},
	{id: "sidebar.mission_map", screen: nav.Map},
	{id: "sidebar.lesson", screen: nav.Lesson},
	{id: "sidebar.assessment", screen: nav.Assessment},
	{id: "sidebar.ai_core", screen: nav.AICore},
	{id: "sidebar.settings", screen: nav.Accessibility},
	{id: "sidebar.profile", screen: nav.UserProfile},
	{id: "sidebar.teacher", screen: nav.TeacherDashboard},
	{id: "sidebar.logout", logout: true},
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   *screen.Deps
	router *router.Router
	log    *zap.Logger
	width  int
	height int

	sidebarOpen   bool
	sidebarCursor int

	commandOpen bool
	command     components.TextInput
	feedback    string
}

// New creates the root model. The navigation controller starts on login or
// welcome depending on the session.
func New(d *screen.Deps) AppModel {
	authenticated := func() bool { return d.Session != nil && d.Session.IsAuthenticated() }
	ctrl := nav.New(authenticated, d.Log("nav"))
	return AppModel{
		deps:    d,
		router:  router.New(ctrl, Factory(d), d.Log("router")),
		log:     d.Log("app"),
		command: components.NewTextInput("", d.T.T("command.placeholder"), 200),
	}
}

// Router exposes the router, for tests and the CLI.
func (m AppModel) Router() *router.Router {
	return m.router
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Init()
}

func (m AppModel) authenticated() bool {
	return m.deps.Session != nil && m.deps.Session.IsAuthenticated()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case askMsg:
		// Navigation is applied synchronously, so the question reaches the
		// freshly mounted AI core.
		navCmd := m.router.Update(router.NavigateMsg{Screen: nav.AICore})
		askCmd := m.router.Update(aicore.AskMsg{Question: msg.question})
		return m, tea.Batch(navCmd, askCmd, m.router.Sync())

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.commandOpen {
			return m.updateCommand(msg)
		}
		if m.sidebarOpen {
			return m.updateSidebar(msg)
		}
		if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturesInput() {
			return m, m.routed(msg)
		}
		switch msg.String() {
		case "tab":
			if m.authenticated() {
				m.sidebarOpen = true
				m.sidebarCursor = m.sidebarIndex()
				return m, nil
			}
		case ":":
			if m.authenticated() {
				m.commandOpen = true
				m.feedback = ""
				return m, m.command.Focus()
			}
		case "esc":
			return m, router.Back()
		}
	}

	return m, m.routed(msg)
}

// routed forwards msg to the router and re-applies the auth gate, which
// may have changed when a login or logout finished.
func (m AppModel) routed(msg tea.Msg) tea.Cmd {
	cmd := m.router.Update(msg)
	return tea.Batch(cmd, m.router.Sync())
}

func (m AppModel) sidebarIndex() int {
	cur := m.router.Current()
	for i, e := range sidebar {
		if !e.logout && e.screen == cur {
			return i
		}
	}
	return 0
}

func (m AppModel) updateSidebar(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.sidebarCursor = (m.sidebarCursor + len(sidebar) - 1) % len(sidebar)
	case "down", "j":
		m.sidebarCursor = (m.sidebarCursor + 1) % len(sidebar)
	case "tab", "esc":
		m.sidebarOpen = false
	case "enter":
		m.sidebarOpen = false
		e := sidebar[m.sidebarCursor]
		if e.logout {
			return m, m.logout()
		}
		return m, router.Navigate(e.screen, nav.Params{})
	}
	return m, nil
}

func (m AppModel) logout() tea.Cmd {
	m.log.Info("logout requested")
	return router.Logout(m.deps.Parent(), m.deps.Session)
}

func (m AppModel) updateCommand(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeCommand()
		return m, nil
	case "enter":
		text := m.command.Value()
		intent := command.Parse(text)
		m.log.Debug("command", zap.String("text", text), zap.Stringer("intent", intent.Kind))
		if intent.Kind == command.Unknown {
			m.feedback = m.deps.T.Tf("command.unknown", map[string]any{"Text": text})
			m.command.Reset()
			return m, nil
		}
		m.closeCommand()
		return m, m.execute(intent)
	}
	var cmd tea.Cmd
	m.command, cmd = m.command.Update(msg)
	return m, cmd
}

func (m *AppModel) closeCommand() {
	m.commandOpen = false
	m.feedback = ""
	m.command.Reset()
	m.command.Blur()
}

func (m AppModel) execute(in command.Intent) tea.Cmd {
	switch in.Kind {
	case command.Navigate:
		return router.Navigate(in.Screen, nav.Params{})
	case command.Back:
		return router.Back()
	case command.Logout:
		return m.logout()
	case command.Quit:
		return tea.Quit
	case command.Ask:
		q := in.Question
		return func() tea.Msg { return askMsg{question: q} }
	}
	return nil
}

// Close releases the hosted screen.
func (m AppModel) Close() {
	m.router.Close()
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.deps.T.T("app.too_small"), m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.router.Active().Title(), m.userLabel(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	if m.commandOpen {
		footer = layout.RenderCommandBar(":"+m.command.Model.View(), m.feedback, m.width) + "\n" + footer
	}

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.body(contentHeight)

	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) body(height int) string {
	if !m.sidebarOpen {
		return m.router.View(m.width, height)
	}
	items := make([]string, len(sidebar))
	for i, e := range sidebar {
		items[i] = m.deps.T.T(e.id)
	}
	side := layout.RenderSidebar(m.deps.T.T("sidebar.title"), items, m.sidebarCursor, height)
	if layout.IsCompactWidth(m.width) {
		return side
	}
	rest := max(m.width-layout.SidebarWidth-4, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top, side, " ", m.router.View(rest, height))
}

func (m AppModel) userLabel() string {
	if m.deps.Session == nil {
		return ""
	}
	s, ok := m.deps.Session.Current()
	if !ok {
		return ""
	}
	name := s.Name
	if name == "" {
		name = s.Email
	}
	return fmt.Sprintf("%s · %s", name, m.deps.T.T("role."+s.Role))
}

func (m AppModel) hints() []layout.KeyHint {
	t := m.deps.T
	switch {
	case m.commandOpen:
		return []layout.KeyHint{
			{Key: "Enter", Description: t.T("hint.run")},
			{Key: "Esc", Description: t.T("hint.cancel")},
		}
	case m.sidebarOpen:
		return []layout.KeyHint{
			{Key: "↑↓", Description: t.T("hint.navigate")},
			{Key: "Enter", Description: t.T("hint.open")},
			{Key: "Tab", Description: t.T("hint.close")},
		}
	}
	var hints []layout.KeyHint
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: t.T("hint.quit")})
}

// Run starts the program and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, d *screen.Deps) error {
	m := New(d)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
