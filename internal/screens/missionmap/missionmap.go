// Package missionmap lists the learning paths ("rutas").
package missionmap

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// catalogKey is the loader key; the path list has no identifier.
const catalogKey = "rutas"

// MapScreen shows every learning path.
type MapScreen struct {
	deps    *screen.Deps
	paths   *fetch.Loader[[]api.Path]
	menu    components.Menu
	spinner components.Spinner
}

var _ screen.Screen = (*MapScreen)(nil)

// New creates the mission map.
func New(d *screen.Deps) *MapScreen {
	return &MapScreen{
		deps: d,
		paths: fetch.New(func(ctx context.Context, _ string) ([]api.Path, error) {
			return d.Content.Paths(ctx)
		}, d.LoaderOptions("paths", false)...),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
	}
}

func (m *MapScreen) Title() string {
	return m.deps.T.T("map.title")
}

func (m *MapScreen) Init() tea.Cmd {
	return tea.Batch(m.paths.Ensure(catalogKey), m.spinner.Tick())
}

func (m *MapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m.paths.Handle(msg) {
		if m.paths.State() == fetch.Loaded {
			m.menu = components.NewMenu(m.items(m.paths.Value()))
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg, m.paths.Loading())
		return m, cmd
	case tea.KeyPressMsg:
		switch m.paths.State() {
		case fetch.Error:
			if msg.String() == "r" {
				return m, tea.Batch(m.paths.Retry(), m.spinner.Tick())
			}
		case fetch.Loaded:
			var cmd tea.Cmd
			m.menu, cmd = m.menu.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *MapScreen) items(paths []api.Path) []components.MenuItem {
	items := make([]components.MenuItem, 0, len(paths))
	for _, p := range paths {
		id := string(p.ID)
		badge := ""
		if p.ModuleCount > 0 {
			badge = m.deps.T.Tf("map.modules", map[string]any{"Count": p.ModuleCount})
		}
		items = append(items, components.MenuItem{
			Label:  "✦ " + p.Title,
			Detail: p.Description,
			Badge:  badge,
			Action: func() tea.Cmd { return router.Navigate(nav.PathOverview, nav.Params{PathID: id}) },
		})
	}
	return items
}

// Close cancels the path request.
func (m *MapScreen) Close() {
	m.paths.Close()
}

func (m *MapScreen) KeyHints() []layout.KeyHint {
	t := m.deps.T
	if m.paths.State() == fetch.Error {
		return []layout.KeyHint{{Key: "r", Description: t.T("hint.retry")}, {Key: "Tab", Description: t.T("hint.menu")}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("hint.open")},
		{Key: "Tab", Description: t.T("hint.menu")},
	}
}

func (m *MapScreen) View(width, height int) string {
	t := m.deps.T
	cw := components.ContentWidth(width)

	var body string
	switch m.paths.State() {
	case fetch.Loaded:
		if len(m.paths.Value()) == 0 {
			body = theme.Hint.Render(t.T("map.empty"))
		} else {
			body = m.menu.View()
		}
	case fetch.Error:
		body = components.ErrorBanner(api.Message(m.paths.Err()), t.T("hint.retry_banner"))
	default:
		body = components.Loading(m.spinner, t.T("map.loading"))
	}

	header := theme.Subtitle.Render(t.T("map.subtitle"))
	return components.Panel(t.T("map.heading"), header+"\n\n"+body, cw)
}
