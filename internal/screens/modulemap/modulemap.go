// Package modulemap shows one module and its lessons.
package modulemap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// Detail is a module together with its lessons.
type Detail struct {
	Module  api.Module
	Lessons []api.Lesson
}

// Load fetches the module header and its lesson list concurrently. The
// first failure cancels the other request.
func Load(ctx context.Context, c screen.Content, moduleID string) (Detail, error) {
	var d Detail
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.Module(ctx, moduleID)
		if err != nil {
			return err
		}
		if m != nil {
			d.Module = *m
		}
		return nil
	})
	g.Go(func() error {
		lessons, err := c.LessonsByModule(ctx, moduleID)
		if err != nil {
			return err
		}
		sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
		d.Lessons = lessons
		return nil
	})
	if err := g.Wait(); err != nil {
		return Detail{}, err
	}
	if d.Module.ID == "" {
		d.Module.ID = api.ID(moduleID)
	}
	return d, nil
}

// MapScreen lists the lessons of Params.ModuleID.
type MapScreen struct {
	deps     *screen.Deps
	detail   *fetch.Loader[Detail]
	pathID   string
	moduleID string
	menu     components.Menu
	spinner  components.Spinner
}

var _ screen.Screen = (*MapScreen)(nil)

// New creates the module map for p.
func New(d *screen.Deps, p nav.Params) *MapScreen {
	content := d.Content
	return &MapScreen{
		deps:     d,
		pathID:   p.Path(),
		moduleID: p.Module(),
		detail: fetch.New(func(ctx context.Context, moduleID string) (Detail, error) {
			return Load(ctx, content, moduleID)
		}, d.LoaderOptions("module", false)...),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
	}
}

func (m *MapScreen) Title() string {
	return m.deps.T.T("module.title")
}

func (m *MapScreen) Init() tea.Cmd {
	return tea.Batch(m.detail.Ensure(m.moduleID), m.spinner.Tick())
}

// Retarget follows a module change while mounted.
func (m *MapScreen) Retarget(p nav.Params) tea.Cmd {
	m.pathID = p.Path()
	m.moduleID = p.Module()
	return tea.Batch(m.detail.Ensure(m.moduleID), m.spinner.Tick())
}

func (m *MapScreen) params(lessonID string) nav.Params {
	return nav.Params{LessonID: lessonID, ModuleID: m.moduleID, PathID: m.pathID}
}

func (m *MapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m.detail.Handle(msg) {
		if m.detail.State() == fetch.Loaded {
			m.menu = components.NewMenu(m.items(m.detail.Value().Lessons))
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg, m.detail.Loading())
		return m, cmd
	case tea.KeyPressMsg:
		switch m.detail.State() {
		case fetch.Error:
			if msg.String() == "r" {
				return m, tea.Batch(m.detail.Retry(), m.spinner.Tick())
			}
		case fetch.Loaded:
			if msg.String() == "a" {
				return m, router.Navigate(nav.Assessment, m.params(m.selectedLesson()))
			}
			var cmd tea.Cmd
			m.menu, cmd = m.menu.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// selectedLesson is the highlighted lesson, or "" when the module is empty.
func (m *MapScreen) selectedLesson() string {
	lessons := m.detail.Value().Lessons
	if m.menu.Selected < 0 || m.menu.Selected >= len(lessons) {
		return ""
	}
	return string(lessons[m.menu.Selected].ID)
}

func (m *MapScreen) items(lessons []api.Lesson) []components.MenuItem {
	items := make([]components.MenuItem, 0, len(lessons))
	for i, l := range lessons {
		p := m.params(string(l.ID))
		mark := "○"
		if l.Completed {
			mark = theme.Correct.Render("●")
		}
		label := fmt.Sprintf("%s %d. %s", mark, i+1, l.Title)
		badge := ""
		if l.Minutes > 0 {
			badge = m.deps.T.Tf("module.minutes", map[string]any{"Minutes": l.Minutes})
		}
		items = append(items, components.MenuItem{
			Label:  label,
			Badge:  badge,
			Action: func() tea.Cmd { return router.Navigate(nav.Lesson, p) },
		})
	}
	return items
}

// Close cancels both requests.
func (m *MapScreen) Close() {
	m.detail.Close()
}

func (m *MapScreen) KeyHints() []layout.KeyHint {
	t := m.deps.T
	hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.back")}}
	if m.detail.State() == fetch.Error {
		return append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: t.T("hint.open")},
		layout.KeyHint{Key: "a", Description: t.T("hint.assessment")})
}

func (m *MapScreen) View(width, height int) string {
	t := m.deps.T
	cw := components.ContentWidth(width)

	switch m.detail.State() {
	case fetch.Loaded:
		d := m.detail.Value()
		var b strings.Builder
		if d.Module.Description != "" {
			b.WriteString(theme.Subtitle.Render(d.Module.Description))
			b.WriteString("\n\n")
		}
		done := 0
		for _, l := range d.Lessons {
			if l.Completed {
				done++
			}
		}
		if len(d.Lessons) > 0 {
			pct := float64(done) / float64(len(d.Lessons))
			b.WriteString(components.NewProgressBar(t.T("module.progress"), pct, true, min(cw-4, 40)).View())
			b.WriteString("\n\n")
			b.WriteString(m.menu.View())
		} else {
			b.WriteString(theme.Hint.Render(t.T("module.empty")))
		}
		title := d.Module.Title
		if title == "" {
			title = string(d.Module.ID)
		}
		return components.Panel(title, b.String(), cw)
	case fetch.Error:
		return components.Panel(t.T("module.title"),
			components.ErrorBanner(api.Message(m.detail.Err()), t.T("hint.retry_banner")), cw)
	}
	return components.Panel(t.T("module.title"), components.Loading(m.spinner, t.T("module.loading")), cw)
}
