// Package welcome is the mission-control console shown after sign-in.
package welcome

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// revealTicks is how many ticks the banner takes to draw fully.
	revealTicks = 4
)

type tickMsg struct{}

// WelcomeScreen is the landing console: banner, a short progress summary
// and the entry points into the app.
type WelcomeScreen struct {
	deps     *screen.Deps
	menu     components.Menu
	summary  *fetch.Loader[store.ResultSummary]
	revealed int
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the welcome console.
func New(d *screen.Deps) *WelcomeScreen {
	w := &WelcomeScreen{deps: d}
	w.menu = components.NewMenu([]components.MenuItem{
		{
			Label:  d.T.T("welcome.begin"),
			Detail: d.T.T("welcome.begin_detail"),
			Action: func() tea.Cmd { return router.Navigate(nav.Map, nav.Params{}) },
		},
		{
			Label:  d.T.T("welcome.continue"),
			Detail: d.T.T("welcome.continue_detail"),
			Action: func() tea.Cmd { return router.Navigate(nav.Map, nav.Params{}) },
		},
		{
			Label:  d.T.T("welcome.accessibility"),
			Detail: d.T.T("welcome.accessibility_detail"),
			Action: func() tea.Cmd { return router.Navigate(nav.Accessibility, nav.Params{}) },
		},
	})
	w.summary = fetch.New(func(ctx context.Context, userID string) (store.ResultSummary, error) {
		if d.Results == nil {
			return store.ResultSummary{}, nil
		}
		return d.Results.Summary(ctx, userID)
	}, d.LoaderOptions("welcome-summary", false)...)
	if d.Access().ReducedMotion {
		w.revealed = revealTicks
	}
	return w
}

func (w *WelcomeScreen) Title() string {
	return w.deps.T.T("welcome.title")
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.summary.Ensure(w.deps.UserID()), w.tick())
}

func (w *WelcomeScreen) tick() tea.Cmd {
	if w.revealed >= revealTicks {
		return nil
	}
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if w.summary.Handle(msg) {
		return w, nil
	}
	switch msg := msg.(type) {
	case tickMsg:
		w.revealed++
		return w, w.tick()
	case tea.KeyPressMsg:
		if w.revealed < revealTicks {
			// Any key skips the intro.
			w.revealed = revealTicks
		}
		var cmd tea.Cmd
		w.menu, cmd = w.menu.Update(msg)
		return w, cmd
	}
	return w, nil
}

// Close cancels the summary query.
func (w *WelcomeScreen) Close() {
	w.summary.Close()
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: w.deps.T.T("hint.navigate")},
		{Key: "Enter", Description: w.deps.T.T("hint.select")},
		{Key: "Tab", Description: w.deps.T.T("hint.menu")},
		{Key: ":", Description: w.deps.T.T("hint.command")},
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	t := w.deps.T
	sections := []string{RenderBanner(width, w.revealed)}

	if w.revealed >= revealTicks {
		sections = append(sections,
			theme.Subtitle.Render(t.T("welcome.tagline")),
			"",
			w.progressLine(width),
			"",
			w.menu.View(),
		)
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (w *WelcomeScreen) progressLine(width int) string {
	t := w.deps.T
	if w.summary.State() != fetch.Loaded {
		return theme.Hint.Render(t.T("welcome.no_progress"))
	}
	sum := w.summary.Value()
	if sum.Attempts == 0 {
		return theme.Hint.Render(t.T("welcome.no_progress"))
	}
	label := t.Tf("welcome.progress", map[string]any{
		"Attempts": sum.Attempts,
		"Lessons":  sum.Lessons,
	})
	bar := components.NewProgressBar("", sum.Accuracy(), true, min(width-10, 40)).View()
	return label + "\n" + bar + " " + theme.Hint.Render(fmt.Sprintf("%d/%d", sum.Correct, sum.Total))
}
