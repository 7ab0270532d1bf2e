// Package pathoverview lists the modules of one learning path in course
// order.
package pathoverview

import (
	"context"
	"fmt"
	"sort"
	"strings"

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

// OverviewScreen shows the modules of the path in Params.PathID.
type OverviewScreen struct {
	deps    *screen.Deps
	modules *fetch.Loader[[]api.Module]
	pathID  string
	menu    components.Menu
	spinner components.Spinner
}

var _ screen.Screen = (*OverviewScreen)(nil)

// New creates the overview for p.Path().
func New(d *screen.Deps, p nav.Params) *OverviewScreen {
	return &OverviewScreen{
		deps:    d,
		pathID:  p.Path(),
		modules: fetch.New(loadModules(d.Content), d.LoaderOptions("modules", false)...),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
	}
}

func loadModules(c screen.Content) fetch.Func[[]api.Module] {
	return func(ctx context.Context, pathID string) ([]api.Module, error) {
		mods, err := c.ModulesByPath(ctx, pathID)
		if err != nil {
			return nil, err
		}
		SortModules(mods)
		return mods, nil
	}
}

// SortModules orders modules by their "orden" field, keeping the gateway
// order for ties.
func SortModules(mods []api.Module) {
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
}

func (o *OverviewScreen) Title() string {
	return o.deps.T.T("path.title")
}

func (o *OverviewScreen) Init() tea.Cmd {
	return tea.Batch(o.modules.Ensure(o.pathID), o.spinner.Tick())
}

// Retarget switches to another path while mounted.
func (o *OverviewScreen) Retarget(p nav.Params) tea.Cmd {
	o.pathID = p.Path()
	return tea.Batch(o.modules.Ensure(o.pathID), o.spinner.Tick())
}

func (o *OverviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if o.modules.Handle(msg) {
		if o.modules.State() == fetch.Loaded {
			o.menu = components.NewMenu(o.items(o.modules.Value()))
		}
		return o, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(msg, o.modules.Loading())
		return o, cmd
	case tea.KeyPressMsg:
		switch o.modules.State() {
		case fetch.Error:
			if msg.String() == "r" {
				return o, tea.Batch(o.modules.Retry(), o.spinner.Tick())
			}
		case fetch.Loaded:
			var cmd tea.Cmd
			o.menu, cmd = o.menu.Update(msg)
			return o, cmd
		}
	}
	return o, nil
}

func (o *OverviewScreen) items(mods []api.Module) []components.MenuItem {
	items := make([]components.MenuItem, 0, len(mods))
	pathID := o.pathID
	for i, m := range mods {
		moduleID := string(m.ID)
		badge := ""
		if m.Progress > 0 {
			badge = fmt.Sprintf("%d%%", m.Progress)
		}
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%02d  %s", i+1, m.Title),
			Detail: m.Description,
			Badge:  badge,
			Action: func() tea.Cmd {
				return router.Navigate(nav.ModuleMap, nav.Params{ModuleID: moduleID, PathID: pathID})
			},
		})
	}
	return items
}

// Close cancels the module request.
func (o *OverviewScreen) Close() {
	o.modules.Close()
}

func (o *OverviewScreen) KeyHints() []layout.KeyHint {
	t := o.deps.T
	hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.back")}}
	if o.modules.State() == fetch.Error {
		return append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
	}
	return append(hints,
		layout.KeyHint{Key: "↑↓", Description: t.T("hint.navigate")},
		layout.KeyHint{Key: "Enter", Description: t.T("hint.open")})
}

func (o *OverviewScreen) View(width, height int) string {
	t := o.deps.T
	cw := components.ContentWidth(width)

	var body string
	switch o.modules.State() {
	case fetch.Loaded:
		mods := o.modules.Value()
		if len(mods) == 0 {
			body = theme.Hint.Render(t.T("path.empty"))
			break
		}
		var b strings.Builder
		b.WriteString(theme.Subtitle.Render(t.Tf("path.summary", map[string]any{"Count": len(mods)})))
		b.WriteString("\n\n")
		b.WriteString(o.menu.View())
		body = b.String()
	case fetch.Error:
		body = components.ErrorBanner(api.Message(o.modules.Err()), t.T("hint.retry_banner"))
	default:
		body = components.Loading(o.spinner, t.T("path.loading"))
	}
	return components.Panel(t.Tf("path.heading", map[string]any{"Path": o.pathID}), body, cw)
}
