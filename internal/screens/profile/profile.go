// Package profile shows the signed-in identity and local progress.
package profile

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// ProfileScreen is the user's page.
type ProfileScreen struct {
	deps     *screen.Deps
	progress *fetch.Loader[store.ResultSummary]
}

var _ screen.Screen = (*ProfileScreen)(nil)

// New creates the profile screen.
func New(d *screen.Deps) *ProfileScreen {
	results := d.Results
	return &ProfileScreen{
		deps: d,
		progress: fetch.New(func(ctx context.Context, userID string) (store.ResultSummary, error) {
			if results == nil {
				return store.ResultSummary{}, nil
			}
			return results.Summary(ctx, userID)
		}, d.LoaderOptions("profile-progress", false)...),
	}
}

func (p *ProfileScreen) Title() string {
	return p.deps.T.T("profile.title")
}

func (p *ProfileScreen) Init() tea.Cmd {
	return p.progress.Ensure(p.deps.UserID())
}

func (p *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if p.progress.Handle(msg) {
		return p, nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "l":
			return p, router.Logout(p.deps.Parent(), p.deps.Session)
		case "r":
			if p.progress.State() == fetch.Error {
				return p, p.progress.Retry()
			}
		}
	}
	return p, nil
}

// Close cancels the progress query.
func (p *ProfileScreen) Close() {
	p.progress.Close()
}

func (p *ProfileScreen) KeyHints() []layout.KeyHint {
	t := p.deps.T
	return []layout.KeyHint{
		{Key: "l", Description: t.T("hint.logout")},
		{Key: "Tab", Description: t.T("hint.menu")},
	}
}

func (p *ProfileScreen) session() auth.Session {
	if p.deps.Session == nil {
		return auth.Session{}
	}
	s, _ := p.deps.Session.Current()
	return s
}

func (p *ProfileScreen) View(width, height int) string {
	t := p.deps.T
	cw := components.ContentWidth(width)
	s := p.session()

	initials := s.Initials()
	if initials == "" {
		initials = "?"
	}
	identity := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(s.Name),
		theme.Body.Render(s.Email),
		theme.Hint.Render(t.T("role."+s.Role)),
	)
	head := lipgloss.JoinHorizontal(lipgloss.Center, components.Avatar(initials), "  ", identity)

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n\n" + theme.Subtitle.Render(t.T("profile.progress")) + "\n")
	switch p.progress.State() {
	case fetch.Loaded:
		sum := p.progress.Value()
		if sum.Attempts == 0 {
			b.WriteString(theme.Hint.Render(t.T("welcome.no_progress")))
			break
		}
		b.WriteString(t.Tf("welcome.progress", map[string]any{"Attempts": sum.Attempts, "Lessons": sum.Lessons}))
		b.WriteString("\n")
		b.WriteString(components.NewProgressBar("", sum.Accuracy(), true, min(cw-4, 40)).View())
		b.WriteString(theme.Hint.Render(fmt.Sprintf(" %d/%d", sum.Correct, sum.Total)))
	case fetch.Error:
		b.WriteString(components.ErrorBanner(p.progress.Err().Error(), t.T("hint.retry_banner")))
	default:
		b.WriteString(theme.Hint.Render(t.T("profile.loading")))
	}
	b.WriteString("\n\n" + components.Button(t.T("profile.logout"), false))
	return components.Panel(t.T("profile.heading"), b.String(), cw)
}
