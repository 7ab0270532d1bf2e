// Package login is the sign-in form.
package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

const (
	fieldEmail = iota
	fieldSecret
	fieldCount
)

type resultMsg struct {
	err error
}

// FormScreen collects credentials and hands them to the session store.
type FormScreen struct {
	deps   *screen.Deps
	fields [fieldCount]components.TextInput
	focus  int
	busy   bool
	errMsg string
	cancel context.CancelFunc
}

var (
	_ screen.Screen        = (*FormScreen)(nil)
	_ screen.InputCapturer = (*FormScreen)(nil)
)

// New creates the login form.
func New(d *screen.Deps) *FormScreen {
	f := &FormScreen{deps: d}
	f.fields[fieldEmail] = components.NewTextInput(d.T.T("login.email"), "demo@test.com", 254)
	f.fields[fieldSecret] = components.NewSecretInput(d.T.T("login.password"), "••••••")
	return f
}

func (f *FormScreen) Title() string {
	return f.deps.T.T("login.title")
}

func (f *FormScreen) Init() tea.Cmd {
	return f.fields[f.focus].Focus()
}

// CapturesInput is always true: every printable key belongs to a field.
func (f *FormScreen) CapturesInput() bool { return true }

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		f.busy = false
		f.cancel = nil
		if msg.err != nil {
			f.errMsg = reason(msg.err)
			f.fields[fieldSecret].Reset()
			return f, f.setFocus(fieldSecret)
		}
		return f, router.Navigate(nav.Welcome, nav.Params{})
	case tea.KeyPressMsg:
		if f.busy {
			return f, nil
		}
		switch msg.String() {
		case "ctrl+r":
			return f, router.Navigate(nav.Register, nav.Params{})
		case "tab", "down":
			return f, f.setFocus((f.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if f.focus < fieldCount-1 {
				return f, f.setFocus(f.focus + 1)
			}
			return f, f.submit()
		}
	}

	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return f, cmd
}

func (f *FormScreen) setFocus(i int) tea.Cmd {
	f.fields[f.focus].Blur()
	f.focus = i
	return f.fields[i].Focus()
}

func (f *FormScreen) submit() tea.Cmd {
	f.errMsg = ""
	f.busy = true
	ctx, cancel := context.WithCancel(f.deps.Parent())
	f.cancel = cancel
	session := f.deps.Session
	email, secret := f.fields[fieldEmail].Value(), f.fields[fieldSecret].Value()
	return func() tea.Msg {
		defer cancel()
		_, err := session.Login(ctx, email, secret)
		return resultMsg{err: err}
	}
}

// Close abandons a login in flight.
func (f *FormScreen) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

func reason(err error) string {
	var ve *auth.ValidationError
	var ae *auth.AuthError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ae):
		return ae.Reason
	}
	return err.Error()
}

func (f *FormScreen) KeyHints() []layout.KeyHint {
	t := f.deps.T
	return []layout.KeyHint{
		{Key: "Tab", Description: t.T("hint.next_field")},
		{Key: "Enter", Description: t.T("hint.sign_in")},
		{Key: "Ctrl+R", Description: t.T("hint.register")},
		{Key: "Ctrl+C", Description: t.T("hint.quit")},
	}
}

func (f *FormScreen) View(width, height int) string {
	t := f.deps.T
	cw := min(components.ContentWidth(width), 60)

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(t.T("login.subtitle")))
	b.WriteString("\n\n")
	for i := range f.fields {
		b.WriteString(f.fields[i].View())
		b.WriteString("\n\n")
	}
	switch {
	case f.busy:
		b.WriteString(theme.Hint.Render(t.T("login.busy")))
	case f.errMsg != "":
		b.WriteString(theme.Banner.Render(f.errMsg))
	default:
		b.WriteString(components.Button(t.T("login.submit"), f.focus == fieldSecret))
	}
	b.WriteString("\n\n" + theme.Hint.Render(t.T("login.demo")))
	b.WriteString("\n" + theme.Hint.Render(t.T("login.no_account")))
	return components.Panel(t.T("login.heading"), b.String(), cw)
}
