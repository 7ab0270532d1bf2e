// Package register is the account creation form.
package register

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
	fieldName = iota
	fieldEmail
	fieldSecret
	fieldConfirm
	inputCount

	// fieldRole is the role selector after the text inputs.
	fieldRole  = inputCount
	focusCount = inputCount + 1
)

// Roles lists the selectable roles; the first is the default.
var Roles = []string{auth.RoleStudent, auth.RoleTeacher}

var fieldIndex = map[string]int{
	"name":     fieldName,
	"email":    fieldEmail,
	"password": fieldSecret,
	"confirm":  fieldConfirm,
	"role":     fieldRole,
}

type resultMsg struct {
	err error
}

// FormScreen collects the new account and registers it.
type FormScreen struct {
	deps   *screen.Deps
	inputs [inputCount]components.TextInput
	role   int
	focus  int
	busy   bool
	errMsg string
	cancel context.CancelFunc
}

var (
	_ screen.Screen        = (*FormScreen)(nil)
	_ screen.InputCapturer = (*FormScreen)(nil)
)

// New creates the register form.
func New(d *screen.Deps) *FormScreen {
	t := d.T
	f := &FormScreen{deps: d}
	f.inputs[fieldName] = components.NewTextInput(t.T("register.name"), "Ada Lovelace", 80)
	f.inputs[fieldEmail] = components.NewTextInput(t.T("register.email"), "ada@example.com", 254)
	f.inputs[fieldSecret] = components.NewSecretInput(t.T("register.password"), "")
	f.inputs[fieldConfirm] = components.NewSecretInput(t.T("register.confirm"), "")
	return f
}

func (f *FormScreen) Title() string {
	return f.deps.T.T("register.title")
}

func (f *FormScreen) Init() tea.Cmd {
	return f.inputs[fieldName].Focus()
}

func (f *FormScreen) CapturesInput() bool { return true }

// Role returns the selected role.
func (f *FormScreen) Role() string {
	return Roles[f.role]
}

func (f *FormScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		f.busy = false
		f.cancel = nil
		if msg.err != nil {
			return f, f.fail(msg.err)
		}
		return f, router.Navigate(nav.Welcome, nav.Params{})
	case tea.KeyPressMsg:
		if f.busy {
			return f, nil
		}
		switch msg.String() {
		case "ctrl+l":
			return f, router.Navigate(nav.Login, nav.Params{})
		case "tab", "down":
			return f, f.setFocus((f.focus + 1) % focusCount)
		case "shift+tab", "up":
			return f, f.setFocus((f.focus + focusCount - 1) % focusCount)
		case "enter":
			if f.focus < fieldRole {
				return f, f.setFocus(f.focus + 1)
			}
			return f, f.submit()
		}
		if f.focus == fieldRole {
			switch msg.String() {
			case "left", "h":
				f.role = (f.role + len(Roles) - 1) % len(Roles)
			case "right", "l", "space":
				f.role = (f.role + 1) % len(Roles)
			}
			return f, nil
		}
	}

	if f.focus == fieldRole {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f *FormScreen) setFocus(i int) tea.Cmd {
	if f.focus < inputCount {
		f.inputs[f.focus].Blur()
	}
	f.focus = i
	if i < inputCount {
		return f.inputs[i].Focus()
	}
	return nil
}

func (f *FormScreen) fail(err error) tea.Cmd {
	var ve *auth.ValidationError
	var ae *auth.AuthError
	switch {
	case errors.As(err, &ve):
		f.errMsg = ve.Message
		if i, ok := fieldIndex[ve.Field]; ok {
			return f.setFocus(i)
		}
	case errors.As(err, &ae):
		f.errMsg = ae.Reason
	default:
		f.errMsg = err.Error()
	}
	return nil
}

func (f *FormScreen) submit() tea.Cmd {
	f.errMsg = ""
	f.busy = true
	ctx, cancel := context.WithCancel(f.deps.Parent())
	f.cancel = cancel
	session := f.deps.Session
	in := auth.RegisterInput{
		Name:    f.inputs[fieldName].Value(),
		Email:   f.inputs[fieldEmail].Value(),
		Secret:  f.inputs[fieldSecret].Value(),
		Confirm: f.inputs[fieldConfirm].Value(),
		Role:    f.Role(),
	}
	return func() tea.Msg {
		defer cancel()
		_, err := session.Register(ctx, in)
		return resultMsg{err: err}
	}
}

// Close abandons a registration in flight.
func (f *FormScreen) Close() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *FormScreen) KeyHints() []layout.KeyHint {
	t := f.deps.T
	hints := []layout.KeyHint{{Key: "Tab", Description: t.T("hint.next_field")}}
	if f.focus == fieldRole {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: t.T("hint.role")})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: t.T("hint.create_account")},
		layout.KeyHint{Key: "Ctrl+L", Description: t.T("hint.sign_in")})
}

func (f *FormScreen) View(width, height int) string {
	t := f.deps.T
	cw := min(components.ContentWidth(width), 60)

	var b strings.Builder
	for i := range f.inputs {
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n\n")
	}

	label := theme.Subtitle.Render(t.T("register.role"))
	if f.focus == fieldRole {
		label = theme.Selected.Render(t.T("register.role"))
	}
	b.WriteString(label + "\n")
	for i, r := range Roles {
		b.WriteString(components.Button(t.T("role."+r), i == f.role))
		b.WriteString(" ")
	}
	b.WriteString("\n\n")

	switch {
	case f.busy:
		b.WriteString(theme.Hint.Render(t.T("register.busy")))
	case f.errMsg != "":
		b.WriteString(theme.Banner.Render(f.errMsg))
	}
	b.WriteString("\n" + theme.Hint.Render(t.T("register.have_account")))
	return components.Panel(t.T("register.heading"), b.String(), cw)
}
