package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/screen/screentest"
)

func newForm(gw auth.Gateway) (*FormScreen, *screen.Deps) {
	d := screentest.Deps(nil)
	d.Session = auth.NewStore(gw, nil, nil)
	f := New(d)
	f.Init()
	return f, d
}

// fill types values into the text inputs in order and leaves focus on the
// role selector.
func fill(f *FormScreen, values ...string) {
	for _, v := range values {
		screentest.Type(f, v)
		f.Update(screentest.Key("tab"))
	}
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	gw := &screentest.Gateway{}
	f, d := newForm(gw)
	fill(f, "Ana", "ana@x.io", "secret", "secret")
	require.Equal(t, fieldRole, f.focus)

	_, out := screentest.Send(f, screentest.Key("enter"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{Screen: nav.Welcome}, out[0])

	reqs := gw.Registers()
	require.Len(t, reqs, 1)
	assert.Equal(t, auth.RoleStudent, reqs[0].Role)
	sess, ok := d.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "Ana", sess.Name)
}

func TestRoleSelector(t *testing.T) {
	gw := &screentest.Gateway{}
	f, _ := newForm(gw)
	fill(f, "Profe", "p@x.io", "secret", "secret")
	f.Update(screentest.Key("right"))
	assert.Equal(t, auth.RoleTeacher, f.Role())

	screentest.Send(f, screentest.Key("enter"))
	require.Len(t, gw.Registers(), 1)
	assert.Equal(t, auth.RoleTeacher, gw.Registers()[0].Role)
}

func TestValidationFocusesField(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		field  int
		msg    string
	}{
		{"missing name", []string{"", "a@x.io", "secret", "secret"}, fieldName, "El nombre es requerido"},
		{"bad email", []string{"Ana", "ana", "secret", "secret"}, fieldEmail, "Email inválido"},
		{"short secret", []string{"Ana", "a@x.io", "123", "123"}, fieldSecret, "La contraseña debe tener al menos 6 caracteres"},
		{"mismatch", []string{"Ana", "a@x.io", "secret", "secreto"}, fieldConfirm, "Las contraseñas no coinciden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &screentest.Gateway{}
			f, d := newForm(gw)
			fill(f, tt.values...)
			_, out := screentest.Send(f, screentest.Key("enter"))
			assert.Empty(t, out)
			assert.Empty(t, gw.Registers(), "validation never reaches the gateway")
			assert.False(t, d.Session.IsAuthenticated())
			assert.Equal(t, tt.field, f.focus)
			assert.Equal(t, tt.msg, f.errMsg)
		})
	}
}

func TestDuplicateEmailShowsGatewayMessage(t *testing.T) {
	gw := &screentest.Gateway{Accounts: map[string]string{"ana@x.io": "x"}}
	f, _ := newForm(gw)
	fill(f, "Ana", "ana@x.io", "secret", "secret")
	screentest.Send(f, screentest.Key("enter"))
	assert.Equal(t, "El email ya está registrado", f.errMsg)
}

func TestLoginShortcut(t *testing.T) {
	f, _ := newForm(&screentest.Gateway{})
	_, out := screentest.Send(f, screentest.Key("ctrl+l"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{Screen: nav.Login}, out[0])
}
