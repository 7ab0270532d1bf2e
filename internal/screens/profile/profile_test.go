package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen/screentest"
	"github.com/abhisek/learninghub/internal/store"
)

func TestProfileShowsIdentityAndProgress(t *testing.T) {
	d := screentest.Deps(nil)
	d.Session = auth.NewStore(screentest.DemoGateway(), nil, nil)
	_, err := d.Session.Login(context.Background(), "demo@test.com", "demo123")
	require.NoError(t, err)

	results := &screentest.Results{}
	require.NoError(t, results.Append(context.Background(), store.AssessmentResult{
		UserID: d.UserID(), LessonID: "l", Correct: 3, Total: 4,
	}))
	d.Results = results

	p := New(d)
	screentest.Pump(p, p.Init())
	view := p.View(100, 40)
	assert.Contains(t, view, "DA")
	assert.Contains(t, view, "demo@test.com")
	assert.Contains(t, view, "3/4")
}

func TestLogoutKey(t *testing.T) {
	d := screentest.Deps(nil)
	d.Session = auth.NewStore(screentest.DemoGateway(), nil, nil)
	_, err := d.Session.Login(context.Background(), "demo@test.com", "demo123")
	require.NoError(t, err)

	p := New(d)
	_, out := screentest.Send(p, screentest.Key("l"))
	require.Len(t, out, 1)
	assert.Equal(t, router.ResetMsg{}, out[0])
	assert.False(t, d.Session.IsAuthenticated())
}
