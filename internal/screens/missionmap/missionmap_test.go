package missionmap

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen/screentest"
)

func TestSelectPathPassesPathID(t *testing.T) {
	content := &screentest.Content{PathsFn: func(context.Context) ([]api.Path, error) {
		return []api.Path{{ID: "1", Title: "IA"}, {ID: "2", Title: "Datos", ModuleCount: 2}}, nil
	}}
	m := New(screentest.Deps(content))
	s, _ := screentest.Pump(m, m.Init())
	require.Len(t, content.Calls("Paths"), 1)
	assert.Contains(t, s.View(100, 30), "Datos")

	s, _ = screentest.Send(s, screentest.Key("down"))
	_, out := screentest.Send(s, screentest.Key("enter"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{Screen: nav.PathOverview, Params: nav.Params{PathID: "2"}}, out[0])
}

func TestErrorThenRetry(t *testing.T) {
	fail := true
	content := &screentest.Content{PathsFn: func(context.Context) ([]api.Path, error) {
		if fail {
			return nil, &api.StatusError{Code: 500, Message: "caído"}
		}
		return []api.Path{{ID: "1", Title: "IA"}}, nil
	}}
	m := New(screentest.Deps(content))
	s, _ := screentest.Pump(m, m.Init())
	assert.Contains(t, s.View(100, 30), "caído")

	// Keys other than retry do nothing in the error state.
	s, out := screentest.Send(s, screentest.Key("enter"))
	assert.Empty(t, out)

	fail = false
	s, _ = screentest.Send(s, screentest.Key("r"))
	assert.Len(t, content.Calls("Paths"), 2)
	assert.True(t, strings.Contains(s.View(100, 30), "IA"))
}

func TestCloseDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	content := &screentest.Content{PathsFn: func(ctx context.Context) ([]api.Path, error) {
		<-release
		return []api.Path{{ID: "1", Title: "tarde"}}, nil
	}}
	m := New(screentest.Deps(content))
	cmd := m.Init()
	m.Close()
	close(release)
	screentest.Pump(m, cmd)

	require.Len(t, content.Calls("Paths"), 1, "the request ran")
	assert.NotContains(t, m.View(100, 30), "tarde")
	assert.False(t, m.paths.Loading())
}

func TestEmptyCatalog(t *testing.T) {
	content := &screentest.Content{PathsFn: func(context.Context) ([]api.Path, error) { return nil, nil }}
	m := New(screentest.Deps(content))
	s, _ := screentest.Pump(m, m.Init())
	assert.Contains(t, s.View(100, 30), "map.empty")
}
