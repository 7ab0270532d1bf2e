package pathoverview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/screen/screentest"
)

func modulesContent() *screentest.Content {
	return &screentest.Content{ModulesFn: func(_ context.Context, pathID string) ([]api.Module, error) {
		return []api.Module{
			{ID: api.ID(pathID + "-c"), Title: "Tercero", Order: 3},
			{ID: api.ID(pathID + "-a"), Title: "Primero", Order: 1},
			{ID: api.ID(pathID + "-b"), Title: "Segundo", Order: 2},
		}, nil
	}}
}

func TestSortModules(t *testing.T) {
	mods := []api.Module{{ID: "x", Order: 2}, {ID: "y", Order: 1}, {ID: "z", Order: 2}}
	SortModules(mods)
	assert.Equal(t, []api.ID{"y", "x", "z"}, []api.ID{mods[0].ID, mods[1].ID, mods[2].ID})
}

func TestDefaultsToFallbackPath(t *testing.T) {
	content := modulesContent()
	o := New(screentest.Deps(content), nav.Params{})
	screentest.Pump(o, o.Init())
	assert.Equal(t, []string{nav.DefaultPathID}, content.Calls("ModulesByPath"))
}

func TestOpenModulePassesModuleAndPath(t *testing.T) {
	content := modulesContent()
	o := New(screentest.Deps(content), nav.Params{PathID: "2"})
	s, _ := screentest.Pump(o, o.Init())
	require.Len(t, content.Calls("ModulesByPath"), 1)

	// First item is the lowest "orden".
	_, out := screentest.Send(s, screentest.Key("enter"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{
		Screen: nav.ModuleMap,
		Params: nav.Params{ModuleID: "2-a", PathID: "2"},
	}, out[0])
}

func TestRetargetLoadsNewPath(t *testing.T) {
	content := modulesContent()
	o := New(screentest.Deps(content), nav.Params{PathID: "1"})
	var s screen.Screen = o
	s, _ = screentest.Pump(s, o.Init())

	s, _ = screentest.Pump(s, o.Retarget(nav.Params{PathID: "2"}))
	assert.Equal(t, []string{"1", "2"}, content.Calls("ModulesByPath"))
	assert.Contains(t, s.View(100, 30), "path.heading")

	// Same path again is a no-op.
	screentest.Pump(s, o.Retarget(nav.Params{PathID: "2"}))
	assert.Len(t, content.Calls("ModulesByPath"), 2)
}

func TestStaleResultNeverOverwritesNewerPath(t *testing.T) {
	content := modulesContent()
	o := New(screentest.Deps(content), nav.Params{PathID: "old"})
	oldCmd := o.Init()
	newCmd := o.Retarget(nav.Params{PathID: "new"})

	// The new result lands first, then the stale one.
	s, _ := screentest.Pump(o, newCmd)
	s, _ = screentest.Pump(s, oldCmd)

	mods := s.(*OverviewScreen).modules.Value()
	require.NotEmpty(t, mods)
	assert.Equal(t, api.ID("new-a"), mods[0].ID)
}
