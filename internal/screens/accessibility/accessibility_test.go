package accessibility

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/screen/screentest"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

type memSettings struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memSettings) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memSettings) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func TestToggleAppliesAndPersists(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Space) })
	repo := &memSettings{}
	d := screentest.Deps(nil)
	d.Settings = repo
	s := New(d)

	// HighContrast is the first toggle.
	screentest.Send(s, screentest.Key("space"))
	assert.True(t, d.A11y.HighContrast)
	assert.Equal(t, theme.HighContrast.Name, theme.Active().Name)

	raw, ok, err := repo.Get(context.Background(), a11y.Key)
	require.NoError(t, err)
	require.True(t, ok)
	var saved a11y.Settings
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.True(t, saved.HighContrast)
	assert.True(t, saved.ReducedMotion, "other settings are kept")
}

func TestEveryToggleReachable(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Space) })
	d := screentest.Deps(nil)
	s := New(d)
	before := d.Access()
	for range a11y.Toggles {
		screentest.Send(s, screentest.Key("enter"))
		screentest.Send(s, screentest.Key("down"))
	}
	after := d.Access()
	for _, tg := range a11y.Toggles {
		assert.NotEqual(t, before.Get(tg), after.Get(tg), tg.ID())
	}
}

func TestDefaultsKey(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Space) })
	d := screentest.Deps(nil)
	s := New(d)
	screentest.Send(s, screentest.Key("d"))
	assert.Equal(t, a11y.Defaults(), d.Access())
	assert.Contains(t, s.View(100, 40), "[x] a11y.dark_mode")
}
