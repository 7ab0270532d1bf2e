package a11y

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

type memSettings map[string]string

func (m memSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSettings) Put(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

var _ store.SettingsRepo = memSettings{}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(context.Background(), memSettings{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
	assert.True(t, s.DarkMode)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := memSettings{}
	want := Defaults().Flip(HighContrast).Flip(ReducedMotion)
	require.NoError(t, Save(context.Background(), repo, want))
	assert.JSONEq(t, `{"highContrast":true,"dyslexiaFont":false,"textToSpeech":false,"largeText":false,"reducedMotion":true,"darkMode":true}`, repo[Key])

	got, err := Load(context.Background(), repo, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadMergesPartialBlob(t *testing.T) {
	repo := memSettings{Key: `{"largeText":true}`}
	got, err := Load(context.Background(), repo, nil)
	require.NoError(t, err)
	assert.True(t, got.LargeText)
	assert.True(t, got.DarkMode, "missing keys keep their defaults")
}

func TestLoadCorruptBlob(t *testing.T) {
	got, err := Load(context.Background(), memSettings{Key: "{nope"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestFlipEveryToggle(t *testing.T) {
	for _, tg := range Toggles {
		s := Defaults()
		before := s.Get(tg)
		assert.Equal(t, !before, s.Flip(tg).Get(tg), tg.ID())
		assert.Equal(t, before, s.Get(tg), "Flip must not mutate the receiver")
	}
}

func TestApplyPicksPalette(t *testing.T) {
	t.Cleanup(func() { theme.Apply(theme.Space) })

	Apply(Settings{HighContrast: true})
	assert.Equal(t, "high-contrast", theme.Active().Name)
	Apply(Settings{DarkMode: false})
	assert.Equal(t, "daylight", theme.Active().Name)
	Apply(Defaults())
	assert.Equal(t, "space", theme.Active().Name)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "a\nb", Settings{}.Format("a\nb"))
	assert.Equal(t, "a\n\nb", Settings{DyslexiaFont: true}.Format("a\nb"))
	assert.Equal(t, 60, Settings{LargeText: true}.WrapWidth(80))
	assert.Equal(t, 80, Settings{}.WrapWidth(80))
}

func TestSpeakWithoutSynthesizer(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", errors.New("missing") }

	err := Speak(context.Background(), "# Hola", "es")
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.NoError(t, Speak(context.Background(), "  **  ", "es"), "nothing to say is not an error")
}
