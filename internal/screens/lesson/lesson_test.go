package lesson

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/screen/screentest"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

func lessonContent() *screentest.Content {
	return &screentest.Content{
		LessonFn: func(_ context.Context, id string) (*api.Lesson, error) {
			return &api.Lesson{ID: api.ID(id), Title: "Perceptrón", Content: "El perceptrón separa dos clases.", Minutes: 10}, nil
		},
		ExplainFn: func(_ context.Context, req api.ExplainRequest) (string, error) {
			return "Sencillo: " + req.LessonID, nil
		},
	}
}

func open(t *testing.T, content *screentest.Content, p nav.Params) (*ViewerScreen, *screen.Deps) {
	t.Helper()
	t.Cleanup(func() { theme.Apply(theme.Space) })
	d := screentest.Deps(content)
	v := New(d, p)
	screentest.Pump(v, v.Init())
	require.Equal(t, fetch.Loaded, v.lesson.State())
	return v, d
}

func TestLoadsDefaultLesson(t *testing.T) {
	content := lessonContent()
	v, _ := open(t, content, nav.Params{})
	assert.Equal(t, []string{nav.DefaultLessonID}, content.Calls("Lesson"))
	assert.Contains(t, v.View(100, 40), "Perceptrón")
}

func TestExplainSendsLessonContext(t *testing.T) {
	var got api.ExplainRequest
	content := lessonContent()
	content.ExplainFn = func(_ context.Context, req api.ExplainRequest) (string, error) {
		got = req
		return "Sencillo", nil
	}
	v, _ := open(t, content, nav.Params{LessonID: "perceptron"})

	screentest.Send(v, screentest.Key("e"))
	assert.Equal(t, fetch.Loaded, v.explain.State())
	assert.Equal(t, "perceptron", got.LessonID)
	assert.Equal(t, explainPrompt, got.Question)
	assert.Contains(t, got.Context, "separa dos clases")
	assert.Contains(t, v.View(100, 60), "Sencillo")

	// A second press reuses the loaded explanation.
	screentest.Send(v, screentest.Key("e"))
	assert.Len(t, content.Calls("Explain"), 1)
}

func TestAssessmentKeepsAllIDs(t *testing.T) {
	v, _ := open(t, lessonContent(), nav.Params{PathID: "p", ModuleID: "m", LessonID: "l"})
	_, out := screentest.Send(v, screentest.Key("a"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{
		Screen: nav.Assessment,
		Params: nav.Params{PathID: "p", ModuleID: "m", LessonID: "l"},
	}, out[0])
}

func TestReadingToggles(t *testing.T) {
	v, d := open(t, lessonContent(), nav.Params{})

	screentest.Send(v, screentest.Key("+"))
	assert.True(t, d.A11y.LargeText)

	screentest.Send(v, screentest.Key("c"))
	assert.True(t, d.A11y.HighContrast)
	assert.Equal(t, theme.HighContrast.Name, theme.Active().Name)

	screentest.Send(v, screentest.Key("c"))
	assert.False(t, d.A11y.HighContrast)
}

func stubSpeech(t *testing.T) *[]string {
	t.Helper()
	var spoken []string
	orig := speak
	speak = func(_ context.Context, text, _ string) error {
		spoken = append(spoken, text)
		return nil
	}
	t.Cleanup(func() { speak = orig })
	return &spoken
}

func TestSpeakKey(t *testing.T) {
	spoken := stubSpeech(t)
	v, _ := open(t, lessonContent(), nav.Params{})
	assert.Empty(t, *spoken, "narration is off by default")

	screentest.Send(v, screentest.Key("s"))
	require.Len(t, *spoken, 1)
	assert.Contains(t, (*spoken)[0], "Perceptrón")
	assert.False(t, v.speaking)
}

func TestTextToSpeechNarratesOnLoad(t *testing.T) {
	spoken := stubSpeech(t)
	d := screentest.Deps(lessonContent())
	d.A11y.TextToSpeech = true
	v := New(d, nav.Params{})
	screentest.Pump(v, v.Init())
	require.Len(t, *spoken, 1)
}

func TestMissingSynthesizerStatus(t *testing.T) {
	orig := speak
	speak = func(context.Context, string, string) error { return a11y.ErrNoSpeech }
	t.Cleanup(func() { speak = orig })

	v, _ := open(t, lessonContent(), nav.Params{})
	screentest.Send(v, screentest.Key("s"))
	assert.Equal(t, "lesson.tts_missing", v.status)
}

func TestRetargetDropsExplanation(t *testing.T) {
	content := lessonContent()
	v, _ := open(t, content, nav.Params{LessonID: "a"})
	screentest.Send(v, screentest.Key("e"))
	require.Equal(t, fetch.Loaded, v.explain.State())

	screentest.Pump(v, v.Retarget(nav.Params{LessonID: "b"}))
	assert.Equal(t, fetch.Idle, v.explain.State())
	assert.Equal(t, []string{"a", "b"}, content.Calls("Lesson"))
}

func TestRetargetRestartsNarration(t *testing.T) {
	spoken := stubSpeech(t)
	v, d := open(t, lessonContent(), nav.Params{LessonID: "a"})

	// Narration of "a" is in flight when the lesson changes.
	stale := v.speak()
	require.True(t, v.speaking)
	d.A11y.TextToSpeech = true

	screentest.Pump(v, v.Retarget(nav.Params{LessonID: "b"}))
	require.Len(t, *spoken, 1, "the new lesson narrates on load")
	assert.False(t, v.speaking)

	// A newer narration survives the late result of the old one.
	require.NotNil(t, v.speak())
	screentest.Send(v, stale())
	assert.True(t, v.speaking)
	assert.Equal(t, "lesson.speaking", v.status)
}

func TestSpeakKeyStops(t *testing.T) {
	stubSpeech(t)
	v, _ := open(t, lessonContent(), nav.Params{})
	cmd := v.speak()
	require.NotNil(t, cmd)

	screentest.Send(v, screentest.Key("s"))
	assert.False(t, v.speaking)
	assert.Empty(t, v.status)

	screentest.Send(v, cmd())
	assert.False(t, v.speaking)
}

func TestLessonErrorRetry(t *testing.T) {
	content := lessonContent()
	ok := content.LessonFn
	content.LessonFn = func(context.Context, string) (*api.Lesson, error) {
		return nil, &api.FetchError{Op: "lesson", Err: &api.StatusError{Code: 404, Message: "Lección no encontrada"}}
	}
	d := screentest.Deps(content)
	v := New(d, nav.Params{})
	screentest.Pump(v, v.Init())
	require.Equal(t, fetch.Error, v.lesson.State())
	assert.Contains(t, v.View(100, 30), "Lección no encontrada")

	content.LessonFn = ok
	screentest.Send(v, screentest.Key("r"))
	assert.Equal(t, fetch.Loaded, v.lesson.State())
}
