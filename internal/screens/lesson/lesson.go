// Package lesson renders a lesson body and its reading aids.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// explainPrompt is sent as the question for "explain simply".
const explainPrompt = "Explica esta lección de forma sencilla"

// contextLimit caps the lesson text sent along with an explanation request.
const contextLimit = 2000

var speak = a11y.Speak

// speechDoneMsg ends narration number gen.
type speechDoneMsg struct {
	gen int
	err error
}

// ViewerScreen shows Params.LessonID.
type ViewerScreen struct {
	deps    *screen.Deps
	log     *zap.Logger
	ids     nav.Params
	lesson  *fetch.Loader[*api.Lesson]
	explain *fetch.Loader[string]
	spinner components.Spinner

	// lessonText is read by explanation requests off the update loop.
	lessonText *atomic.String

	offset int
	status string

	speaking   bool
	speechGen  int
	stopSpeech context.CancelFunc

	cache struct {
		key   string
		lines []string
	}
}

var _ screen.Screen = (*ViewerScreen)(nil)

// New creates a viewer for p.Lesson().
func New(d *screen.Deps, p nav.Params) *ViewerScreen {
	v := &ViewerScreen{
		deps:       d,
		log:        d.Log("lesson"),
		ids:        resolve(p),
		spinner:    components.NewSpinner(d.Access().ReducedMotion),
		lessonText: atomic.NewString(""),
	}
	content := d.Content
	v.lesson = fetch.New(func(ctx context.Context, id string) (*api.Lesson, error) {
		return content.Lesson(ctx, id)
	}, d.LoaderOptions("lesson", false)...)
	v.explain = fetch.New(func(ctx context.Context, id string) (string, error) {
		return content.Explain(ctx, api.ExplainRequest{
			Question: explainPrompt,
			LessonID: id,
			Context:  v.lessonText.Load(),
		})
	}, d.LoaderOptions("explain", true)...)
	return v
}

func resolve(p nav.Params) nav.Params {
	return nav.Params{PathID: p.Path(), ModuleID: p.Module(), LessonID: p.Lesson()}
}

func (v *ViewerScreen) Title() string {
	return v.deps.T.T("lesson.title")
}

func (v *ViewerScreen) Init() tea.Cmd {
	return tea.Batch(v.lesson.Ensure(v.ids.LessonID), v.spinner.Tick())
}

// Retarget switches lessons in place. The explanation belongs to the old
// lesson and is dropped.
func (v *ViewerScreen) Retarget(p nav.Params) tea.Cmd {
	next := resolve(p)
	if next.LessonID != v.ids.LessonID {
		v.explain.Close()
		v.stopSpeaking()
		v.offset = 0
		v.status = ""
	}
	v.ids = next
	return tea.Batch(v.lesson.Ensure(v.ids.LessonID), v.spinner.Tick())
}

func (v *ViewerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if v.lesson.Handle(msg) {
		v.cache.key = ""
		l := v.lesson.Value()
		if l == nil {
			return v, nil
		}
		v.lessonText.Store(truncate(l.Content, contextLimit))
		// Narration starts on its own when text to speech is on.
		if v.deps.Access().TextToSpeech && !v.speaking {
			return v, v.speak()
		}
		return v, nil
	}
	if v.explain.Handle(msg) {
		v.cache.key = ""
		return v, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg, v.lesson.Loading() || v.explain.Loading())
		return v, cmd
	case speechDoneMsg:
		if msg.gen != v.speechGen {
			return v, nil
		}
		v.speaking = false
		v.stopSpeech = nil
		switch {
		case errors.Is(msg.err, a11y.ErrNoSpeech):
			v.status = v.deps.T.T("lesson.tts_missing")
		case msg.err != nil && !errors.Is(msg.err, context.Canceled):
			v.log.Warn("speech failed", zap.Error(msg.err))
			v.status = v.deps.T.T("lesson.tts_failed")
		default:
			v.status = ""
		}
		return v, nil
	case tea.KeyPressMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *ViewerScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if v.lesson.State() == fetch.Error {
		if msg.String() == "r" {
			return v, tea.Batch(v.lesson.Retry(), v.spinner.Tick())
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		v.offset = max(v.offset-1, 0)
	case "down", "j":
		v.offset++
	case "pgup":
		v.offset = max(v.offset-10, 0)
	case "pgdown", "space":
		v.offset += 10
	case "home", "g":
		v.offset = 0
	case "a":
		return v, router.Navigate(nav.Assessment, v.ids)
	case "e":
		if v.lesson.State() != fetch.Loaded {
			return v, nil
		}
		if v.explain.State() == fetch.Error {
			return v, tea.Batch(v.explain.Retry(), v.spinner.Tick())
		}
		return v, tea.Batch(v.explain.Ensure(v.ids.LessonID), v.spinner.Tick())
	case "x":
		v.explain.Close()
		v.cache.key = ""
	case "+":
		return v, v.toggle(a11y.LargeText)
	case "c":
		return v, v.toggle(a11y.HighContrast)
	case "s":
		return v, v.speak()
	}
	return v, nil
}

func (v *ViewerScreen) toggle(t a11y.Toggle) tea.Cmd {
	v.cache.key = ""
	return v.deps.SetAccess(v.deps.Access().Flip(t))
}

func (v *ViewerScreen) speak() tea.Cmd {
	if v.speaking {
		v.stopSpeaking()
		return nil
	}
	l := v.lesson.Value()
	if l == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(v.deps.Parent())
	v.speechGen++
	v.speaking = true
	v.stopSpeech = cancel
	v.status = v.deps.T.T("lesson.speaking")
	text, lang, gen := l.Title+". "+l.Content, v.deps.T.Lang(), v.speechGen
	return func() tea.Msg {
		defer cancel()
		return speechDoneMsg{gen: gen, err: speak(ctx, text, lang)}
	}
}

// stopSpeaking cancels narration in flight. Its speechDoneMsg, when it
// arrives, is stale and ignored.
func (v *ViewerScreen) stopSpeaking() {
	if !v.speaking {
		return
	}
	v.stopSpeech()
	v.speechGen++
	v.speaking = false
	v.stopSpeech = nil
	v.status = ""
}

// Close cancels the lesson and explanation requests and any speech.
func (v *ViewerScreen) Close() {
	v.lesson.Close()
	v.explain.Close()
	v.stopSpeaking()
}

func (v *ViewerScreen) KeyHints() []layout.KeyHint {
	t := v.deps.T
	hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.back")}}
	if v.lesson.State() == fetch.Error {
		return append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
	}
	return append(hints,
		layout.KeyHint{Key: "↑↓", Description: t.T("hint.scroll")},
		layout.KeyHint{Key: "e", Description: t.T("hint.explain")},
		layout.KeyHint{Key: "a", Description: t.T("hint.assessment")},
		layout.KeyHint{Key: "+", Description: t.T("hint.text_size")},
		layout.KeyHint{Key: "c", Description: t.T("hint.contrast")},
		layout.KeyHint{Key: "s", Description: t.T("hint.speak")})
}

func (v *ViewerScreen) View(width, height int) string {
	t := v.deps.T
	cw := components.ContentWidth(width)

	switch v.lesson.State() {
	case fetch.Error:
		return components.Panel(t.T("lesson.title"),
			components.ErrorBanner(api.Message(v.lesson.Err()), t.T("hint.retry_banner")), cw)
	case fetch.Loaded:
	default:
		return components.Panel(t.T("lesson.title"), components.Loading(v.spinner, t.T("lesson.loading")), cw)
	}

	l := v.lesson.Value()
	if l == nil {
		return components.Panel(t.T("lesson.title"), theme.Hint.Render(t.T("lesson.empty")), cw)
	}

	var head strings.Builder
	head.WriteString(theme.Title.Render(l.Title))
	if l.Minutes > 0 {
		head.WriteString(theme.Hint.Render(fmt.Sprintf("  · %s", t.Tf("module.minutes", map[string]any{"Minutes": l.Minutes}))))
	}
	if v.status != "" {
		head.WriteString("\n" + theme.Hint.Render(v.status))
	}

	lines := v.lines(cw - 4)
	visible := max(height-8, 3)
	v.offset = min(v.offset, max(len(lines)-visible, 0))
	end := min(v.offset+visible, len(lines))
	body := strings.Join(lines[v.offset:end], "\n")
	if len(lines) > visible {
		body += "\n" + theme.Hint.Render(fmt.Sprintf("%d-%d / %d", v.offset+1, end, len(lines)))
	}
	return components.Panel("", head.String()+"\n\n"+body, cw)
}

// lines returns the rendered lesson plus explanation, cached until the
// content, the width or the reading aids change.
func (v *ViewerScreen) lines(width int) []string {
	access := v.deps.Access()
	wrap := access.WrapWidth(width)
	key := fmt.Sprintf("%d|%+v|%s|%s", wrap, access, v.explain.State(), v.spinner.View())
	if key == v.cache.key {
		return v.cache.lines
	}

	l := v.lesson.Value()
	doc := components.Markdown(l.Content, wrap, access.DarkMode && !access.HighContrast)
	doc = access.Format(doc)
	if section := v.explanation(wrap, access); section != "" {
		doc = section + "\n\n" + doc
	}
	v.cache.key = key
	v.cache.lines = strings.Split(doc, "\n")
	return v.cache.lines
}

func (v *ViewerScreen) explanation(wrap int, access a11y.Settings) string {
	t := v.deps.T
	switch v.explain.State() {
	case fetch.Loading:
		return components.Loading(v.spinner, t.T("lesson.explaining"))
	case fetch.Error:
		return components.ErrorBanner(api.Message(v.explain.Err()), t.T("lesson.explain_retry"))
	case fetch.Loaded:
		text := components.Markdown(v.explain.Value(), wrap-2, access.DarkMode && !access.HighContrast)
		return theme.Card.Width(wrap).Render(theme.Subtitle.Render(t.T("lesson.explanation")) + "\n" + access.Format(text))
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
