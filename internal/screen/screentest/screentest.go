// Package screentest provides fakes and a command pump for screen tests.
package screentest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
)

// ErrNotStubbed is returned by Content methods without a stub.
var ErrNotStubbed = errors.New("screentest: not stubbed")

// Content is a screen.Content whose methods are function fields. Calls are
// counted by method name.
type Content struct {
	PathsFn        func(ctx context.Context) ([]api.Path, error)
	ModulesFn      func(ctx context.Context, pathID string) ([]api.Module, error)
	ModuleFn       func(ctx context.Context, moduleID string) (*api.Module, error)
	LessonsFn      func(ctx context.Context, moduleID string) ([]api.Lesson, error)
	LessonFn       func(ctx context.Context, lessonID string) (*api.Lesson, error)
	AssessmentFn   func(ctx context.Context, req api.AssessmentRequest) (*assess.Assessment, error)
	ExplainFn      func(ctx context.Context, req api.ExplainRequest) (string, error)
	TeacherStatsFn func(ctx context.Context) (*api.TeacherStats, error)
	StudentsFn     func(ctx context.Context) ([]api.StudentProgress, error)
	StudentFn      func(ctx context.Context, id string) (*api.StudentDetail, error)
	SubmitFn       func(ctx context.Context, rep api.ResultReport) error

	mu    sync.Mutex
	calls map[string][]string
}

var _ screen.Content = (*Content)(nil)

func (c *Content) record(method, arg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string][]string{}
	}
	c.calls[method] = append(c.calls[method], arg)
}

// Calls returns the arguments each call of method received.
func (c *Content) Calls(method string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls[method]...)
}

func (c *Content) Paths(ctx context.Context) ([]api.Path, error) {
	c.record("Paths", "")
	if c.PathsFn == nil {
		return nil, ErrNotStubbed
	}
	return c.PathsFn(ctx)
}

func (c *Content) ModulesByPath(ctx context.Context, pathID string) ([]api.Module, error) {
	c.record("ModulesByPath", pathID)
	if c.ModulesFn == nil {
		return nil, ErrNotStubbed
	}
	return c.ModulesFn(ctx, pathID)
}

func (c *Content) Module(ctx context.Context, moduleID string) (*api.Module, error) {
	c.record("Module", moduleID)
	if c.ModuleFn == nil {
		return nil, ErrNotStubbed
	}
	return c.ModuleFn(ctx, moduleID)
}

func (c *Content) LessonsByModule(ctx context.Context, moduleID string) ([]api.Lesson, error) {
	c.record("LessonsByModule", moduleID)
	if c.LessonsFn == nil {
		return nil, ErrNotStubbed
	}
	return c.LessonsFn(ctx, moduleID)
}

func (c *Content) Lesson(ctx context.Context, lessonID string) (*api.Lesson, error) {
	c.record("Lesson", lessonID)
	if c.LessonFn == nil {
		return nil, ErrNotStubbed
	}
	return c.LessonFn(ctx, lessonID)
}

func (c *Content) GenerateAssessment(ctx context.Context, req api.AssessmentRequest) (*assess.Assessment, error) {
	c.record("GenerateAssessment", req.LessonID)
	if c.AssessmentFn == nil {
		return nil, ErrNotStubbed
	}
	return c.AssessmentFn(ctx, req)
}

func (c *Content) Explain(ctx context.Context, req api.ExplainRequest) (string, error) {
	c.record("Explain", req.Question)
	if c.ExplainFn == nil {
		return "", ErrNotStubbed
	}
	return c.ExplainFn(ctx, req)
}

func (c *Content) TeacherStats(ctx context.Context) (*api.TeacherStats, error) {
	c.record("TeacherStats", "")
	if c.TeacherStatsFn == nil {
		return nil, ErrNotStubbed
	}
	return c.TeacherStatsFn(ctx)
}

func (c *Content) Students(ctx context.Context) ([]api.StudentProgress, error) {
	c.record("Students", "")
	if c.StudentsFn == nil {
		return nil, ErrNotStubbed
	}
	return c.StudentsFn(ctx)
}

func (c *Content) Student(ctx context.Context, id string) (*api.StudentDetail, error) {
	c.record("Student", id)
	if c.StudentFn == nil {
		return nil, ErrNotStubbed
	}
	return c.StudentFn(ctx, id)
}

// SubmitResult records the lesson id. Without a stub it succeeds.
func (c *Content) SubmitResult(ctx context.Context, rep api.ResultReport) error {
	c.record("SubmitResult", rep.LessonID)
	if c.SubmitFn == nil {
		return nil
	}
	return c.SubmitFn(ctx, rep)
}

// Deps returns screen dependencies around content with reduced motion on,
// so screens schedule no animation ticks.
func Deps(content screen.Content) *screen.Deps {
	settings := a11y.Defaults()
	settings.ReducedMotion = true
	return &screen.Deps{
		Content:           content,
		A11y:              &settings,
		Timeout:           5 * time.Second,
		GenerationTimeout: 5 * time.Second,
	}
}

// cmdWait bounds a single command; slower commands (cursor blinks, ticks)
// are dropped.
const cmdWait = 200 * time.Millisecond

const maxSteps = 100

// Pump runs cmd, feeds every resulting message back into s and keeps going
// until no commands remain. Navigation messages are not fed back; they are
// returned in order for the test to inspect.
func Pump(s screen.Screen, cmd tea.Cmd) (screen.Screen, []tea.Msg) {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg, ok := run(next)
		if !ok || msg == nil {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
		case router.NavigateMsg, router.BackMsg, router.ResetMsg, tea.QuitMsg:
			out = append(out, m)
		default:
			var c tea.Cmd
			s, c = s.Update(m)
			queue = append(queue, c)
		}
	}
	return s, out
}

// Send delivers msg to s and pumps the resulting command.
func Send(s screen.Screen, msg tea.Msg) (screen.Screen, []tea.Msg) {
	s, cmd := s.Update(msg)
	return Pump(s, cmd)
}

// Key builds a key press for a key name like "enter", "esc", "up",
// "ctrl+r" or a single character.
func Key(name string) tea.KeyPressMsg {
	switch name {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "shift+tab":
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	}
	if rest, ok := strings.CutPrefix(name, "ctrl+"); ok {
		return tea.KeyPressMsg{Code: []rune(rest)[0], Mod: tea.ModCtrl}
	}
	r := []rune(name)[0]
	return tea.KeyPressMsg{Code: r, Text: name}
}

// Type sends each rune of text as a key press. Resulting commands (cursor
// blinks) are discarded.
func Type(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

func run(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(cmdWait):
		return nil, false
	}
}
