// Package assessment runs a generated quiz for a lesson, records the score
// locally and reports it to the backend for the teacher views.
package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// QuestionCount is how many questions are requested per assessment.
const QuestionCount = 5

type savedMsg struct {
	err error
}

type reportedMsg struct {
	err error
}

// QuizScreen generates and runs an assessment for Params.LessonID.
type QuizScreen struct {
	deps       *screen.Deps
	log        *zap.Logger
	ids        nav.Params
	generation *fetch.Loader[*assess.Assessment]
	spinner    components.Spinner

	quiz     *assess.Quiz
	choice   components.MultiChoice
	feedback *assess.Feedback
	saved    bool
	saveErr  error
	reported bool
}

var _ screen.Screen = (*QuizScreen)(nil)

// New creates the assessment screen.
func New(d *screen.Deps, p nav.Params) *QuizScreen {
	content := d.Content
	return &QuizScreen{
		deps: d,
		log:  d.Log("assessment"),
		ids:  nav.Params{PathID: p.Path(), ModuleID: p.Module(), LessonID: p.Lesson()},
		generation: fetch.New(func(ctx context.Context, lessonID string) (*assess.Assessment, error) {
			return content.GenerateAssessment(ctx, api.AssessmentRequest{
				LessonID:  lessonID,
				Questions: QuestionCount,
			})
		}, d.LoaderOptions("assessment", true)...),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
	}
}

func (q *QuizScreen) Title() string {
	return q.deps.T.T("assessment.title")
}

func (q *QuizScreen) Init() tea.Cmd {
	return tea.Batch(q.generation.Ensure(q.ids.LessonID), q.spinner.Tick())
}

// Retarget starts over when the lesson changes.
func (q *QuizScreen) Retarget(p nav.Params) tea.Cmd {
	next := nav.Params{PathID: p.Path(), ModuleID: p.Module(), LessonID: p.Lesson()}
	if next.LessonID != q.ids.LessonID {
		q.quiz = nil
	}
	q.ids = next
	return tea.Batch(q.generation.Ensure(q.ids.LessonID), q.spinner.Tick())
}

func (q *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if q.generation.Handle(msg) {
		if q.generation.State() == fetch.Loaded && q.generation.Value() != nil {
			q.start(q.generation.Value())
		}
		return q, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		q.spinner, cmd = q.spinner.Update(msg, q.generation.Loading())
		return q, cmd
	case savedMsg:
		q.saved = msg.err == nil
		q.saveErr = msg.err
		return q, nil
	case reportedMsg:
		q.reported = msg.err == nil
		return q, nil
	case tea.KeyPressMsg:
		return q.handleKey(msg)
	}
	return q, nil
}

func (q *QuizScreen) start(a *assess.Assessment) {
	q.quiz = assess.NewQuiz(a)
	q.feedback = nil
	q.saved = false
	q.saveErr = nil
	q.reported = false
	q.loadQuestion()
}

func (q *QuizScreen) loadQuestion() {
	if cur, ok := q.quiz.Current(); ok {
		q.choice = components.NewMultiChoice(cur.Prompt, cur.Options)
	}
}

func (q *QuizScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch q.generation.State() {
	case fetch.Error:
		if key == "r" {
			return q, tea.Batch(q.generation.Retry(), q.spinner.Tick())
		}
		return q, nil
	case fetch.Loaded:
	default:
		return q, nil
	}
	if q.quiz == nil {
		return q, nil
	}

	if q.quiz.Done() {
		switch key {
		case "n":
			return q, tea.Batch(q.generation.Load(q.ids.LessonID), q.spinner.Tick())
		case "l":
			return q, router.Navigate(nav.Lesson, q.ids)
		}
		return q, nil
	}

	if key != "enter" {
		var cmd tea.Cmd
		q.choice, cmd = q.choice.Update(msg)
		return q, cmd
	}

	if !q.quiz.Answered() {
		fb, err := q.quiz.Answer(q.choice.Selected)
		if err != nil {
			q.log.Warn("answer rejected", zap.Error(err))
			return q, nil
		}
		q.feedback = &fb
		q.choice.Submit(fb.Chosen, fb.AnswerIndex)
		return q, nil
	}

	q.feedback = nil
	if q.quiz.Next() {
		q.loadQuestion()
		return q, nil
	}
	return q, q.record()
}

// record appends the finished quiz to the local results and reports it to
// the backend. Either may fail without affecting the other.
func (q *QuizScreen) record() tea.Cmd {
	correct, total := q.quiz.Score()
	res := store.AssessmentResult{
		UserID:    q.deps.UserID(),
		PathID:    q.ids.PathID,
		ModuleID:  q.ids.ModuleID,
		LessonID:  q.ids.LessonID,
		Title:     q.quiz.Title(),
		Correct:   correct,
		Total:     total,
		Timestamp: time.Now(),
	}
	return tea.Batch(q.save(res), q.report(res))
}

func (q *QuizScreen) save(res store.AssessmentResult) tea.Cmd {
	if q.deps.Results == nil {
		return nil
	}
	repo, ctx, log := q.deps.Results, q.deps.Parent(), q.log
	return func() tea.Msg {
		err := repo.Append(ctx, res)
		if err != nil {
			log.Warn("record assessment result", zap.Error(err))
		}
		return savedMsg{err: err}
	}
}

func (q *QuizScreen) report(res store.AssessmentResult) tea.Cmd {
	if q.deps.Content == nil {
		return nil
	}
	content, parent, timeout, log := q.deps.Content, q.deps.Parent(), q.deps.Timeout, q.log
	rep := api.ResultReport{
		PathID:   res.PathID,
		ModuleID: res.ModuleID,
		LessonID: res.LessonID,
		Title:    res.Title,
		Correct:  res.Correct,
		Total:    res.Total,
	}
	return func() tea.Msg {
		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}
		err := content.SubmitResult(ctx, rep)
		if err != nil {
			log.Warn("report assessment result", zap.String("lesson_id", rep.LessonID), zap.Error(err))
		}
		return reportedMsg{err: err}
	}
}

// Close cancels generation.
func (q *QuizScreen) Close() {
	q.generation.Close()
}

func (q *QuizScreen) KeyHints() []layout.KeyHint {
	t := q.deps.T
	hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.back")}}
	switch {
	case q.generation.State() == fetch.Error:
		hints = append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
	case q.quiz != nil && q.quiz.Done():
		hints = append(hints,
			layout.KeyHint{Key: "n", Description: t.T("hint.new_assessment")},
			layout.KeyHint{Key: "l", Description: t.T("hint.back_to_lesson")})
	case q.quiz != nil:
		hints = append(hints,
			layout.KeyHint{Key: "A-F", Description: t.T("hint.choose")},
			layout.KeyHint{Key: "Enter", Description: t.T("hint.confirm")})
	}
	return hints
}

func (q *QuizScreen) View(width, height int) string {
	t := q.deps.T
	cw := components.ContentWidth(width)

	switch q.generation.State() {
	case fetch.Error:
		return components.Panel(t.T("assessment.title"),
			components.ErrorBanner(api.Message(q.generation.Err()), t.T("hint.retry_banner")), cw)
	case fetch.Loaded:
	default:
		return components.Panel(t.T("assessment.title"), components.Loading(q.spinner, t.T("assessment.generating")), cw)
	}
	if q.quiz == nil {
		return components.Panel(t.T("assessment.title"), theme.Hint.Render(t.T("assessment.empty")), cw)
	}

	if q.quiz.Done() {
		return components.Panel(q.quiz.Title(), q.summary(cw), cw)
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(t.Tf("assessment.question", map[string]any{
		"Index": q.quiz.Index() + 1,
		"Total": q.quiz.Len(),
	})))
	b.WriteString("\n\n")
	b.WriteString(q.choice.View())
	if fb := q.feedback; fb != nil {
		b.WriteString("\n")
		if fb.Correct {
			b.WriteString(theme.Correct.Render(t.T("assessment.correct")))
		} else {
			b.WriteString(theme.Incorrect.Render(t.T("assessment.incorrect")))
		}
		if fb.Explanation != "" {
			b.WriteString("\n" + theme.Body.Render(fb.Explanation))
		}
		b.WriteString("\n\n" + theme.Hint.Render(t.T("assessment.continue")))
	}
	return components.Panel(q.quiz.Title(), b.String(), cw)
}

func (q *QuizScreen) summary(cw int) string {
	t := q.deps.T
	correct, total := q.quiz.Score()
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("%d / %d", correct, total)))
	b.WriteString("\n\n")
	b.WriteString(components.NewProgressBar(t.T("assessment.score"), float64(q.quiz.Percent())/100, true, min(cw-4, 40)).View())
	b.WriteString("\n\n")
	switch {
	case q.saveErr != nil:
		b.WriteString(theme.Incorrect.Render(t.T("assessment.not_saved")))
	case q.saved:
		b.WriteString(theme.Hint.Render(t.T("assessment.saved")))
	}
	if q.reported {
		b.WriteString("\n" + theme.Hint.Render(t.T("assessment.reported")))
	}
	return b.String()
}
