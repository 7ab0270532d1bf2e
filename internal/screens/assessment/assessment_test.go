package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/nav"
	"github.com/abhisek/learninghub/internal/router"
	"github.com/abhisek/learninghub/internal/screen/screentest"
)

func quizContent() *screentest.Content {
	return &screentest.Content{
		AssessmentFn: func(_ context.Context, req api.AssessmentRequest) (*assess.Assessment, error) {
			return &assess.Assessment{
				Title: "Perceptrón",
				Questions: []assess.Question{
					{Prompt: "¿Uno?", Options: []string{"Sí", "No"}, Answer: "Sí"},
					{Prompt: "¿Dos?", Options: []string{"A", "B", "C"}, Answer: "C", Explanation: "Porque C."},
				},
			}, nil
		},
	}
}

func start(t *testing.T, content *screentest.Content, results *screentest.Results) *QuizScreen {
	t.Helper()
	d := screentest.Deps(content)
	if results != nil {
		d.Results = results
	}
	q := New(d, nav.Params{PathID: "p", ModuleID: "m", LessonID: "l"})
	screentest.Pump(q, q.Init())
	require.Equal(t, fetch.Loaded, q.generation.State())
	return q
}

func TestRequestsLessonAssessment(t *testing.T) {
	var got api.AssessmentRequest
	content := quizContent()
	inner := content.AssessmentFn
	content.AssessmentFn = func(ctx context.Context, req api.AssessmentRequest) (*assess.Assessment, error) {
		got = req
		return inner(ctx, req)
	}
	start(t, content, nil)
	assert.Equal(t, api.AssessmentRequest{LessonID: "l", Questions: QuestionCount}, got)
}

func TestFullRunRecordsScore(t *testing.T) {
	results := &screentest.Results{}
	q := start(t, quizContent(), results)

	// Q1: answer A (correct).
	screentest.Send(q, screentest.Key("enter"))
	require.NotNil(t, q.feedback)
	assert.True(t, q.feedback.Correct)
	screentest.Send(q, screentest.Key("enter"))

	// Q2: answer A (wrong, C is right).
	screentest.Send(q, screentest.Key("enter"))
	require.NotNil(t, q.feedback)
	assert.False(t, q.feedback.Correct)
	assert.Contains(t, q.View(100, 40), "Porque C.")
	screentest.Send(q, screentest.Key("enter"))

	require.True(t, q.quiz.Done())
	assert.True(t, q.saved)
	rows := results.All()
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Correct)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, "l", rows[0].LessonID)
	assert.Equal(t, "m", rows[0].ModuleID)
	assert.Contains(t, q.View(100, 40), "1 / 2")
}

func TestFinishedQuizIsReported(t *testing.T) {
	var got api.ResultReport
	content := quizContent()
	content.SubmitFn = func(_ context.Context, rep api.ResultReport) error {
		got = rep
		return nil
	}
	q := start(t, content, &screentest.Results{})
	for i := 0; i < 4; i++ {
		screentest.Send(q, screentest.Key("enter"))
	}
	require.True(t, q.quiz.Done())
	assert.Equal(t, api.ResultReport{PathID: "p", ModuleID: "m", LessonID: "l", Title: "Perceptrón", Correct: 1, Total: 2}, got)
	assert.True(t, q.reported)
	assert.Contains(t, q.View(100, 40), "assessment.reported")
}

func TestReportFailureKeepsLocalResult(t *testing.T) {
	content := quizContent()
	content.SubmitFn = func(context.Context, api.ResultReport) error {
		return &api.FetchError{Op: "submit result", Err: &api.StatusError{Code: 503, Message: "caído"}}
	}
	results := &screentest.Results{}
	q := start(t, content, results)
	for i := 0; i < 4; i++ {
		screentest.Send(q, screentest.Key("enter"))
	}
	require.True(t, q.quiz.Done())
	assert.False(t, q.reported)
	assert.True(t, q.saved)
	assert.Len(t, results.All(), 1)
	assert.NotContains(t, q.View(100, 40), "assessment.reported")
}

func TestLetterKeysChooseOption(t *testing.T) {
	q := start(t, quizContent(), nil)
	screentest.Send(q, screentest.Key("enter"))
	screentest.Send(q, screentest.Key("enter"))

	screentest.Send(q, screentest.Key("c"))
	screentest.Send(q, screentest.Key("enter"))
	require.NotNil(t, q.feedback)
	assert.True(t, q.feedback.Correct)
}

func TestSaveFailureStillShowsScore(t *testing.T) {
	results := &screentest.Results{AppendErr: errors.New("disk full")}
	q := start(t, quizContent(), results)
	for i := 0; i < 4; i++ {
		screentest.Send(q, screentest.Key("enter"))
	}
	require.True(t, q.quiz.Done())
	assert.False(t, q.saved)
	assert.Contains(t, q.View(100, 40), "assessment.not_saved")
}

func TestDoneShortcuts(t *testing.T) {
	content := quizContent()
	q := start(t, content, nil)
	for i := 0; i < 4; i++ {
		screentest.Send(q, screentest.Key("enter"))
	}

	_, out := screentest.Send(q, screentest.Key("l"))
	require.Len(t, out, 1)
	assert.Equal(t, router.NavigateMsg{Screen: nav.Lesson, Params: nav.Params{PathID: "p", ModuleID: "m", LessonID: "l"}}, out[0])

	screentest.Send(q, screentest.Key("n"))
	assert.Len(t, content.Calls("GenerateAssessment"), 2)
	assert.False(t, q.quiz.Done())
}

func TestGenerationErrorRetry(t *testing.T) {
	content := quizContent()
	ok := content.AssessmentFn
	content.AssessmentFn = func(context.Context, api.AssessmentRequest) (*assess.Assessment, error) {
		return nil, &api.FetchError{Op: "assessment", Err: api.ErrMalformed}
	}
	d := screentest.Deps(content)
	q := New(d, nav.Params{})
	screentest.Pump(q, q.Init())
	require.Equal(t, fetch.Error, q.generation.State())
	assert.Equal(t, []string{nav.DefaultLessonID}, content.Calls("GenerateAssessment"))

	content.AssessmentFn = ok
	screentest.Send(q, screentest.Key("r"))
	assert.Equal(t, fetch.Loaded, q.generation.State())
	require.NotNil(t, q.quiz)
}
