package aicore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/screen/screentest"
	"github.com/abhisek/learninghub/internal/store"
)

func TestInsightsFromResults(t *testing.T) {
	results := &screentest.Results{}
	ctx := context.Background()
	for i, correct := range []int{4, 2, 5} {
		require.NoError(t, results.Append(ctx, store.AssessmentResult{
			LessonID:  []string{"a", "b", "a"}[i],
			Title:     "Quiz",
			Correct:   correct,
			Total:     5,
			Timestamp: time.Date(2026, 1, 2, 10, i, 0, 0, time.UTC),
		}))
	}

	d := screentest.Deps(&screentest.Content{})
	d.Results = results
	c := New(d)
	screentest.Pump(c, c.Init())
	require.Equal(t, fetch.Loaded, c.insights.State())

	in := c.insights.Value()
	assert.Equal(t, 3, in.Summary.Attempts)
	assert.Equal(t, 2, in.Summary.Lessons)
	require.Len(t, in.Recent, 3)
	assert.Equal(t, 5, in.Recent[0].Correct, "newest first")
	assert.Contains(t, c.View(120, 40), "73%")
}

func TestTip(t *testing.T) {
	tests := []struct {
		sum  store.ResultSummary
		want string
	}{
		{store.ResultSummary{}, ""},
		{store.ResultSummary{Attempts: 1, Correct: 9, Total: 10}, "ai.tip_strong"},
		{store.ResultSummary{Attempts: 1, Correct: 5, Total: 10}, "ai.tip_steady"},
		{store.ResultSummary{Attempts: 1, Correct: 1, Total: 10}, "ai.tip_review"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tip(tt.sum))
	}
}

func TestAskQuestion(t *testing.T) {
	content := &screentest.Content{ExplainFn: func(_ context.Context, req api.ExplainRequest) (string, error) {
		return "Respuesta para " + req.Question, nil
	}}
	c := New(screentest.Deps(content))
	screentest.Pump(c, c.Init())
	assert.False(t, c.CapturesInput())

	screentest.Send(c, screentest.Key("i"))
	require.True(t, c.CapturesInput())

	// Keys that are shortcuts elsewhere are typed into the prompt.
	screentest.Type(c, "qué es ia")
	assert.Equal(t, "qué es ia", c.input.Value())

	screentest.Send(c, screentest.Key("enter"))
	assert.False(t, c.CapturesInput())
	assert.Equal(t, []string{"qué es ia"}, content.Calls("Explain"))
	assert.Equal(t, "Respuesta para qué es ia", c.answer.Value())
}

func TestEmptyQuestionIgnored(t *testing.T) {
	content := &screentest.Content{}
	c := New(screentest.Deps(content))
	screentest.Send(c, screentest.Key("i"))
	screentest.Type(c, "   ")
	screentest.Send(c, screentest.Key("enter"))
	assert.Empty(t, content.Calls("Explain"))
	assert.True(t, c.CapturesInput())

	screentest.Send(c, screentest.Key("esc"))
	assert.False(t, c.CapturesInput())
}

func TestAskMsg(t *testing.T) {
	content := &screentest.Content{ExplainFn: func(context.Context, api.ExplainRequest) (string, error) {
		return "ok", nil
	}}
	c := New(screentest.Deps(content))
	screentest.Send(c, AskMsg{Question: "¿qué es un perceptrón?"})
	assert.Equal(t, []string{"¿qué es un perceptrón?"}, content.Calls("Explain"))
	assert.Equal(t, fetch.Loaded, c.answer.State())
}
