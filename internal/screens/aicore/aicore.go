// Package aicore is the AI dashboard: insights over the locally recorded
// assessment results and a free-form question prompt.
package aicore

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// recentLimit is how many results the dashboard lists.
const recentLimit = 5

// Insights is what the dashboard shows about a user's progress.
type Insights struct {
	Summary store.ResultSummary
	Recent  []store.AssessmentResult
}

// AskMsg submits Question to the assistant as if it had been typed into
// the prompt.
type AskMsg struct {
	Question string
}

// CoreScreen shows insights and answers questions.
type CoreScreen struct {
	deps     *screen.Deps
	insights *fetch.Loader[Insights]
	answer   *fetch.Loader[string]
	input    components.TextInput
	question string
	spinner  components.Spinner
}

var (
	_ screen.Screen        = (*CoreScreen)(nil)
	_ screen.InputCapturer = (*CoreScreen)(nil)
)

// New creates the AI core dashboard.
func New(d *screen.Deps) *CoreScreen {
	results, content := d.Results, d.Content
	return &CoreScreen{
		deps: d,
		insights: fetch.New(func(ctx context.Context, userID string) (Insights, error) {
			return loadInsights(ctx, results, userID)
		}, d.LoaderOptions("insights", false)...),
		answer: fetch.New(func(ctx context.Context, question string) (string, error) {
			return content.Explain(ctx, api.ExplainRequest{Question: question})
		}, d.LoaderOptions("ask", true)...),
		input:   components.NewTextInput(d.T.T("ai.prompt"), d.T.T("ai.placeholder"), 500),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
	}
}

func loadInsights(ctx context.Context, repo store.ResultRepo, userID string) (Insights, error) {
	if repo == nil {
		return Insights{}, nil
	}
	sum, err := repo.Summary(ctx, userID)
	if err != nil {
		return Insights{}, err
	}
	recent, err := repo.Recent(ctx, userID, store.QueryOpts{Limit: recentLimit})
	if err != nil {
		return Insights{}, err
	}
	return Insights{Summary: sum, Recent: recent}, nil
}

func (c *CoreScreen) Title() string {
	return c.deps.T.T("ai.title")
}

func (c *CoreScreen) Init() tea.Cmd {
	return tea.Batch(c.insights.Ensure(c.deps.UserID()), c.spinner.Tick())
}

// CapturesInput is true while the prompt has focus.
func (c *CoreScreen) CapturesInput() bool {
	return c.input.Focused()
}

func (c *CoreScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if c.insights.Handle(msg) || c.answer.Handle(msg) {
		return c, nil
	}

	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg, c.insights.Loading() || c.answer.Loading())
		return c, cmd
	case AskMsg:
		return c, c.ask(msg.Question)
	case tea.KeyPressMsg:
		if c.input.Focused() {
			return c.handleInput(msg)
		}
		switch msg.String() {
		case "i", "enter", "/":
			return c, c.input.Focus()
		case "r":
			if c.insights.State() == fetch.Error {
				return c, tea.Batch(c.insights.Retry(), c.spinner.Tick())
			}
			if c.answer.State() == fetch.Error {
				return c, tea.Batch(c.answer.Retry(), c.spinner.Tick())
			}
		}
		return c, nil
	}

	if c.input.Focused() {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *CoreScreen) handleInput(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		c.input.Blur()
		return c, nil
	case "enter":
		q := strings.TrimSpace(c.input.Value())
		if q == "" {
			return c, nil
		}
		c.input.Reset()
		c.input.Blur()
		return c, c.ask(q)
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CoreScreen) ask(q string) tea.Cmd {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	c.question = q
	return tea.Batch(c.answer.Load(q), c.spinner.Tick())
}

// Close cancels the insights query and any pending answer.
func (c *CoreScreen) Close() {
	c.insights.Close()
	c.answer.Close()
}

func (c *CoreScreen) KeyHints() []layout.KeyHint {
	t := c.deps.T
	if c.input.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: t.T("hint.ask")},
			{Key: "Esc", Description: t.T("hint.cancel")},
		}
	}
	hints := []layout.KeyHint{{Key: "i", Description: t.T("hint.ask")}}
	if c.insights.State() == fetch.Error || c.answer.State() == fetch.Error {
		hints = append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
	}
	return append(hints, layout.KeyHint{Key: "Tab", Description: t.T("hint.menu")})
}

func (c *CoreScreen) View(width, height int) string {
	t := c.deps.T
	cw := components.ContentWidth(width)

	sections := []string{c.insightsView(cw), c.input.View()}
	if a := c.answerView(cw); a != "" {
		sections = append(sections, a)
	}
	return components.Panel(t.T("ai.heading"), strings.Join(sections, "\n\n"), cw)
}

func (c *CoreScreen) insightsView(cw int) string {
	t := c.deps.T
	switch c.insights.State() {
	case fetch.Error:
		return components.ErrorBanner(c.insights.Err().Error(), t.T("hint.retry_banner"))
	case fetch.Loaded:
	default:
		return components.Loading(c.spinner, t.T("ai.loading"))
	}

	in := c.insights.Value()
	if in.Summary.Attempts == 0 {
		return theme.Hint.Render(t.T("ai.no_results"))
	}
	tile := max((cw-10)/3, 12)
	tiles := lipgloss.JoinHorizontal(lipgloss.Top,
		components.Stat(fmt.Sprintf("%.0f%%", in.Summary.Accuracy()*100), t.T("ai.accuracy"), tile),
		components.Stat(fmt.Sprint(in.Summary.Attempts), t.T("ai.attempts"), tile),
		components.Stat(fmt.Sprint(in.Summary.Lessons), t.T("ai.lessons"), tile),
	)

	var b strings.Builder
	b.WriteString(tiles)
	b.WriteString("\n\n" + theme.Subtitle.Render(t.T("ai.recent")) + "\n")
	for _, r := range in.Recent {
		title := r.Title
		if title == "" {
			title = r.LessonID
		}
		fmt.Fprintf(&b, "  %s  %s %s\n",
			theme.Hint.Render(r.Timestamp.Format("02/01 15:04")),
			title,
			theme.Selected.Render(fmt.Sprintf("%d/%d", r.Correct, r.Total)))
	}
	if tip := Tip(in.Summary); tip != "" {
		b.WriteString("\n" + theme.Body.Render(t.T(tip)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Tip picks the advice message id for a summary.
func Tip(s store.ResultSummary) string {
	switch acc := s.Accuracy(); {
	case s.Attempts == 0:
		return ""
	case acc >= 0.8:
		return "ai.tip_strong"
	case acc >= 0.5:
		return "ai.tip_steady"
	}
	return "ai.tip_review"
}

func (c *CoreScreen) answerView(cw int) string {
	t := c.deps.T
	switch c.answer.State() {
	case fetch.Loading:
		return components.Loading(c.spinner, t.T("ai.thinking"))
	case fetch.Error:
		return components.ErrorBanner(api.Message(c.answer.Err()), t.T("hint.retry_banner"))
	case fetch.Loaded:
		access := c.deps.Access()
		wrap := access.WrapWidth(cw - 4)
		body := components.Markdown(c.answer.Value(), wrap, access.DarkMode && !access.HighContrast)
		return theme.Subtitle.Render("› "+c.question) + "\n" + access.Format(body)
	}
	return ""
}
