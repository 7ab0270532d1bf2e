package screen

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/a11y"
	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/i18n"
	"github.com/abhisek/learninghub/internal/store"
)

// Content is the content gateway as screens consume it. *api.ContentClient
// implements it.
type Content interface {
	Paths(ctx context.Context) ([]api.Path, error)
	ModulesByPath(ctx context.Context, pathID string) ([]api.Module, error)
	Module(ctx context.Context, moduleID string) (*api.Module, error)
	LessonsByModule(ctx context.Context, moduleID string) ([]api.Lesson, error)
	Lesson(ctx context.Context, lessonID string) (*api.Lesson, error)
	GenerateAssessment(ctx context.Context, req api.AssessmentRequest) (*assess.Assessment, error)
	Explain(ctx context.Context, req api.ExplainRequest) (string, error)
	TeacherStats(ctx context.Context) (*api.TeacherStats, error)
	Students(ctx context.Context) ([]api.StudentProgress, error)
	Student(ctx context.Context, id string) (*api.StudentDetail, error)
	SubmitResult(ctx context.Context, rep api.ResultReport) error
}

var _ Content = (*api.ContentClient)(nil)

// Deps are the collaborators shared by every screen.
type Deps struct {
	Content  Content
	Session  *auth.Store
	Results  store.ResultRepo
	Settings store.SettingsRepo
	T        *i18n.Translator
	Logger   *zap.Logger

	// A11y points at the live accessibility settings owned by the app.
	A11y *a11y.Settings

	// Timeout bounds content fetches; GenerationTimeout bounds AI calls.
	Timeout           time.Duration
	GenerationTimeout time.Duration

	// Context is the parent of every fetch; cancelling it stops all work.
	Context context.Context
}

// Access returns the accessibility settings, or the defaults.
func (d *Deps) Access() a11y.Settings {
	if d == nil || d.A11y == nil {
		return a11y.Defaults()
	}
	return *d.A11y
}

// Log returns a named child logger, never nil.
func (d *Deps) Log(name string) *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger.Named(name)
}

// Parent returns the fetch parent context, never nil.
func (d *Deps) Parent() context.Context {
	if d == nil || d.Context == nil {
		return context.Background()
	}
	return d.Context
}

// UserID returns the signed-in user's id, or "" when signed out.
func (d *Deps) UserID() string {
	if d == nil || d.Session == nil {
		return ""
	}
	s, ok := d.Session.Current()
	if !ok {
		return ""
	}
	return s.ID
}

// LoaderOptions returns the fetch options for a content loader named name.
// Generation loaders get the longer AI timeout.
func (d *Deps) LoaderOptions(name string, generation bool) []fetch.Option {
	timeout := d.Timeout
	if generation {
		timeout = d.GenerationTimeout
	}
	return []fetch.Option{
		fetch.WithParent(d.Parent()),
		fetch.WithTimeout(timeout),
		fetch.WithLogger(d.Log("fetch"), name),
	}
}

// SetAccess makes s the live accessibility settings, switches the palette
// and returns a command that persists them. A failed save is logged; the
// change still holds for this run.
func (d *Deps) SetAccess(s a11y.Settings) tea.Cmd {
	if d.A11y == nil {
		d.A11y = new(a11y.Settings)
	}
	*d.A11y = s
	a11y.Apply(s)
	if d.Settings == nil {
		return nil
	}
	repo, ctx, logger := d.Settings, d.Parent(), d.Log("a11y")
	return func() tea.Msg {
		if err := a11y.Save(ctx, repo, s); err != nil {
			logger.Warn("persist accessibility settings", zap.Error(err))
		}
		return nil
	}
}
