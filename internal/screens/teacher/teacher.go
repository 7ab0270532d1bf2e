// Package teacher is the dashboard for teachers: platform statistics, the
// class with each student's progress, and a per-student detail view. The
// backend only serves it to teachers; everyone else gets the error state.
package teacher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/fetch"
	"github.com/abhisek/learninghub/internal/screen"
	"github.com/abhisek/learninghub/internal/ui/components"
	"github.com/abhisek/learninghub/internal/ui/layout"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

const (
	statsKey    = "estadisticas"
	studentsKey = "estudiantes"

	// highlighted is how many students the top and at-risk lists show.
	highlighted = 3
	// listHeight is the number of student rows drawn at once.
	listHeight = 8
)

// DashboardScreen shows TeacherStats and the class.
type DashboardScreen struct {
	deps     *screen.Deps
	stats    *fetch.Loader[*api.TeacherStats]
	students *fetch.Loader[[]api.StudentProgress]
	detail   *fetch.Loader[*api.StudentDetail]
	spinner  components.Spinner

	menu       components.Menu
	ids        []string // student id per menu row
	detailOpen bool
	now        func() time.Time
}

var (
	_ screen.Screen        = (*DashboardScreen)(nil)
	_ screen.InputCapturer = (*DashboardScreen)(nil)
)

// New creates the teacher dashboard.
func New(d *screen.Deps) *DashboardScreen {
	content := d.Content
	return &DashboardScreen{
		deps: d,
		stats: fetch.New(func(ctx context.Context, _ string) (*api.TeacherStats, error) {
			return content.TeacherStats(ctx)
		}, d.LoaderOptions("teacher-stats", false)...),
		students: fetch.New(func(ctx context.Context, _ string) ([]api.StudentProgress, error) {
			return content.Students(ctx)
		}, d.LoaderOptions("teacher-students", false)...),
		detail: fetch.New(func(ctx context.Context, id string) (*api.StudentDetail, error) {
			return content.Student(ctx, id)
		}, d.LoaderOptions("teacher-student", false)...),
		spinner: components.NewSpinner(d.Access().ReducedMotion),
		menu:    components.NewMenu(nil),
		now:     time.Now,
	}
}

func (s *DashboardScreen) Title() string {
	return s.deps.T.T("teacher.title")
}

func (s *DashboardScreen) Init() tea.Cmd {
	return tea.Batch(s.stats.Ensure(statsKey), s.students.Ensure(studentsKey), s.spinner.Tick())
}

// CapturesInput keeps esc inside the screen while a student is open.
func (s *DashboardScreen) CapturesInput() bool {
	return s.detailOpen
}

func (s *DashboardScreen) loading() bool {
	return s.stats.Loading() || s.students.Loading() || s.detail.Loading()
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.stats.Handle(msg) || s.detail.Handle(msg) {
		return s, nil
	}
	if s.students.Handle(msg) {
		s.rebuildMenu()
		return s, nil
	}
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg, s.loading())
		return s, cmd
	case tea.KeyPressMsg:
		if s.detailOpen {
			return s.handleDetailKey(msg)
		}
		return s.handleListKey(msg)
	}
	return s, nil
}

func (s *DashboardScreen) handleListKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "r":
		if s.stats.Loading() || s.students.Loading() {
			return s, nil
		}
		return s, tea.Batch(s.stats.Load(statsKey), s.students.Load(studentsKey), s.spinner.Tick())
	case "enter":
		i := s.menu.Selected
		if i < 0 || i >= len(s.ids) || s.students.State() != fetch.Loaded {
			return s, nil
		}
		s.detailOpen = true
		return s, tea.Batch(s.detail.Load(s.ids[i]), s.spinner.Tick())
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *DashboardScreen) handleDetailKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "q":
		s.detailOpen = false
		s.detail.Close()
	case "r":
		if s.detail.State() == fetch.Error {
			return s, tea.Batch(s.detail.Retry(), s.spinner.Tick())
		}
	}
	return s, nil
}

// rebuildMenu lists the loaded students, at-risk students first, keeping the
// selection on the same student when possible.
func (s *DashboardScreen) rebuildMenu() {
	var selected string
	if i := s.menu.Selected; i >= 0 && i < len(s.ids) {
		selected = s.ids[i]
	}
	students := sortedForList(s.students.Value())
	items := make([]components.MenuItem, 0, len(students))
	s.ids = s.ids[:0]
	for _, st := range students {
		items = append(items, components.MenuItem{
			Label:  studentName(st),
			Detail: st.Email + " · " + s.lastActivity(st.LastActivity),
			Badge:  s.badge(st),
		})
		s.ids = append(s.ids, string(st.ID))
	}
	s.menu = components.NewMenu(items)
	s.menu.Height = listHeight
	for i, id := range s.ids {
		if id == selected {
			s.menu.Selected = i
			break
		}
	}
}

func studentName(st api.StudentProgress) string {
	if strings.TrimSpace(st.Name) != "" {
		return st.Name
	}
	return st.Email
}

func sortedForList(in []api.StudentProgress) []api.StudentProgress {
	out := append([]api.StudentProgress(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AtRisk != out[j].AtRisk {
			return out[i].AtRisk
		}
		return strings.ToLower(studentName(out[i])) < strings.ToLower(studentName(out[j]))
	})
	return out
}

// topStudents returns the assessed students with the best scores.
func topStudents(in []api.StudentProgress) []api.StudentProgress {
	var out []api.StudentProgress
	for _, st := range in {
		if st.Attempts > 0 && !st.AtRisk {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Progress > out[j].Progress
	})
	return out[:min(highlighted, len(out))]
}

func (s *DashboardScreen) badge(st api.StudentProgress) string {
	b := fmt.Sprintf("%3d%%", st.Progress)
	if st.AtRisk {
		b += " ⚠ " + s.riskLabel(st.Risk)
	}
	return b
}

func (s *DashboardScreen) riskLabel(reason string) string {
	if reason == "" {
		return ""
	}
	return s.deps.T.T("teacher.risk." + reason)
}

// lastActivity renders t relative to today.
func (s *DashboardScreen) lastActivity(t *time.Time) string {
	tr := s.deps.T
	if t == nil || t.IsZero() {
		return tr.T("teacher.never")
	}
	days := int(s.now().Sub(*t).Hours() / 24)
	if days <= 0 {
		return tr.T("teacher.today")
	}
	return tr.Tf("teacher.days_ago", map[string]any{"Count": days})
}

// Close cancels every request.
func (s *DashboardScreen) Close() {
	s.stats.Close()
	s.students.Close()
	s.detail.Close()
}

func (s *DashboardScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	if s.detailOpen {
		hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.close")}}
		if s.detail.State() == fetch.Error {
			hints = append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
		}
		return hints
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: t.T("hint.navigate")},
		{Key: "Enter", Description: t.T("hint.open")},
		{Key: "r", Description: t.T("hint.refresh")},
		{Key: "Tab", Description: t.T("hint.menu")},
	}
}

// forbidden reports whether err is the backend refusing a non-teacher.
func forbidden(err error) bool {
	var se *api.StatusError
	return errors.As(err, &se) && (se.Code == http.StatusForbidden || se.Code == http.StatusUnauthorized)
}

func (s *DashboardScreen) errorBanner(err error) string {
	t := s.deps.T
	msg := api.Message(err)
	if forbidden(err) {
		msg = t.T("teacher.forbidden") + "\n" + msg
	}
	return components.ErrorBanner(msg, t.T("hint.retry_banner"))
}

func (s *DashboardScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if s.detailOpen {
		return s.detailView(cw)
	}
	return lipgloss.JoinVertical(lipgloss.Left, s.statsView(cw), s.classView(cw))
}

func tiles(cw int, vals ...[2]string) string {
	tile := max((cw-12)/4, 12)
	var cells []string
	for _, v := range vals {
		cells = append(cells, components.Stat(v[0], v[1], tile))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func n(i int) string { return fmt.Sprint(i) }

func (s *DashboardScreen) statsView(cw int) string {
	t := s.deps.T
	switch s.stats.State() {
	case fetch.Error:
		return components.Panel(t.T("teacher.heading"), s.errorBanner(s.stats.Err()), cw)
	case fetch.Loaded:
	default:
		return components.Panel(t.T("teacher.heading"), components.Loading(s.spinner, t.T("teacher.loading")), cw)
	}

	st := s.stats.Value()
	if st == nil {
		st = &api.TeacherStats{}
	}
	var b strings.Builder
	b.WriteString(tiles(cw,
		[2]string{n(st.Students), t.T("teacher.students")},
		[2]string{n(st.Teachers), t.T("teacher.teachers")},
		[2]string{n(st.Paths), t.T("teacher.paths")},
		[2]string{n(st.Modules), t.T("teacher.modules")},
	))
	b.WriteString("\n")
	b.WriteString(tiles(cw,
		[2]string{n(st.Lessons), t.T("teacher.lessons")},
		[2]string{n(st.Assessments), t.T("teacher.assessments")},
		[2]string{n(st.Explanations), t.T("teacher.explanations")},
	))

	if len(st.ByRole) > 0 {
		roles := make([]string, 0, len(st.ByRole))
		for r := range st.ByRole {
			roles = append(roles, r)
		}
		sort.Strings(roles)
		b.WriteString("\n\n" + theme.Subtitle.Render(t.T("teacher.by_role")) + "\n")
		for _, r := range roles {
			fmt.Fprintf(&b, "  %-12s %d\n", r, st.ByRole[r])
		}
	}
	return components.Panel(t.T("teacher.heading"), strings.TrimRight(b.String(), "\n"), cw)
}

// classView is the overview of the class: averages, the best and the
// at-risk students, and the selectable list.
func (s *DashboardScreen) classView(cw int) string {
	t := s.deps.T
	switch s.students.State() {
	case fetch.Error:
		return components.Panel(t.T("teacher.class"), s.errorBanner(s.students.Err()), cw)
	case fetch.Loaded:
	default:
		return components.Panel(t.T("teacher.class"), components.Loading(s.spinner, t.T("teacher.loading_class")), cw)
	}

	students := s.students.Value()
	if len(students) == 0 {
		return components.Panel(t.T("teacher.class"), theme.Hint.Render(t.T("teacher.no_students")), cw)
	}

	var atRisk []api.StudentProgress
	score, progress, assessed := 0, 0, 0
	for _, st := range students {
		progress += st.Progress
		if st.Attempts > 0 {
			score += st.Score
			assessed++
		}
		if st.AtRisk {
			atRisk = append(atRisk, st)
		}
	}
	avgScore := 0
	if assessed > 0 {
		avgScore = score / assessed
	}

	var b strings.Builder
	b.WriteString(tiles(cw,
		[2]string{fmt.Sprintf("%d%%", progress/len(students)), t.T("teacher.avg_progress")},
		[2]string{fmt.Sprintf("%d%%", avgScore), t.T("teacher.avg_score")},
		[2]string{n(assessed), t.T("teacher.active")},
		[2]string{n(len(atRisk)), t.T("teacher.at_risk_count")},
	))

	if top := topStudents(students); len(top) > 0 {
		b.WriteString("\n\n" + theme.Subtitle.Render(t.T("teacher.top")) + "\n")
		for i, st := range top {
			fmt.Fprintf(&b, "  %d. %-24s %3d%%\n", i+1, studentName(st), st.Score)
		}
	}
	if len(atRisk) > 0 {
		b.WriteString("\n" + theme.Subtitle.Render(t.T("teacher.at_risk")) + "\n")
		for _, st := range atRisk[:min(highlighted, len(atRisk))] {
			line := fmt.Sprintf("  %-24s %s · %s", studentName(st), s.riskLabel(st.Risk), s.lastActivity(st.LastActivity))
			b.WriteString(theme.Incorrect.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + theme.Subtitle.Render(t.T("teacher.students_list")) + "\n")
	b.WriteString(s.menu.View())
	return components.Panel(t.T("teacher.class"), strings.TrimRight(b.String(), "\n"), cw)
}

func (s *DashboardScreen) detailView(cw int) string {
	t := s.deps.T
	switch s.detail.State() {
	case fetch.Error:
		return components.Panel(t.T("teacher.student"), s.errorBanner(s.detail.Err()), cw)
	case fetch.Loaded:
	default:
		return components.Panel(t.T("teacher.student"), components.Loading(s.spinner, t.T("teacher.loading_student")), cw)
	}
	d := s.detail.Value()
	if d == nil {
		return components.Panel(t.T("teacher.student"), "", cw)
	}

	var b strings.Builder
	b.WriteString(theme.Hint.Render(d.Email+" · "+t.T("teacher.last_activity")+": "+s.lastActivity(d.LastActivity)) + "\n")
	if d.AtRisk {
		b.WriteString(theme.Incorrect.Render("⚠ "+s.riskLabel(d.Risk)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(tiles(cw,
		[2]string{fmt.Sprintf("%d%%", d.Progress), t.T("teacher.progress")},
		[2]string{fmt.Sprintf("%d%%", d.Score), t.T("teacher.score")},
		[2]string{n(d.Attempts), t.T("teacher.attempts")},
		[2]string{n(d.Lessons), t.T("teacher.lessons_assessed")},
	))

	if len(d.Modules) > 0 {
		b.WriteString("\n\n" + theme.Subtitle.Render(t.T("teacher.modules_progress")) + "\n")
		bar := min(cw-4, 60)
		for _, m := range d.Modules {
			b.WriteString(components.NewProgressBar(m.Title, float64(m.Percent())/100, true, bar).View() + "\n")
		}
	}

	b.WriteString("\n" + theme.Subtitle.Render(t.T("teacher.recent")) + "\n")
	if len(d.Recent) == 0 {
		b.WriteString(theme.Hint.Render("  "+t.T("teacher.no_results")) + "\n")
	}
	for _, r := range d.Recent {
		title := r.Title
		if title == "" {
			title = r.LessonID
		}
		line := fmt.Sprintf("  %-28s %d/%d  %s", title, r.Correct, r.Total, r.At.Local().Format("2006-01-02"))
		style := theme.Correct
		if r.Total > 0 && r.Correct*2 < r.Total {
			style = theme.Incorrect
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return components.Panel(studentName(d.StudentProgress), strings.TrimRight(b.String(), "\n"), cw)
}
