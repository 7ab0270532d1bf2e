package backend

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/store"
)

// At-risk thresholds.
const (
	inactiveAfter = 7 * 24 * time.Hour
	lowScore      = 60 // percent
	failingRun    = 3  // consecutive results below failingScore
	failingScore  = 50 // percent
	recentLimit   = 10
)

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req api.ResultReport
	if !decodeBody(w, r, &req) {
		return
	}
	req.LessonID = strings.TrimSpace(req.LessonID)
	switch {
	case req.LessonID == "":
		writeError(w, http.StatusBadRequest, "La lección es requerida")
		return
	case req.Total <= 0 || req.Correct < 0 || req.Correct > req.Total:
		writeError(w, http.StatusBadRequest, "Puntuación inválida")
		return
	}
	if _, ok := s.lookupLesson(w, r, req.LessonID); !ok {
		return
	}

	u := userFrom(r.Context())
	err := s.results.Append(r.Context(), store.AssessmentResult{
		UserID:    u.ID,
		PathID:    req.PathID,
		ModuleID:  req.ModuleID,
		LessonID:  req.LessonID,
		Title:     req.Title,
		Correct:   req.Correct,
		Total:     req.Total,
		Timestamp: s.now(),
	})
	if err != nil {
		s.fail(w, "save result", err)
		return
	}
	s.logger.Info("result recorded",
		zap.String("user_id", u.ID),
		zap.String("lesson_id", req.LessonID),
		zap.Int("correct", req.Correct),
		zap.Int("total", req.Total))
	writeData(w, http.StatusCreated, nil)
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	students, err := s.users.ListByRole(ctx, "alumno")
	if err != nil {
		s.fail(w, "list students", err)
		return
	}
	summaries, err := s.progress.ByUser(ctx)
	if err != nil {
		s.fail(w, "summarize results", err)
		return
	}
	counts, err := s.catalog.Counts(ctx)
	if err != nil {
		s.fail(w, "count catalog", err)
		return
	}

	out := make([]api.StudentProgress, 0, len(students))
	for _, u := range students {
		sum := summaries[u.ID]
		var recent []store.AssessmentResult
		if sum.Attempts >= failingRun {
			recent, err = s.results.Recent(ctx, u.ID, store.QueryOpts{Limit: failingRun})
			if err != nil {
				s.fail(w, "recent results", err)
				return
			}
		}
		out = append(out, s.studentProgress(u, sum, recent, counts.Lessons))
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := s.users.ByID(ctx, mux.Vars(r)["studentID"])
	if err != nil {
		s.fail(w, "lookup student", err)
		return
	}
	if u == nil || u.Role != "alumno" {
		writeError(w, http.StatusNotFound, "Estudiante no encontrado")
		return
	}

	history, err := s.results.Recent(ctx, u.ID, store.QueryOpts{})
	if err != nil {
		s.fail(w, "student results", err)
		return
	}
	modules, lessons, err := s.moduleProgress(ctx, history)
	if err != nil {
		s.fail(w, "module progress", err)
		return
	}

	sum := summarize(u.ID, history)
	detail := api.StudentDetail{
		StudentProgress: s.studentProgress(*u, sum, history[:min(failingRun, len(history))], lessons),
		Modules:         modules,
		Recent:          make([]api.ResultEntry, 0, min(recentLimit, len(history))),
	}
	for _, res := range history[:min(recentLimit, len(history))] {
		detail.Recent = append(detail.Recent, api.ResultEntry{
			LessonID: res.LessonID,
			Title:    res.Title,
			Correct:  res.Correct,
			Total:    res.Total,
			At:       res.Timestamp,
		})
	}
	writeData(w, http.StatusOK, detail)
}

// summarize folds a newest-first history the way ProgressRepo.ByUser does.
func summarize(userID string, history []store.AssessmentResult) store.StudentSummary {
	sum := store.StudentSummary{UserID: userID}
	lessons := make(map[string]bool)
	for _, res := range history {
		sum.Attempts++
		sum.Correct += res.Correct
		sum.Total += res.Total
		lessons[res.LessonID] = true
	}
	sum.Lessons = len(lessons)
	if len(history) > 0 {
		sum.LastAt = history[0].Timestamp
	}
	return sum
}

// moduleProgress counts, per catalog module, the lessons history covers. It
// also returns the catalog's lesson total.
func (s *Server) moduleProgress(ctx context.Context, history []store.AssessmentResult) ([]api.ModuleProgress, int, error) {
	assessed := make(map[string]bool, len(history))
	for _, res := range history {
		assessed[res.LessonID] = true
	}
	paths, err := s.catalog.Paths(ctx)
	if err != nil {
		return nil, 0, err
	}
	var out []api.ModuleProgress
	total := 0
	for _, p := range paths {
		mods, err := s.catalog.ModulesByPath(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		for _, m := range mods {
			lessons, err := s.catalog.LessonsByModule(ctx, m.ID)
			if err != nil {
				return nil, 0, err
			}
			mp := api.ModuleProgress{ID: api.ID(m.ID), Title: m.Title, Lessons: len(lessons)}
			for _, l := range lessons {
				if assessed[l.ID] {
					mp.Assessed++
				}
			}
			total += len(lessons)
			out = append(out, mp)
		}
	}
	return out, total, nil
}

// studentProgress builds the list row for u. recent holds the newest
// results, newest first; catalogLessons is the lesson count of the catalog.
func (s *Server) studentProgress(u store.User, sum store.StudentSummary, recent []store.AssessmentResult, catalogLessons int) api.StudentProgress {
	p := api.StudentProgress{
		ID:       api.ID(u.ID),
		Name:     u.Name,
		Email:    u.Email,
		Attempts: sum.Attempts,
		Lessons:  sum.Lessons,
		Progress: min(percent(sum.Lessons, catalogLessons), 100),
		Score:    percent(sum.Correct, sum.Total),
	}
	if !sum.LastAt.IsZero() {
		last := sum.LastAt
		p.LastActivity = &last
	}
	p.Risk = s.risk(sum, recent)
	p.AtRisk = p.Risk != ""
	return p
}

// risk names the first warning sign for a student, or "" when they are on
// track.
func (s *Server) risk(sum store.StudentSummary, recent []store.AssessmentResult) string {
	switch {
	case sum.Attempts == 0 || s.now().Sub(sum.LastAt) > inactiveAfter:
		return api.RiskInactive
	case failing(recent):
		return api.RiskFailing
	case percent(sum.Correct, sum.Total) < lowScore:
		return api.RiskLowScore
	}
	return ""
}

// failing reports whether the last failingRun results all scored below
// failingScore.
func failing(recent []store.AssessmentResult) bool {
	if len(recent) < failingRun {
		return false
	}
	for _, res := range recent[:failingRun] {
		if percent(res.Correct, res.Total) >= failingScore {
			return false
		}
	}
	return true
}

// percent rounds n/d to a whole percentage.
func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return (n*100 + d/2) / d
}
