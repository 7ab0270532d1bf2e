package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/llm"
	"github.com/abhisek/learninghub/internal/store"
)

const (
	msgBadCredentials = "Credenciales inválidas"
	msgUnauthorized   = "No autorizado"
	msgInternal       = "Error interno del servidor"
)

func identity(u *store.User) api.Identity {
	return api.Identity{ID: api.ID(u.ID), Email: u.Email, Name: u.Name, Role: u.Role}
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, api.VersionInfo{Version: Version, Name: "learninghub"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		s.fail(w, "lookup user", err)
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	s.issueToken(w, r, u, http.StatusOK)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = "alumno"
	}
	switch {
	case req.Name == "":
		writeError(w, http.StatusBadRequest, "El nombre es requerido")
		return
	case !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "Email inválido")
		return
	case len(req.Password) < 6:
		writeError(w, http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres")
		return
	case req.Role != "alumno" && req.Role != "docente":
		writeError(w, http.StatusBadRequest, "Rol inválido")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.fail(w, "hash password", err)
		return
	}
	u := &store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(r.Context(), *u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "El email ya está registrado")
			return
		}
		s.fail(w, "create user", err)
		return
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	s.issueToken(w, r, u, http.StatusCreated)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, u *store.User, status int) {
	token := uuid.NewString()
	if err := s.tokens.Insert(r.Context(), token, u.ID); err != nil {
		s.fail(w, "insert token", err)
		return
	}
	writeData(w, status, api.AuthResult{Token: token, Identity: identity(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearer(r); token != "" {
		if err := s.tokens.Revoke(r.Context(), token); err != nil {
			s.logger.Warn("revoke token", zap.Error(err))
		}
	}
	writeData(w, http.StatusOK, nil)
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

type userKey struct{}

// userFrom returns the user requireUser resolved for the request.
func userFrom(ctx context.Context) *store.User {
	u, _ := ctx.Value(userKey{}).(*store.User)
	return u
}

// requireUser rejects requests without a live token and passes the token's
// user on in the request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		u, err := s.tokens.Resolve(r.Context(), token)
		if err != nil {
			s.fail(w, "resolve token", err)
			return
		}
		if u == nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

// requireRole is requireUser restricted to users with role.
func (s *Server) requireRole(role string, next http.Handler) http.Handler {
	return s.requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()).Role != role {
			writeError(w, http.StatusForbidden, "Acceso solo para docentes")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	paths, err := s.catalog.Paths(r.Context())
	if err != nil {
		s.fail(w, "list paths", err)
		return
	}
	out := make([]api.Path, 0, len(paths))
	for _, p := range paths {
		mods, err := s.catalog.ModulesByPath(r.Context(), p.ID)
		if err != nil {
			s.fail(w, "count modules", err)
			return
		}
		out = append(out, api.Path{
			ID:          api.ID(p.ID),
			Title:       p.Title,
			Description: p.Description,
			Level:       p.Level,
			Order:       p.Position,
			ModuleCount: len(mods),
		})
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleModulesByPath(w http.ResponseWriter, r *http.Request) {
	pathID := mux.Vars(r)["pathID"]
	paths, err := s.catalog.Paths(r.Context())
	if err != nil {
		s.fail(w, "list paths", err)
		return
	}
	found := false
	for _, p := range paths {
		found = found || p.ID == pathID
	}
	if !found {
		writeError(w, http.StatusNotFound, "Ruta no encontrada")
		return
	}

	mods, err := s.catalog.ModulesByPath(r.Context(), pathID)
	if err != nil {
		s.fail(w, "list modules", err)
		return
	}
	out := make([]api.Module, 0, len(mods))
	for _, m := range mods {
		out = append(out, apiModule(m))
	}
	// Served newest-position first; clients order by "orden".
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	writeData(w, http.StatusOK, out)
}

func apiModule(m store.Module) api.Module {
	return api.Module{
		ID:          api.ID(m.ID),
		PathID:      api.ID(m.PathID),
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Position,
	}
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	m, err := s.catalog.Module(r.Context(), mux.Vars(r)["moduleID"])
	if err != nil {
		s.fail(w, "get module", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Módulo no encontrado")
		return
	}
	writeData(w, http.StatusOK, apiModule(*m))
}

func (s *Server) handleLessonsByModule(w http.ResponseWriter, r *http.Request) {
	moduleID := mux.Vars(r)["moduleID"]
	m, err := s.catalog.Module(r.Context(), moduleID)
	if err != nil {
		s.fail(w, "get module", err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "Módulo no encontrado")
		return
	}
	lessons, err := s.catalog.LessonsByModule(r.Context(), moduleID)
	if err != nil {
		s.fail(w, "list lessons", err)
		return
	}
	out := make([]api.Lesson, 0, len(lessons))
	for _, l := range lessons {
		al := apiLesson(l)
		al.Content = ""
		out = append(out, al)
	}
	writeData(w, http.StatusOK, out)
}

func apiLesson(l store.Lesson) api.Lesson {
	return api.Lesson{
		ID:       api.ID(l.ID),
		ModuleID: api.ID(l.ModuleID),
		Title:    l.Title,
		Content:  l.Content,
		Minutes:  l.Minutes,
		Order:    l.Position,
	}
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	l, err := s.catalog.Lesson(r.Context(), mux.Vars(r)["lessonID"])
	if err != nil {
		s.fail(w, "get lesson", err)
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "Lección no encontrada")
		return
	}
	writeData(w, http.StatusOK, apiLesson(*l))
}

// lookupLesson resolves an optional lesson id, replying 404 when it is set
// but unknown.
func (s *Server) lookupLesson(w http.ResponseWriter, r *http.Request, id string) (*store.Lesson, bool) {
	if id == "" {
		return nil, true
	}
	l, err := s.catalog.Lesson(r.Context(), id)
	if err != nil {
		s.fail(w, "get lesson", err)
		return nil, false
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "Lección no encontrada")
		return nil, false
	}
	return l, true
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var req api.AssessmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	lesson, ok := s.lookupLesson(w, r, req.LessonID)
	if !ok {
		return
	}
	if lesson == nil && strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "Se requiere una lección o un tema")
		return
	}

	a, err := s.tutor.Assessment(r.Context(), AssessmentInput{Lesson: lesson, Topic: req.Topic, Questions: req.Questions})
	if err != nil {
		s.generationFailed(w, r, "No se pudo generar la evaluación", err)
		return
	}
	doc, err := json.Marshal(a)
	if err != nil {
		s.fail(w, "encode assessment", err)
		return
	}
	// The assessment travels string-encoded, as model output usually does.
	writeData(w, http.StatusOK, map[string]string{"evaluacion": string(doc)})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req api.ExplainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "La pregunta es requerida")
		return
	}
	lesson, ok := s.lookupLesson(w, r, req.LessonID)
	if !ok {
		return
	}
	text, err := s.tutor.Explain(r.Context(), ExplainInput{Question: req.Question, Context: req.Context, Lesson: lesson})
	if err != nil {
		s.generationFailed(w, r, "No se pudo generar la explicación", err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"explicacion": text})
}

func (s *Server) generationFailed(w http.ResponseWriter, r *http.Request, msg string, err error) {
	failure := llm.Classify(err)
	if failure == llm.FailureCanceled || r.Context().Err() != nil {
		s.logger.Debug("generation abandoned by client", zap.Error(err))
		return
	}
	s.logger.Error("generation failed",
		zap.String("path", r.URL.Path),
		zap.Stringer("failure", failure),
		zap.Error(err))
	status := http.StatusBadGateway
	if failure.Temporary() {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, msg)
}

func (s *Server) handleTeacherStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roles, err := s.users.CountByRole(ctx)
	if err != nil {
		s.fail(w, "count users", err)
		return
	}
	counts, err := s.catalog.Counts(ctx)
	if err != nil {
		s.fail(w, "count catalog", err)
		return
	}
	usage, err := s.events.LLMUsageByPurpose(ctx)
	if err != nil {
		s.fail(w, "llm usage", err)
		return
	}

	stats := api.TeacherStats{
		Students: roles["alumno"],
		Teachers: roles["docente"],
		Paths:    counts.Paths,
		Modules:  counts.Modules,
		Lessons:  counts.Lessons,
		ByRole:   roles,
	}
	for _, u := range usage {
		switch u.Purpose {
		case llm.PurposeAssessment:
			stats.Assessments = u.Calls
		case llm.PurposeExplanation:
			stats.Explanations = u.Calls
		}
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msgInternal)
}
