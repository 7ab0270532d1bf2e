// Package backend is a local development server for the HTTP contract the
// client consumes: auth, the learning catalog, AI generation, assessment
// results and the teacher views over them.
package backend

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/learninghub/internal/store"
)

// Version is the API version reported by /version.
const Version = "v1.2.0"

// Options configures a Server.
type Options struct {
	Store  *store.Store
	Tutor  Tutor
	Logger *zap.Logger

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Server serves the backend API.
type Server struct {
	users    store.UserRepo
	tokens   store.TokenRepo
	catalog  store.CatalogRepo
	events   store.EventRepo
	results  store.ResultRepo
	progress store.ProgressRepo
	tutor    Tutor
	logger   *zap.Logger
	cost     int
	router   *mux.Router
	now      func() time.Time
}

// New builds a server over opts.Store. Without a Tutor the offline tutor is
// used.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	tutor := opts.Tutor
	if tutor == nil {
		tutor = NewOfflineTutor(opts.Store.EventRepo(), logger)
	}
	s := &Server{
		users:    opts.Store.UserRepo(),
		tokens:   opts.Store.TokenRepo(),
		catalog:  opts.Store.CatalogRepo(),
		events:   opts.Store.EventRepo(),
		results:  opts.Store.ResultRepo(),
		progress: opts.Store.ProgressRepo(),
		tutor:    tutor,
		logger:   logger,
		cost:     cost,
		now:      time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/rutas", s.handlePaths).Methods(http.MethodGet)
	r.HandleFunc("/modulos/ruta/{pathID}", s.handleModulesByPath).Methods(http.MethodGet)
	r.HandleFunc("/modulos/{moduleID}", s.handleModule).Methods(http.MethodGet)
	r.HandleFunc("/lessons/modulo/{moduleID}", s.handleLessonsByModule).Methods(http.MethodGet)
	r.HandleFunc("/lessons/{lessonID}", s.handleLesson).Methods(http.MethodGet)

	r.HandleFunc("/ai/evaluacion", s.handleAssessment).Methods(http.MethodPost)
	r.HandleFunc("/ai/explicar", s.handleExplain).Methods(http.MethodPost)

	r.Handle("/resultados", s.requireUser(http.HandlerFunc(s.handleSubmitResult))).
		Methods(http.MethodPost)

	r.Handle("/docente/estadisticas", s.requireRole("docente", http.HandlerFunc(s.handleTeacherStats))).
		Methods(http.MethodGet)
	r.Handle("/docente/estudiantes", s.requireRole("docente", http.HandlerFunc(s.handleStudents))).
		Methods(http.MethodGet)
	r.Handle("/docente/estudiantes/{studentID}", s.requireRole("docente", http.HandlerFunc(s.handleStudent))).
		Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Recurso no encontrado")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido")
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if id := r.Header.Get("X-Request-ID"); id != "" {
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", r.Header.Get("X-Request-ID")))
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *zap.Logger, ready chan<- string) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("backend listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("backend stopped")
	return nil
}
