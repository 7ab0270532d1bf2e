// Package auth owns the signed-in session: it is the single source of truth
// for whether the client is authenticated.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/store"
)

// Roles a user can register with.
const (
	RoleStudent = "alumno"
	RoleTeacher = "docente"
)

// MinSecretLength is the shortest secret Register accepts.
const MinSecretLength = 6

// Session is the authenticated identity plus the token the backend issued.
type Session struct {
	ID    string
	Email string
	Name  string
	Role  string
	Token string
}

// IsTeacher reports whether the session belongs to a teacher.
func (s Session) IsTeacher() bool { return s.Role == RoleTeacher }

// Initials returns up to two upper-case initials of the display name,
// falling back to the email.
func (s Session) Initials() string {
	src := s.Name
	if strings.TrimSpace(src) == "" {
		src = s.Email
	}
	var out []rune
	for _, f := range strings.Fields(src) {
		r := []rune(f)
		out = append(out, r[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

// Gateway is the remote login/register/logout boundary. *api.AuthClient
// implements it.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

// RegisterInput is the register form as the user filled it in.
type RegisterInput struct {
	Name    string
	Email   string
	Secret  string
	Confirm string
	Role    string
}

// Store holds the current Session. Reads are safe from any goroutine;
// Login and Register run inside tea.Cmd goroutines.
type Store struct {
	gateway Gateway
	repo    store.SessionRepo
	logger  *zap.Logger

	mu      sync.RWMutex
	session *Session

	initOnce sync.Once
	initErr  error
}

// NewStore creates a session store. repo may be nil, in which case the
// session lives in memory only.
func NewStore(gateway Gateway, repo store.SessionRepo, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{gateway: gateway, repo: repo, logger: logger}
}

// Init reads the persisted session. Only the first call touches storage.
func (s *Store) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		if s.repo == nil {
			return
		}
		rec, err := s.repo.Load(ctx)
		if err != nil {
			s.initErr = err
			s.logger.Warn("load persisted session", zap.Error(err))
			return
		}
		if rec == nil {
			return
		}
		s.set(&Session{
			ID:    rec.UserID,
			Email: rec.Email,
			Name:  rec.Name,
			Role:  rec.Role,
			Token: rec.Token,
		})
		s.logger.Info("session restored", zap.String("user_id", rec.UserID))
	})
	return s.initErr
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// Current returns a copy of the session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Token returns the access token, or "" when signed out. It satisfies the
// api client's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Login authenticates with the gateway. On failure the current session is
// left as it was.
func (s *Store) Login(ctx context.Context, email, secret string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, &ValidationError{Field: "email", Message: "El email es requerido"}
	}
	if secret == "" {
		return Session{}, &ValidationError{Field: "password", Message: "La contraseña es requerida"}
	}

	res, err := s.gateway.Login(ctx, email, secret)
	if err != nil {
		s.logger.Info("login rejected", zap.String("email", email), zap.Error(err))
		return Session{}, reject(err, LoginFailed)
	}
	return s.establish(ctx, res), nil
}

// Register validates the form locally, then creates the account. Validation
// failures never reach the gateway or storage.
func (s *Store) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := validateRegister(&in); err != nil {
		return Session{}, err
	}

	res, err := s.gateway.Register(ctx, api.RegisterRequest{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Secret,
		Role:     in.Role,
	})
	if err != nil {
		s.logger.Info("register rejected", zap.String("email", in.Email), zap.Error(err))
		return Session{}, reject(err, RegisterFailed)
	}
	return s.establish(ctx, res), nil
}

// Logout revokes the token on the backend, then clears the session in
// memory and in storage. It never fails; gateway and storage errors are
// logged.
func (s *Store) Logout(ctx context.Context) {
	if token := s.Token(); token != "" && s.gateway != nil {
		if err := s.gateway.Logout(ctx, token); err != nil {
			s.logger.Warn("revoke token", zap.Error(err))
		}
	}
	s.set(nil)
	if s.repo == nil {
		return
	}
	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Warn("clear persisted session", zap.Error(err))
	}
}

func (s *Store) establish(ctx context.Context, res *api.AuthResult) Session {
	sess := Session{
		ID:    string(res.Identity.ID),
		Email: res.Identity.Email,
		Name:  res.Identity.Name,
		Role:  res.Identity.Role,
		Token: res.Token,
	}
	s.set(&sess)
	if s.repo != nil {
		err := s.repo.Save(ctx, store.SessionRecord{
			UserID: sess.ID,
			Email:  sess.Email,
			Name:   sess.Name,
			Role:   sess.Role,
			Token:  sess.Token,
		})
		if err != nil {
			// The session still holds for this run.
			s.logger.Warn("persist session", zap.Error(err))
		}
	}
	s.logger.Info("signed in", zap.String("user_id", sess.ID), zap.String("role", sess.Role))
	return sess
}

func (s *Store) set(sess *Session) {
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
}

func validateRegister(in *RegisterInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Message: "El nombre es requerido"}
	case !strings.Contains(in.Email, "@"):
		return &ValidationError{Field: "email", Message: "Email inválido"}
	case len(in.Secret) < MinSecretLength:
		return &ValidationError{Field: "password", Message: "La contraseña debe tener al menos 6 caracteres"}
	case in.Secret != in.Confirm:
		return &ValidationError{Field: "confirm", Message: "Las contraseñas no coinciden"}
	case strings.TrimSpace(in.Role) == "":
		return &ValidationError{Field: "role", Message: "Selecciona un rol"}
	}
	return nil
}

// reject turns a gateway failure into an AuthError, keeping the gateway's
// own message when it sent one.
func reject(err error, generic string) *AuthError {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return &AuthError{Reason: se.Message, Err: err}
	}
	return &AuthError{Reason: generic, Err: err}
}
