package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/learninghub/internal/api"
	"github.com/abhisek/learninghub/internal/auth"
	"github.com/abhisek/learninghub/internal/llm"
	"github.com/abhisek/learninghub/internal/store"
)

type fixture struct {
	store   *store.Store
	server  *httptest.Server
	clock   *atomic.Time
	token   string
	auth    *api.AuthClient
	content *api.ContentClient
}

func newFixture(t *testing.T, tutor Tutor) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:backend_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, Seed(context.Background(), st, bcrypt.MinCost))

	clock := atomic.NewTime(time.Now())
	b := New(Options{Store: st, Tutor: tutor, BcryptCost: bcrypt.MinCost})
	b.now = clock.Load
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	f := &fixture{store: st, server: srv, clock: clock}
	c := api.NewClient(srv.URL, api.WithTokenSource(func() string { return f.token }))
	f.auth = api.NewAuthClient(c)
	f.content = api.NewContentClient(c)
	return f
}

func statusOf(t *testing.T, err error) *api.StatusError {
	t.Helper()
	var se *api.StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %T %v", err, err)
	return se
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, Seed(context.Background(), f.store, bcrypt.MinCost))

	counts, err := f.store.CatalogRepo().Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.CatalogCounts{Paths: 2, Modules: 5, Lessons: 8}, counts)

	u, err := f.store.UserRepo().ByEmail(context.Background(), DemoEmail)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, DemoPassword, u.PasswordHash, "password must be hashed")
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.auth.Login(ctx, "DEMO@test.com", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, res.Identity.Email)
	assert.Equal(t, "alumno", res.Identity.Role)
	assert.NotEmpty(t, res.Token)

	_, err = f.auth.Login(ctx, DemoEmail, "wrong!")
	se := statusOf(t, err)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "Credenciales inválidas", se.Message)
}

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, api.RegisterRequest{Name: "Ana", Email: "ana@x.io", Password: "secret", Role: "docente"})
	require.NoError(t, err)
	assert.Equal(t, "docente", res.Identity.Role)

	_, err = f.auth.Register(ctx, api.RegisterRequest{Name: "Ana", Email: "ANA@x.io", Password: "secret"})
	se := statusOf(t, err)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "El email ya está registrado", se.Message)

	_, err = f.auth.Register(ctx, api.RegisterRequest{Name: "Bo", Email: "bo@x.io", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err).Code)

	_, err = f.auth.Register(ctx, api.RegisterRequest{Name: "Bo", Email: "bo@x.io", Password: "secret", Role: "admin"})
	assert.Equal(t, "Rol inválido", statusOf(t, err).Message)
}

func TestCatalog(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	paths, err := f.content.Paths(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, api.ID("ai-fundamentals"), paths[0].ID)
	assert.Equal(t, 3, paths[0].ModuleCount)

	mods, err := f.content.ModulesByPath(ctx, "ai-fundamentals")
	require.NoError(t, err)
	var ids []api.ID
	for _, m := range mods {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []api.ID{"intro-ai", "neural-networks", "ml-ethics"}, ids)

	m, err := f.content.Module(ctx, "neural-networks")
	require.NoError(t, err)
	assert.Equal(t, "Redes neuronales", m.Title)

	lessons, err := f.content.LessonsByModule(ctx, "neural-networks")
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, api.ID("what-are-neural-networks"), lessons[0].ID)
	assert.Empty(t, lessons[0].Content, "lists omit bodies")

	l, err := f.content.Lesson(ctx, "perceptron")
	require.NoError(t, err)
	assert.Contains(t, l.Content, "## Ideas clave")

	_, err = f.content.Lesson(ctx, "nope")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err).Code)
	_, err = f.content.ModulesByPath(ctx, "nope")
	assert.Equal(t, "Ruta no encontrada", statusOf(t, err).Message)
}

func TestOfflineAssessmentRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	a, err := f.content.GenerateAssessment(context.Background(), api.AssessmentRequest{LessonID: "what-are-neural-networks", Questions: 3})
	require.NoError(t, err)
	require.Len(t, a.Questions, 3)
	for i, q := range a.Questions {
		assert.GreaterOrEqual(t, q.AnswerIndex(), 0, "question %d", i)
		assert.GreaterOrEqual(t, len(q.Options), 3)
	}
	// Rotation moves the answer off the first slot for the second question.
	assert.NotEqual(t, 0, a.Questions[1].AnswerIndex())

	_, err = f.content.GenerateAssessment(context.Background(), api.AssessmentRequest{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err).Code)
}

func TestExplain(t *testing.T) {
	f := newFixture(t, nil)
	text, err := f.content.Explain(context.Background(), api.ExplainRequest{Question: "¿Qué hace una función de activación?", LessonID: "what-are-neural-networks"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "En pocas palabras: "))
	assert.Contains(t, text, "**Peso**")

	_, err = f.content.Explain(context.Background(), api.ExplainRequest{})
	assert.Equal(t, "La pregunta es requerida", statusOf(t, err).Message)
}

func TestTeacherStats(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.content.TeacherStats(ctx)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err).Code)

	res, err := f.auth.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	f.token = res.Token
	_, err = f.content.TeacherStats(ctx)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err).Code)

	_, err = f.content.GenerateAssessment(ctx, api.AssessmentRequest{LessonID: "perceptron"})
	require.NoError(t, err)

	res, err = f.auth.Register(ctx, api.RegisterRequest{Name: "Profe", Email: "profe@x.io", Password: "secret", Role: "docente"})
	require.NoError(t, err)
	f.token = res.Token
	stats, err := f.content.TeacherStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Students)
	assert.Equal(t, 1, stats.Teachers)
	assert.Equal(t, 8, stats.Lessons)
	assert.Equal(t, 1, stats.Assessments)
	assert.Equal(t, 0, stats.Explanations)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess := auth.NewStore(f.auth, nil, nil)
	profe, err := sess.Register(ctx, auth.RegisterInput{
		Name: "Profe", Email: "profe@x.io", Secret: "secret", Confirm: "secret", Role: auth.RoleTeacher,
	})
	require.NoError(t, err)
	f.token = profe.Token
	_, err = f.content.TeacherStats(ctx)
	require.NoError(t, err)

	sess.Logout(ctx)
	assert.False(t, sess.IsAuthenticated())
	_, err = f.content.TeacherStats(ctx)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err).Code)

	// Revoking an already revoked token is harmless.
	require.NoError(t, f.auth.Logout(ctx, profe.Token))
}

func TestSubmitResult(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	report := api.ResultReport{ModuleID: "neural-networks", LessonID: "perceptron", Title: "Perceptrón", Correct: 4, Total: 5}

	err := f.content.SubmitResult(ctx, report)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err).Code)

	res, err := f.auth.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	f.token = res.Token

	bad := report
	bad.Correct = 6
	err = f.content.SubmitResult(ctx, bad)
	assert.Equal(t, "Puntuación inválida", statusOf(t, err).Message)

	bad = report
	bad.LessonID = "nope"
	err = f.content.SubmitResult(ctx, bad)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err).Code)

	require.NoError(t, f.content.SubmitResult(ctx, report))
	sum, err := f.store.ResultRepo().Summary(ctx, string(res.Identity.ID))
	require.NoError(t, err)
	assert.Equal(t, store.ResultSummary{Attempts: 1, Correct: 4, Total: 5, Lessons: 1}, sum)
}

func TestStudentProgress(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	ana, err := f.auth.Register(ctx, api.RegisterRequest{Name: "Ana", Email: "ana@x.io", Password: "secret", Role: "alumno"})
	require.NoError(t, err)
	f.token = ana.Token
	require.NoError(t, f.content.SubmitResult(ctx, api.ResultReport{LessonID: "perceptron", Correct: 4, Total: 5}))
	require.NoError(t, f.content.SubmitResult(ctx, api.ResultReport{LessonID: "what-are-neural-networks", Correct: 5, Total: 5}))

	_, err = f.content.Students(ctx)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err).Code)

	profe, err := f.auth.Register(ctx, api.RegisterRequest{Name: "Profe", Email: "profe@x.io", Password: "secret", Role: "docente"})
	require.NoError(t, err)
	f.token = profe.Token

	list, err := f.content.Students(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2, "teachers are not listed")
	byEmail := map[string]api.StudentProgress{}
	for _, p := range list {
		byEmail[p.Email] = p
	}

	a := byEmail["ana@x.io"]
	assert.Equal(t, 2, a.Attempts)
	assert.Equal(t, 2, a.Lessons)
	assert.Equal(t, 90, a.Score)
	assert.Equal(t, 25, a.Progress)
	assert.False(t, a.AtRisk)
	require.NotNil(t, a.LastActivity)

	demo := byEmail[DemoEmail]
	assert.True(t, demo.AtRisk)
	assert.Equal(t, api.RiskInactive, demo.Risk)
	assert.Nil(t, demo.LastActivity)

	detail, err := f.content.Student(ctx, string(a.ID))
	require.NoError(t, err)
	assert.Equal(t, "Ana", detail.Name)
	require.Len(t, detail.Recent, 2)
	assert.Equal(t, "what-are-neural-networks", detail.Recent[0].LessonID)
	assessed, lessons := 0, 0
	for _, m := range detail.Modules {
		assessed += m.Assessed
		lessons += m.Lessons
	}
	assert.Equal(t, 2, assessed)
	assert.Equal(t, 8, lessons)

	_, err = f.content.Student(ctx, "ghost")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err).Code)
	_, err = f.content.Student(ctx, string(profe.Identity.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(t, err).Code)

	// A week and a day without activity.
	f.clock.Store(f.clock.Load().Add(8 * 24 * time.Hour))
	list, err = f.content.Students(ctx)
	require.NoError(t, err)
	for _, p := range list {
		assert.Equal(t, api.RiskInactive, p.Risk, p.Email)
	}
}

func TestRiskReasons(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	s := &Server{now: func() time.Time { return now }}
	miss := store.AssessmentResult{Correct: 1, Total: 5}
	pass := store.AssessmentResult{Correct: 4, Total: 5}
	summary := func(attempts, correct, total int, last time.Time) store.StudentSummary {
		return store.StudentSummary{
			ResultSummary: store.ResultSummary{Attempts: attempts, Correct: correct, Total: total},
			LastAt:        last,
		}
	}

	tests := []struct {
		name   string
		sum    store.StudentSummary
		recent []store.AssessmentResult
		want   string
	}{
		{"on track", summary(3, 12, 15, now), []store.AssessmentResult{pass, pass, miss}, ""},
		{"never assessed", summary(0, 0, 0, time.Time{}), nil, api.RiskInactive},
		{"idle", summary(3, 12, 15, now.Add(-8*24*time.Hour)), nil, api.RiskInactive},
		{"three misses", summary(4, 7, 20, now), []store.AssessmentResult{miss, miss, miss}, api.RiskFailing},
		{"low average", summary(2, 5, 10, now), []store.AssessmentResult{pass, miss}, api.RiskLowScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.risk(tt.sum, tt.recent))
		})
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t, nil)
	v, err := f.content.CheckVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Version, v)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := http.Get(f.server.URL + "/nada")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestLLMTutor(t *testing.T) {
	doc := `{"titulo":"Perceptrón","preguntas":[{"pregunta":"¿Cuántas neuronas tiene?","opciones":["Una","Cien"],"respuesta_correcta":"Una"}]}`
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(doc)},
		llm.MockResponse{Content: json.RawMessage(`"Una sola neurona que separa dos clases."`)},
	)
	f := newFixture(t, nil)
	provider := llm.Decorate(mock, llm.Config{}, f.store.EventRepo(), nil)
	tutor := NewLLMTutor(provider)

	lesson, err := f.store.CatalogRepo().Lesson(context.Background(), "perceptron")
	require.NoError(t, err)

	a, err := tutor.Assessment(context.Background(), AssessmentInput{Lesson: lesson, Questions: 1})
	require.NoError(t, err)
	assert.Equal(t, "Perceptrón", a.Title)

	text, err := tutor.Explain(context.Background(), ExplainInput{Question: "¿Qué es?", Lesson: lesson})
	require.NoError(t, err)
	assert.Equal(t, "Una sola neurona que separa dos clases.", text)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	require.NotNil(t, calls[0].Schema)
	assert.Equal(t, "assessment", calls[0].Schema.Name)
	assert.Contains(t, calls[0].Messages[0].Content, "El perceptrón")
	assert.Nil(t, calls[1].Schema)

	usage, err := f.store.EventRepo().LLMUsageByPurpose(context.Background())
	require.NoError(t, err)
	assert.Len(t, usage, 2)
}

func TestKeyPoints(t *testing.T) {
	pts := keyPoints("intro\n\n- **Peso**: importancia de una conexión.\n* **Sesgo** : desplazamiento\n- sin formato\n")
	require.Len(t, pts, 2)
	assert.Equal(t, point{term: "Peso", def: "importancia de una conexión"}, pts[0])
	assert.Equal(t, "Sesgo", pts[1].term)
}

func TestListenAndServeShutsDown(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", New(Options{Store: f.store, BcryptCost: bcrypt.MinCost}), nil, ready)
	}()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/version")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestGenerationFailureStatus(t *testing.T) {
	down := NewLLMTutor(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}))
	f := newFixture(t, down)
	_, err := f.content.Explain(context.Background(), api.ExplainRequest{Question: "¿Qué es?", LessonID: "perceptron"})
	se := statusOf(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "No se pudo generar la explicación", se.Message)

	garbled := NewLLMTutor(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"titulo":"x"}`)}))
	f = newFixture(t, garbled)
	_, err = f.content.GenerateAssessment(context.Background(), api.AssessmentRequest{LessonID: "perceptron"})
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err).Code)
}
