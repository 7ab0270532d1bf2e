package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/payload"
)

// MinBackendVersion is the oldest backend API this client understands.
const MinBackendVersion = "v1.0.0"

// AssessmentRequest is the body of POST /ai/evaluacion.
type AssessmentRequest struct {
	LessonID  string `json:"leccion_id"`
	Topic     string `json:"tema"`
	Questions int    `json:"num_preguntas"`
}

// ExplainRequest is the body of POST /ai/explicar.
type ExplainRequest struct {
	Question string `json:"pregunta"`
	Context  string `json:"contexto,omitempty"`
	LessonID string `json:"leccion_id,omitempty"`
}

// ContentClient reads the learning catalog and calls the AI endpoints.
// Every method returns *FetchError on failure.
type ContentClient struct {
	c *Client
}

// NewContentClient creates a content gateway on top of c.
func NewContentClient(c *Client) *ContentClient {
	return &ContentClient{c: c}
}

// Paths lists the learning paths.
func (cc *ContentClient) Paths(ctx context.Context) ([]Path, error) {
	var out []Path
	if err := cc.get(ctx, "paths", "/rutas", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ModulesByPath lists the modules of a path sorted by their order field.
func (cc *ContentClient) ModulesByPath(ctx context.Context, pathID string) ([]Module, error) {
	var out []Module
	if err := cc.get(ctx, "modules", "/modulos/ruta/"+url.PathEscape(pathID), &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// Module returns one module.
func (cc *ContentClient) Module(ctx context.Context, moduleID string) (*Module, error) {
	var out Module
	if err := cc.getOne(ctx, "module", "/modulos/"+url.PathEscape(moduleID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LessonsByModule lists the lessons of a module in order.
func (cc *ContentClient) LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error) {
	var out []Lesson
	if err := cc.get(ctx, "lessons", "/lessons/modulo/"+url.PathEscape(moduleID), &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// Lesson returns one lesson including its body.
func (cc *ContentClient) Lesson(ctx context.Context, lessonID string) (*Lesson, error) {
	var out Lesson
	if err := cc.getOne(ctx, "lesson", "/lessons/"+url.PathEscape(lessonID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAssessment asks the backend for a quiz on a lesson. The payload is
// parsed strictly; malformed shapes fail with ErrMalformed.
func (cc *ContentClient) GenerateAssessment(ctx context.Context, req AssessmentRequest) (*assess.Assessment, error) {
	const op = "generate assessment"
	body, err := cc.c.do(ctx, http.MethodPost, "/ai/evaluacion", req)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	data, err := openEnvelope(body)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	a, err := assess.Parse(data)
	if err != nil {
		cc.c.logger.Warn("malformed assessment payload",
			zap.String("lesson_id", req.LessonID),
			zap.Error(err),
			zap.String("payload", truncate(string(data), 512)))
		return nil, &FetchError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return a, nil
}

// Explain asks the AI for a plain-language explanation.
func (cc *ContentClient) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	const op = "explain"
	body, err := cc.c.do(ctx, http.MethodPost, "/ai/explicar", req)
	if err != nil {
		return "", &FetchError{Op: op, Err: err}
	}
	data, err := openEnvelope(body)
	if err != nil {
		return "", &FetchError{Op: op, Err: err}
	}

	var w struct {
		Explicacion string `json:"explicacion"`
		Respuesta   string `json:"respuesta"`
	}
	if json.Unmarshal(data, &w) == nil {
		if text := first(w.Explicacion, w.Respuesta); text != "" {
			return payload.StripFences(text), nil
		}
	}
	text := payload.Text(data)
	if text == "" || text == "null" {
		return "", &FetchError{Op: op, Err: fmt.Errorf("%w: empty explanation", ErrMalformed)}
	}
	return text, nil
}

// TeacherStats returns dashboard aggregates. Requires a teacher token.
func (cc *ContentClient) TeacherStats(ctx context.Context) (*TeacherStats, error) {
	var out TeacherStats
	if err := cc.getOne(ctx, "teacher stats", "/docente/estadisticas", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitResult reports a finished assessment for the signed-in user.
func (cc *ContentClient) SubmitResult(ctx context.Context, rep ResultReport) error {
	const op = "submit result"
	body, err := cc.c.do(ctx, http.MethodPost, "/resultados", rep)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if _, err := openEnvelope(body); err != nil {
		return &FetchError{Op: op, Err: err}
	}
	return nil
}

// Students lists every student with their progress. Requires a teacher
// token.
func (cc *ContentClient) Students(ctx context.Context) ([]StudentProgress, error) {
	var out []StudentProgress
	if err := cc.get(ctx, "students", "/docente/estudiantes", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Student returns one student's progress, module coverage and recent
// results. Requires a teacher token.
func (cc *ContentClient) Student(ctx context.Context, id string) (*StudentDetail, error) {
	var out StudentDetail
	if err := cc.getOne(ctx, "student", "/docente/estudiantes/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Version returns the backend's reported version.
func (cc *ContentClient) Version(ctx context.Context) (*VersionInfo, error) {
	var out VersionInfo
	if err := cc.getOne(ctx, "version", "/version", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckVersion fails with ErrIncompatibleBackend when the backend is older
// than MinBackendVersion or reports a version that is not semver.
func (cc *ContentClient) CheckVersion(ctx context.Context) (string, error) {
	info, err := cc.Version(ctx)
	if err != nil {
		return "", err
	}
	return info.Version, Compatible(info.Version)
}

// Compatible reports whether version satisfies MinBackendVersion.
func Compatible(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrIncompatibleBackend, version)
	}
	if semver.Compare(version, MinBackendVersion) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrIncompatibleBackend, version, MinBackendVersion)
	}
	if semver.Major(version) != semver.Major(MinBackendVersion) {
		return fmt.Errorf("%w: major version %s", ErrIncompatibleBackend, semver.Major(version))
	}
	return nil
}

// get decodes a list payload. A null payload is an empty list.
func (cc *ContentClient) get(ctx context.Context, op, path string, out any) error {
	body, err := cc.c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	data, err := openEnvelope(body)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if isNull(data) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

// getOne decodes an object payload. A null payload is malformed.
func (cc *ContentClient) getOne(ctx context.Context, op, path string, out any) error {
	body, err := cc.c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	data, err := openEnvelope(body)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	if isNull(data) {
		return &FetchError{Op: op, Err: fmt.Errorf("%w: empty payload", ErrMalformed)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
