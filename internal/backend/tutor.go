package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/assess"
	"github.com/abhisek/learninghub/internal/llm"
	"github.com/abhisek/learninghub/internal/store"
)

// MaxQuestions caps the questions per generated assessment.
const MaxQuestions = 20

// AssessmentInput is what a tutor needs to write a quiz.
type AssessmentInput struct {
	Lesson    *store.Lesson
	Topic     string
	Questions int
}

// ExplainInput is a learner question, optionally about a lesson.
type ExplainInput struct {
	Question string
	Context  string
	Lesson   *store.Lesson
}

// Tutor generates the AI content served under /ai.
type Tutor interface {
	Assessment(ctx context.Context, in AssessmentInput) (*assess.Assessment, error)
	Explain(ctx context.Context, in ExplainInput) (string, error)
}

// LLMTutor asks a language model.
type LLMTutor struct {
	provider llm.Provider
}

// NewLLMTutor wraps a provider, typically from llm.NewProvider.
func NewLLMTutor(p llm.Provider) *LLMTutor {
	return &LLMTutor{provider: p}
}

const assessmentSystem = `Eres un tutor de inteligencia artificial para estudiantes hispanohablantes.
Escribe preguntas de opción múltiple claras, con una sola respuesta correcta.
"respuesta_correcta" debe copiar exactamente el texto de una de las "opciones".
Incluye una "explicacion" breve para cada pregunta.`

const explainSystem = `Eres un tutor paciente. Explica con palabras sencillas, en español,
en no más de tres párrafos cortos. Usa un ejemplo cotidiano si ayuda.`

func (t *LLMTutor) Assessment(ctx context.Context, in AssessmentInput) (*assess.Assessment, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Genera una evaluación de %d preguntas", clampQuestions(in.Questions))
	if in.Topic != "" {
		fmt.Fprintf(&prompt, " sobre %q", in.Topic)
	}
	prompt.WriteString(".\n")
	if in.Lesson != nil {
		fmt.Fprintf(&prompt, "\nLección: %s\n\n%s\n", in.Lesson.Title, in.Lesson.Content)
	}

	req := llm.UserPrompt(assessmentSystem, prompt.String())
	req.Schema = &llm.Schema{
		Name:        assess.SchemaName,
		Description: "Evaluación de opción múltiple",
		Definition:  assess.SchemaDefinition,
	}
	req.MaxTokens = 2048
	req.Temperature = 0.4

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, llm.PurposeAssessment), req)
	if err != nil {
		return nil, err
	}
	return assess.Parse(resp.Content)
}

func (t *LLMTutor) Explain(ctx context.Context, in ExplainInput) (string, error) {
	var prompt strings.Builder
	prompt.WriteString(in.Question)
	if in.Context != "" {
		fmt.Fprintf(&prompt, "\n\nContexto: %s", in.Context)
	}
	if in.Lesson != nil {
		fmt.Fprintf(&prompt, "\n\nLección de referencia (%s):\n%s", in.Lesson.Title, in.Lesson.Content)
	}
	req := llm.UserPrompt(explainSystem, prompt.String())
	req.MaxTokens = 600
	req.Temperature = 0.3

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, llm.PurposeExplanation), req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// OfflineTutor builds content from the lesson's key-point list without any
// model. Output is deterministic. Every call is still recorded as an LLM
// event so usage statistics stay meaningful.
type OfflineTutor struct {
	events store.EventRepo
	logger *zap.Logger
}

// NewOfflineTutor creates the offline tutor. events may be nil.
func NewOfflineTutor(events store.EventRepo, logger *zap.Logger) *OfflineTutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfflineTutor{events: events, logger: logger}
}

// keyPoint matches "- **Term**: definition".
var keyPoint = regexp.MustCompile(`(?m)^\s*[-*]\s+\*\*(.+?)\*\*\s*:\s*(.+?)\s*$`)

type point struct{ term, def string }

func keyPoints(content string) []point {
	var out []point
	for _, m := range keyPoint.FindAllStringSubmatch(content, -1) {
		out = append(out, point{term: m[1], def: strings.TrimSuffix(m[2], ".")})
	}
	return out
}

// fallbackDistractors pad option lists for lessons with few key points.
var fallbackDistractors = []string{
	"Un componente de hardware del ordenador",
	"Un formato de archivo para imágenes",
	"Un lenguaje de programación",
}

func (t *OfflineTutor) Assessment(ctx context.Context, in AssessmentInput) (*assess.Assessment, error) {
	start := time.Now()
	if in.Lesson == nil {
		return nil, fmt.Errorf("offline tutor needs a lesson")
	}
	points := keyPoints(in.Lesson.Content)
	if len(points) == 0 {
		points = []point{{term: in.Lesson.Title, def: firstParagraph(in.Lesson.Content)}}
	}

	n := min(clampQuestions(in.Questions), len(points))
	a := &assess.Assessment{Title: "Evaluación: " + in.Lesson.Title}
	for i := 0; i < n; i++ {
		p := points[i]
		opts := []string{p.def}
		for j := 1; len(opts) < 4 && j < len(points); j++ {
			opts = append(opts, points[(i+j)%len(points)].def)
		}
		for _, d := range fallbackDistractors {
			if len(opts) >= 3 {
				break
			}
			opts = append(opts, d)
		}
		// Rotate so the answer is not always first.
		shift := i % len(opts)
		opts = append(append([]string{}, opts[shift:]...), opts[:shift]...)

		a.Questions = append(a.Questions, assess.Question{
			Prompt:      fmt.Sprintf("¿Qué describe mejor «%s»?", p.term),
			Options:     opts,
			Answer:      p.def,
			Explanation: fmt.Sprintf("%s: %s.", p.term, p.def),
		})
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	body, _ := json.Marshal(a)
	t.record(ctx, llm.PurposeAssessment, start, string(body))
	return a, nil
}

func (t *OfflineTutor) Explain(ctx context.Context, in ExplainInput) (string, error) {
	start := time.Now()
	var text string
	if in.Lesson != nil {
		text = bestParagraph(in.Lesson.Content, in.Question+" "+in.Context)
		if pts := keyPoints(in.Lesson.Content); len(pts) > 0 {
			var b strings.Builder
			b.WriteString(text)
			b.WriteString("\n\nPara recordar:\n")
			for _, p := range pts {
				fmt.Fprintf(&b, "\n- **%s**: %s.", p.term, p.def)
			}
			text = b.String()
		}
	}
	if strings.TrimSpace(text) == "" {
		text = "No tengo una lección de referencia para esa pregunta. Intenta abrir una lección y pedir la explicación desde allí."
	}
	text = "En pocas palabras: " + text
	t.record(ctx, llm.PurposeExplanation, start, text)
	return text, nil
}

func (t *OfflineTutor) record(ctx context.Context, purpose string, start time.Time, body string) {
	if t.events == nil {
		return
	}
	err := t.events.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider:     llm.ProviderOffline,
		Model:        llm.ProviderOffline,
		Purpose:      purpose,
		LatencyMs:    time.Since(start).Milliseconds(),
		Success:      true,
		ResponseBody: body,
	})
	if err != nil {
		t.logger.Warn("record offline generation", zap.Error(err))
	}
}

func clampQuestions(n int) int {
	switch {
	case n <= 0:
		return 5
	case n > MaxQuestions:
		return MaxQuestions
	}
	return n
}

// paragraphs returns the prose paragraphs of a markdown body, skipping
// headings and list items.
func paragraphs(content string) []string {
	var out []string
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") || strings.HasPrefix(block, "-") {
			continue
		}
		out = append(out, strings.Join(strings.Fields(block), " "))
	}
	return out
}

func firstParagraph(content string) string {
	if ps := paragraphs(content); len(ps) > 0 {
		return ps[0]
	}
	return strings.TrimSpace(content)
}

// bestParagraph picks the paragraph sharing the most words with query.
func bestParagraph(content, query string) string {
	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, "¿?¡!.,;:")
		if len([]rune(w)) > 3 {
			words[w] = true
		}
	}
	best, bestScore := "", -1
	for _, p := range paragraphs(content) {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(p)) {
			if words[strings.Trim(w, ".,;:")] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = p, score
		}
	}
	return best
}
