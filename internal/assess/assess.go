// Package assess defines the strict internal shape of a generated
// assessment, parses the loosely wrapped payloads the AI endpoint returns,
// and scores a quiz taken against it.
package assess

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/learninghub/internal/payload"
)

// ErrInvalid is wrapped by every Parse failure.
var ErrInvalid = errors.New("invalid assessment")

// Question is one multiple-choice item. Answer must equal one of Options.
type Question struct {
	Prompt      string   `json:"pregunta"`
	Options     []string `json:"opciones"`
	Answer      string   `json:"respuesta_correcta"`
	Explanation string   `json:"explicacion,omitempty"`
}

// AnswerIndex returns the index of the correct option, or -1.
func (q Question) AnswerIndex() int {
	for i, o := range q.Options {
		if o == q.Answer {
			return i
		}
	}
	return -1
}

// Assessment is a titled list of questions.
type Assessment struct {
	Title     string     `json:"titulo"`
	Questions []Question `json:"preguntas"`
}

// SchemaName identifies the assessment schema in LLM requests.
const SchemaName = "assessment"

// SchemaDefinition is the JSON Schema every assessment must satisfy. The
// backend sends it to the LLM; Parse validates against it.
var SchemaDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"titulo": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Short title for the assessment",
		},
		"preguntas": map[string]any{
			"type":     "array",
			"minItems": 1,
			"maxItems": 20,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pregunta": map[string]any{
						"type":      "string",
						"minLength": 1,
					},
					"opciones": map[string]any{
						"type":     "array",
						"minItems": 2,
						"maxItems": 6,
						"items":    map[string]any{"type": "string", "minLength": 1},
					},
					"respuesta_correcta": map[string]any{
						"type":        "string",
						"description": "Exact text of the correct option",
					},
					"explicacion": map[string]any{
						"type":        "string",
						"description": "Why the answer is correct (1-2 sentences)",
					},
				},
				"required":             []any{"pregunta", "opciones", "respuesta_correcta"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"titulo", "preguntas"},
	"additionalProperties": false,
}

// wrapperKeys are single-key envelopes seen around the assessment object.
var wrapperKeys = []string{"evaluacion", "assessment", "quiz", "data", "resultado"}

// Parse decodes raw into an Assessment. raw may be string-encoded, fenced,
// or nested under one wrapper key; anything else that does not match the
// schema exactly is rejected.
func Parse(raw []byte) (*Assessment, error) {
	doc := payload.Unwrap(raw)
	for i := 0; i < 3; i++ {
		inner, ok := peel(doc)
		if !ok {
			break
		}
		doc = payload.Unwrap(inner)
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: compile schema: %v", ErrInvalid, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var a Assessment
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the rules the schema cannot express.
func (a *Assessment) Validate() error {
	for i, q := range a.Questions {
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			key := strings.TrimSpace(o)
			if seen[key] {
				return fmt.Errorf("%w: question %d has duplicate option %q", ErrInvalid, i+1, o)
			}
			seen[key] = true
		}
		if q.AnswerIndex() < 0 {
			return fmt.Errorf("%w: question %d answer %q is not one of its options", ErrInvalid, i+1, q.Answer)
		}
	}
	return nil
}

// peel returns the value under a lone wrapper key.
func peel(doc []byte) ([]byte, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil || len(obj) != 1 {
		return nil, false
	}
	for _, k := range wrapperKeys {
		if inner, ok := obj[k]; ok {
			return inner, true
		}
	}
	return nil, false
}

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		// The compiler expects a decoded JSON value, not Go maps with typed
		// slices, so round-trip through encoding/json.
		defBytes, err := json.Marshal(SchemaDefinition)
		if err != nil {
			schemaErr = err
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://assessment.json"
		if err := c.AddResource(url, def); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = c.Compile(url)
	})
	return schemaCompiled, schemaErr
}
