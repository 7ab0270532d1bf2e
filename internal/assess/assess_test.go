package assess

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "titulo": "Redes neuronales",
  "preguntas": [
    {
      "pregunta": "¿Qué es una neurona artificial?",
      "opciones": ["Una célula", "Una unidad de cálculo", "Un cable"],
      "respuesta_correcta": "Una unidad de cálculo",
      "explicacion": "Combina entradas ponderadas."
    },
    {
      "pregunta": "¿Qué ajusta el entrenamiento?",
      "opciones": ["Los pesos", "El teclado"],
      "respuesta_correcta": "Los pesos"
    }
  ]
}`

func TestParseShapes(t *testing.T) {
	quoted := strconv.Quote(validDoc)
	fenced := strconv.Quote("```json\n" + validDoc + "\n```")

	tests := []struct {
		name string
		in   string
	}{
		{"plain object", validDoc},
		{"string encoded", quoted},
		{"fenced string", fenced},
		{"raw fence", "```json\n" + validDoc + "\n```"},
		{"wrapped", `{"evaluacion": ` + validDoc + `}`},
		{"wrapped string", `{"evaluacion": ` + quoted + `}`},
		{"double wrapped", `{"data": {"assessment": ` + fenced + `}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, "Redes neuronales", a.Title)
			require.Len(t, a.Questions, 2)
			assert.Equal(t, 1, a.Questions[0].AnswerIndex())
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `hola`},
		{"missing questions", `{"titulo": "x"}`},
		{"empty questions", `{"titulo": "x", "preguntas": []}`},
		{"extra field", `{"titulo": "x", "preguntas": [], "nivel": 2}`},
		{"answer index instead of text", `{"titulo": "x", "preguntas": [{"pregunta": "p", "opciones": ["a", "b"], "respuesta_correcta": 1}]}`},
		{"answer not an option", `{"titulo": "x", "preguntas": [{"pregunta": "p", "opciones": ["a", "b"], "respuesta_correcta": "c"}]}`},
		{"single option", `{"titulo": "x", "preguntas": [{"pregunta": "p", "opciones": ["a"], "respuesta_correcta": "a"}]}`},
		{"duplicate options", `{"titulo": "x", "preguntas": [{"pregunta": "p", "opciones": ["a", "a "], "respuesta_correcta": "a"}]}`},
		{"english keys", `{"title": "x", "questions": []}`},
		{"two wrapper keys", `{"evaluacion": {}, "data": {}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), "error %v should wrap ErrInvalid", err)
		})
	}
}

func TestSchemaDefinitionIsJSON(t *testing.T) {
	_, err := json.Marshal(SchemaDefinition)
	require.NoError(t, err)
}

func TestQuiz(t *testing.T) {
	a, err := Parse([]byte(validDoc))
	require.NoError(t, err)
	q := NewQuiz(a)

	assert.Equal(t, 2, q.Len())
	assert.False(t, q.Next(), "cannot skip an unanswered question")

	fb, err := q.Answer(1)
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, "Combina entradas ponderadas.", fb.Explanation)

	_, err = q.Answer(0)
	assert.ErrorIs(t, err, ErrAnswered)

	assert.True(t, q.Next())
	_, err = q.Answer(5)
	assert.ErrorIs(t, err, ErrBadOption)

	fb, err = q.Answer(1)
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, 0, fb.AnswerIndex)

	assert.False(t, q.Next())
	assert.True(t, q.Done())
	correct, total := q.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)
	assert.Equal(t, 50, q.Percent())

	_, err = q.Answer(0)
	assert.ErrorIs(t, err, ErrNoQuestion)
}
