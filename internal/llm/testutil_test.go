package llm

// quizSchema is a cut-down assessment schema used across provider tests.
func quizSchema() *Schema {
	return &Schema{
		Name: "quiz",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"titulo": map[string]any{"type": "string"},
				"preguntas": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"pregunta": map[string]any{"type": "string"},
							"opciones": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []any{"pregunta", "opciones"},
					},
				},
			},
			"required":             []any{"titulo", "preguntas"},
			"additionalProperties": false,
		},
	}
}

const quizJSON = `{"titulo":"Redes","preguntas":[{"pregunta":"¿Qué es un perceptrón?","opciones":["Una neurona","Un disco"]}]}`
