package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/learninghub/internal/nav"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"", Intent{}},
		{"   ", Intent{}},
		{"lesson", Intent{Kind: Navigate, Screen: nav.Lesson}},
		{"AI Core", Intent{Kind: Navigate, Screen: nav.AICore}},
		{"teacher-dashboard", Intent{Kind: Navigate, Screen: nav.TeacherDashboard}},
		{"abrir la lección", Intent{Kind: Navigate, Screen: nav.Lesson}},
		{"Evaluación de la lección", Intent{Kind: Navigate, Screen: nav.Assessment}},
		{"ir al mapa de misiones", Intent{Kind: Navigate, Screen: nav.Map}},
		{"ajustes", Intent{Kind: Navigate, Screen: nav.Accessibility}},
		{"mi perfil", Intent{Kind: Navigate, Screen: nav.UserProfile}},
		{"panel docente", Intent{Kind: Navigate, Screen: nav.TeacherDashboard}},
		{"volver", Intent{Kind: Back}},
		{"cerrar sesión", Intent{Kind: Logout}},
		{"salir", Intent{Kind: Quit}},
		{"pregunta ¿qué es una lección?", Intent{Kind: Ask, Question: "¿qué es una lección?"}},
		{"explain: backpropagation", Intent{Kind: Ask, Question: "backpropagation"}},
		{"pregunta", Intent{}},
		{"hola", Intent{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestControlBeatsKeywords(t *testing.T) {
	// "salir del mapa" names a screen but quitting wins.
	assert.Equal(t, Quit, Parse("salir del mapa").Kind)
	// A question that mentions a screen stays a question.
	assert.Equal(t, Ask, Parse("pregunta qué hay en el módulo").Kind)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "evaluacion de la leccion", Normalize("  ¡Evaluación   de la LECCIÓN!  "))
	assert.Equal(t, "ai-core", Normalize("ai-core"))
}
