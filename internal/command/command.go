// Package command turns free text typed into the command bar into an
// intent. Several keyword sets can match the same text; the first rule in
// precedence order wins:
//
//  1. an exact screen name ("lesson", "ai-core")
//  2. session and program control (logout, quit, back)
//  3. a question for the assistant ("pregunta ...", "ask ...")
//  4. screen keywords, in the order of the keywords table
package command

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/abhisek/learninghub/internal/nav"
)

// Kind classifies an Intent.
type Kind int

const (
	Unknown Kind = iota
	Navigate
	Back
	Logout
	Quit
	Ask
)

func (k Kind) String() string {
	switch k {
	case Navigate:
		return "navigate"
	case Back:
		return "back"
	case Logout:
		return "logout"
	case Quit:
		return "quit"
	case Ask:
		return "ask"
	}
	return "unknown"
}

// Intent is the parsed command.
type Intent struct {
	Kind     Kind
	Screen   nav.Screen
	Question string
}

var controls = []struct {
	kind    Kind
	phrases []string
}{
	{Logout, []string{"cerrar sesion", "logout", "log out", "sign out"}},
	{Quit, []string{"salir", "quit", "exit"}},
	{Back, []string{"atras", "volver", "back"}},
}

var askPrefixes = []string{"pregunta", "preguntar", "explica", "explicame", "ask", "explain"}

// keywords is ordered: more specific screens come before the screens whose
// words they contain ("evaluacion de la leccion" is an assessment).
var keywords = []struct {
	screen nav.Screen
	words  []string
}{
	{nav.TeacherDashboard, []string{"docente", "profesor", "teacher", "estadisticas"}},
	{nav.Assessment, []string{"evaluacion", "examen", "quiz", "test", "assessment"}},
	{nav.Lesson, []string{"leccion", "lesson", "clase"}},
	{nav.ModuleMap, []string{"modulo", "module"}},
	{nav.PathOverview, []string{"ruta", "path"}},
	{nav.Map, []string{"mapa", "misiones", "map", "mission"}},
	{nav.AICore, []string{"ia", "ai", "tutor", "asistente", "nucleo"}},
	{nav.Accessibility, []string{"accesibilidad", "ajustes", "configuracion", "settings", "accessibility"}},
	{nav.UserProfile, []string{"perfil", "profile", "cuenta"}},
	{nav.Welcome, []string{"inicio", "home", "control", "bienvenida", "welcome"}},
}

// Parse maps text to an intent.
func Parse(text string) Intent {
	folded := Normalize(text)
	if folded == "" {
		return Intent{}
	}
	if s, ok := nav.ParseScreen(strings.ReplaceAll(folded, " ", "-")); ok {
		return Intent{Kind: Navigate, Screen: s}
	}

	words := strings.Fields(folded)
	for _, c := range controls {
		for _, p := range c.phrases {
			if containsPhrase(words, strings.Fields(p)) {
				return Intent{Kind: c.kind}
			}
		}
	}

	for _, p := range askPrefixes {
		if words[0] != p {
			continue
		}
		if q := questionAfter(text); q != "" {
			return Intent{Kind: Ask, Question: q}
		}
	}

	for _, k := range keywords {
		for _, w := range k.words {
			if containsPhrase(words, []string{w}) {
				return Intent{Kind: Navigate, Screen: k.screen}
			}
		}
	}
	return Intent{}
}

// Normalize lowercases text, strips accents and punctuation and collapses
// spaces.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return ' '
	}, folded)
	return strings.Join(strings.Fields(cleaned), " ")
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j := range phrase {
			if words[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// questionAfter returns the original text after its first word, so the
// question keeps its accents and punctuation.
func questionAfter(text string) string {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimLeft(strings.TrimSpace(text[i:]), ":,")
}
