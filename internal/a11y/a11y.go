// Package a11y holds the accessibility preferences, their persistence under
// a single settings key and the effect they have on rendering.
package a11y

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/learninghub/internal/store"
	"github.com/abhisek/learninghub/internal/ui/theme"
)

// Key is the settings key the preferences are stored under.
const Key = "accessibility-settings"

// Settings are the accessibility toggles. The JSON names are the ones the
// web client stored, so an exported blob can be pasted in unchanged.
type Settings struct {
	HighContrast  bool `json:"highContrast"`
	DyslexiaFont  bool `json:"dyslexiaFont"`
	TextToSpeech  bool `json:"textToSpeech"`
	LargeText     bool `json:"largeText"`
	ReducedMotion bool `json:"reducedMotion"`
	DarkMode      bool `json:"darkMode"`
}

// Defaults returns the settings used before anything is saved.
func Defaults() Settings {
	return Settings{DarkMode: true}
}

// Toggle identifies one setting.
type Toggle int

const (
	HighContrast Toggle = iota
	DyslexiaFont
	TextToSpeech
	LargeText
	ReducedMotion
	DarkMode
)

// Toggles lists every setting in display order.
var Toggles = []Toggle{HighContrast, DyslexiaFont, TextToSpeech, LargeText, ReducedMotion, DarkMode}

// ID returns the message id stem for t, e.g. "a11y.high_contrast".
func (t Toggle) ID() string {
	return [...]string{
		"a11y.high_contrast",
		"a11y.dyslexia_font",
		"a11y.text_to_speech",
		"a11y.large_text",
		"a11y.reduced_motion",
		"a11y.dark_mode",
	}[t]
}

func (s *Settings) field(t Toggle) *bool {
	switch t {
	case HighContrast:
		return &s.HighContrast
	case DyslexiaFont:
		return &s.DyslexiaFont
	case TextToSpeech:
		return &s.TextToSpeech
	case LargeText:
		return &s.LargeText
	case ReducedMotion:
		return &s.ReducedMotion
	case DarkMode:
		return &s.DarkMode
	}
	panic(fmt.Sprintf("a11y: unknown toggle %d", t))
}

// Get reports the value of t.
func (s Settings) Get(t Toggle) bool {
	return *s.field(t)
}

// Flip returns s with t inverted.
func (s Settings) Flip(t Toggle) Settings {
	f := s.field(t)
	*f = !*f
	return s
}

// Load reads the saved settings merged over Defaults. A corrupt blob is
// logged and ignored.
func Load(ctx context.Context, repo store.SettingsRepo, logger *zap.Logger) (Settings, error) {
	s := Defaults()
	if repo == nil {
		return s, nil
	}
	raw, ok, err := repo.Get(ctx, Key)
	if err != nil {
		return s, fmt.Errorf("load accessibility settings: %w", err)
	}
	if !ok {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		if logger != nil {
			logger.Warn("accessibility settings are not valid JSON", zap.Error(err))
		}
		return Defaults(), nil
	}
	return s, nil
}

// Save persists s.
func Save(ctx context.Context, repo store.SettingsRepo, s Settings) error {
	if repo == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode accessibility settings: %w", err)
	}
	if err := repo.Put(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("save accessibility settings: %w", err)
	}
	return nil
}

// Apply switches the theme palette to match s.
func Apply(s Settings) {
	theme.Apply(theme.For(s.HighContrast, s.DarkMode))
}

// WrapWidth narrows the reading width for large text so lines stay short.
func (s Settings) WrapWidth(width int) int {
	if s.LargeText {
		return max(width*3/4, 30)
	}
	return width
}

// Format applies the reading aids that make sense in a terminal: the
// dyslexia setting doubles the line spacing of prose.
func (s Settings) Format(text string) string {
	if !s.DyslexiaFont {
		return text
	}
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteString("\n")
			if strings.TrimSpace(l) != "" {
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
