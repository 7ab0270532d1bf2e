package a11y

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
)

// ErrNoSpeech is returned when no speech synthesizer is installed.
var ErrNoSpeech = errors.New("no speech synthesizer found")

// speakers are tried in order; the first one on PATH is used.
var speakers = []struct {
	bin  string
	args func(lang string) []string
}{
	{"espeak-ng", func(lang string) []string { return []string{"-v", lang} }},
	{"espeak", func(lang string) []string { return []string{"-v", lang} }},
	{"say", func(string) []string { return nil }},
}

var lookPath = exec.LookPath

var markup = regexp.MustCompile("[#*_`>]+")

// Speak reads text aloud with the first available synthesizer. It blocks
// until speech ends or ctx is cancelled.
func Speak(ctx context.Context, text, lang string) error {
	plain := strings.TrimSpace(markup.ReplaceAllString(text, ""))
	if plain == "" {
		return nil
	}
	for _, s := range speakers {
		path, err := lookPath(s.bin)
		if err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, path, s.args(lang)...)
		cmd.Stdin = strings.NewReader(plain)
		return cmd.Run()
	}
	return ErrNoSpeech
}
