// Package i18n localizes UI strings. Catalogs are embedded TOML files, one
// per language, loaded into a go-i18n bundle.
package i18n

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed catalog/*.toml
var catalogFS embed.FS

// Supported lists the languages with an embedded catalog.
var Supported = []string{"es", "en"}

var catalogs = map[string]string{
	"en": "catalog/active.en.toml",
	"es": "catalog/active.es.toml",
}

// Translator resolves message ids for one language. English is the
// fallback for ids the selected catalog lacks.
type Translator struct {
	lang      language.Tag
	localizer *goi18n.Localizer
}

// New loads the embedded catalogs and returns a translator for lang.
func New(lang string) (*Translator, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}
	base, _ := tag.Base()
	if _, ok := catalogs[base.String()]; !ok {
		return nil, fmt.Errorf("no catalog for language %q", lang)
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, path := range catalogs {
		if _, err := bundle.LoadMessageFileFS(catalogFS, path); err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", path, err)
		}
	}

	return &Translator{
		lang:      tag,
		localizer: goi18n.NewLocalizer(bundle, tag.String(), "en"),
	}, nil
}

// MustNew is New for callers with a known-good language, such as tests.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Lang returns the selected language tag.
func (t *Translator) Lang() string {
	if t == nil {
		return "en"
	}
	return t.lang.String()
}

// T returns the message for id. Unknown ids are returned as-is so a missing
// entry is visible on screen rather than blank.
func (t *Translator) T(id string) string {
	return t.Tf(id, nil)
}

// Tf is T with template data, e.g. Tf("score", map[string]any{"Correct": 3}).
func (t *Translator) Tf(id string, data map[string]any) string {
	if t == nil {
		return id
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return id
	}
	return msg
}
