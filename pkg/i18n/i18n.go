package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Translator resolves message ids against a bundle of loaded locales.
type Translator struct {
	bundle      *goi18n.Bundle
	defaultLang string
}

func New(defaultLang language.Tag) *Translator {
	bundle := goi18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	return &Translator{bundle: bundle, defaultLang: defaultLang.String()}
}

// LoadFS parses the named locale files (e.g. "locales/active.es.json") from fsys.
// The language is taken from the file name.
func (t *Translator) LoadFS(fsys fs.FS, paths ...string) error {
	for _, p := range paths {
		buf, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read locale %s: %w", p, err)
		}
		if _, err := t.bundle.ParseMessageFileBytes(buf, p); err != nil {
			return fmt.Errorf("parse locale %s: %w", p, err)
		}
	}
	return nil
}

// T localizes id for lang, falling back to the default language and finally to
// the id itself.
func (t *Translator) T(lang, id string, data map[string]any) string {
	localizer := goi18n.NewLocalizer(t.bundle, lang, t.defaultLang)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
