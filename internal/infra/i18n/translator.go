// Package i18n holds the message catalogs used for customer-facing email.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

const fallbackLang = "en"

type Translator struct {
	lang         string
	translations map[string]string
	fallback     map[string]string
}

// NewTranslator loads locales/<lang>.yaml from fsys. Keys missing from the
// requested catalog fall back to English.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	if lang == "" {
		lang = fallbackLang
	}
	fallback, err := readCatalog(fsys, fallbackLang)
	if err != nil {
		return nil, err
	}
	tr := &Translator{lang: lang, translations: fallback, fallback: fallback}
	if lang == fallbackLang {
		return tr, nil
	}
	if tr.translations, err = readCatalog(fsys, lang); err != nil {
		return nil, err
	}
	return tr, nil
}

func readCatalog(fsys fs.FS, lang string) (map[string]string, error) {
	p := path.Join("locales", lang+".yaml")
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", p, err)
	}
	return newTranslatorFromBytes(data)
}

func newTranslatorFromBytes(data []byte) (map[string]string, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return translations, nil
}

func (t *Translator) Lang() string { return t.lang }

// T formats the message stored under key. Unknown keys are returned as is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		if format, ok = t.fallback[key]; !ok {
			return key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
