//go:build !integration

package i18n

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestTranslator(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("greeting: Hello\nwelcome_user: Hello %s\nfooter: Thanks")},
		"locales/es.yaml": {Data: []byte("greeting: Hola\nwelcome_user: Hola %s")},
	}

	tr, err := NewTranslator(fsys, "es")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	t.Run("should translate a simple key", func(t *testing.T) {
		if got := tr.T("greeting"); got != "Hola" {
			t.Errorf("wanted 'Hola', got '%s'", got)
		}
	})

	t.Run("should format arguments correctly", func(t *testing.T) {
		if got := tr.T("welcome_user", "Ana"); got != "Hola Ana" {
			t.Errorf("wanted 'Hola Ana', got '%s'", got)
		}
	})

	t.Run("should fall back to english", func(t *testing.T) {
		if got := tr.T("footer"); got != "Thanks" {
			t.Errorf("wanted 'Thanks', got '%s'", got)
		}
	})

	t.Run("should return key if not found", func(t *testing.T) {
		if got := tr.T("nonexistent_key"); got != "nonexistent_key" {
			t.Errorf("wanted 'nonexistent_key', got '%s'", got)
		}
	})
}

func TestTranslator_UnknownLanguage(t *testing.T) {
	if _, err := NewTranslator(LocalesFS, "xx"); err == nil {
		t.Fatal("expected an error for a missing catalog")
	}
}

func TestEmbeddedCatalogs(t *testing.T) {
	keys := []string{"subscription_active_subject", "subscription_active_body"}
	for _, lang := range []string{"en", "es", "pt"} {
		tr, err := NewTranslator(LocalesFS, lang)
		if err != nil {
			t.Fatalf("%s: %v", lang, err)
		}
		for _, k := range keys {
			if _, ok := tr.translations[k]; !ok {
				t.Errorf("%s: missing key %s", lang, k)
			}
		}
		body := tr.T("subscription_active_body", "Coffee Club", "2026-04-10", "25.00", "USD", 4)
		if !strings.Contains(body, "Coffee Club") || strings.Contains(body, "%!") {
			t.Errorf("%s: bad body %q", lang, body)
		}
	}
}
