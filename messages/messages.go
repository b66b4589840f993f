// Package messages holds the user-facing strings shown in the overlay.
package messages

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Message IDs
const (
	TranslationError  = "TranslationError"
	NoTranslation     = "NoTranslation"
	ClipboardEmpty    = "ClipboardEmpty"
	ClipboardError    = "ClipboardError"
	Ready             = "Ready"
	Translating       = "Translating"
	UnsupportedConfig = "UnsupportedConfig"
)

// Catalog renders messages in one locale
type Catalog struct {
	localizer *i18n.Localizer
	locale    string
}

// New builds a Catalog for locale, falling back to English for unknown
// locales and missing messages
func New(locale string) *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.zh.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			slog.Error("Failed to load message file", "file", file, "error", err)
		}
	}

	return &Catalog{
		localizer: i18n.NewLocalizer(bundle, locale, language.English.String()),
		locale:    locale,
	}
}

// Locale returns the locale the catalog was built for
func (c *Catalog) Locale() string {
	return c.locale
}

// T renders the message identified by key, or the key itself when no
// translation exists
func (c *Catalog) T(key string) string {
	return c.Format(key, nil)
}

// Format renders the message identified by key with data filled into its
// template fields
func (c *Catalog) Format(key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Warn("Message not found", "key", key, "locale", c.locale, "error", err)
		return key
	}
	return msg
}
