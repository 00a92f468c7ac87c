package i18n

import (
	"embed"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

// Translator is a thin wrapper around go-i18n's Bundle/Localizer bound to a
// single display language.
type Translator struct {
	localizer *i18n.Localizer
	tag       language.Tag
	log       *slog.Logger
}

// NewTranslator builds a Translator for the given locale (e.g. "it"),
// falling back to English for unknown locales or missing messages.
func NewTranslator(locale string, log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		log.Warn("i18n: unknown locale, using English", "locale", locale, "err", err)
		tag = language.English
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.it.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			log.Error("i18n: failed to load messages", "file", file, "err", err)
		}
	}

	return &Translator{
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
		tag:       tag,
		log:       log,
	}
}

// Language reports the configured language tag.
func (t *Translator) Language() string { return t.tag.String() }

// T renders the message identified by id. Unknown ids render as the id.
func (t *Translator) T(id string, data map[string]any) string {
	if id == "" {
		return ""
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		t.log.Debug("i18n: localize failed", "id", id, "lang", t.tag.String(), "err", err)
		return id
	}
	return msg
}
