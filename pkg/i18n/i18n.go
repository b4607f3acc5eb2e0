// Package i18n localizes operator-facing messages. Swedish is the operator
// language; English is the default for API clients that send no preference.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed messages/*.json
var messagesFS embed.FS

// Supported locales
const (
	LocaleEnglish = "en"
	LocaleSwedish = "sv"
	DefaultLocale = LocaleEnglish
)

type localeKey struct{}

var (
	catalog     map[string]map[string]any
	catalogOnce sync.Once
)

func loadCatalog() {
	catalogOnce.Do(func() {
		catalog = make(map[string]map[string]any)
		for _, locale := range []string{LocaleEnglish, LocaleSwedish} {
			data, err := messagesFS.ReadFile("messages/" + locale + ".json")
			if err != nil {
				continue
			}
			var msgs map[string]any
			if err := json.Unmarshal(data, &msgs); err != nil {
				continue
			}
			catalog[locale] = msgs
		}
	})
}

// Localizer resolves message keys for one locale
type Localizer struct {
	locale string
}

// NewLocalizer creates a localizer; unsupported locales fall back to the default
func NewLocalizer(locale string) *Localizer {
	loadCatalog()
	if locale != LocaleEnglish && locale != LocaleSwedish {
		locale = DefaultLocale
	}
	return &Localizer{locale: locale}
}

// LocalizerFromContext creates a localizer for the locale stored in ctx
func LocalizerFromContext(ctx context.Context) *Localizer {
	return NewLocalizer(GetLocaleFromContext(ctx))
}

// T resolves a dot-separated key and substitutes {param} placeholders.
// Unknown keys are returned unchanged.
func (l *Localizer) T(key string, params ...map[string]string) string {
	msg := lookup(l.locale, key)
	if msg == "" {
		msg = lookup(DefaultLocale, key)
	}
	if msg == "" {
		return key
	}

	if len(params) > 0 {
		for k, v := range params[0] {
			msg = strings.ReplaceAll(msg, "{"+k+"}", v)
		}
	}
	return msg
}

// GetLocale returns the localizer's locale
func (l *Localizer) GetLocale() string {
	return l.locale
}

func lookup(locale, key string) string {
	node, ok := catalog[locale]
	if !ok {
		return ""
	}

	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			return ""
		}
		node = next
	}

	msg, _ := node[parts[len(parts)-1]].(string)
	return msg
}

// WithLocale stores the locale in ctx
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// GetLocaleFromContext returns the locale stored in ctx or the default
func GetLocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok && locale != "" {
		return locale
	}
	return DefaultLocale
}

// ParseAcceptLanguage returns the first supported locale named in an
// Accept-Language header. Quality weights are ignored; order wins.
func ParseAcceptLanguage(header string) string {
	for _, part := range strings.Split(strings.ToLower(header), ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		switch {
		case tag == "sv" || strings.HasPrefix(tag, "sv-"):
			return LocaleSwedish
		case tag == "en" || strings.HasPrefix(tag, "en-"):
			return LocaleEnglish
		}
	}
	return DefaultLocale
}

// T translates using the default locale
func T(key string, params ...map[string]string) string {
	return NewLocalizer(DefaultLocale).T(key, params...)
}

// TFromContext translates using the locale stored in ctx
func TFromContext(ctx context.Context, key string, params ...map[string]string) string {
	return LocalizerFromContext(ctx).T(key, params...)
}
