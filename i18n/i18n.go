// Package i18n translates message codes into French (default) or English.
// Catalogs are YAML files embedded at build time. A code may carry role
// specific variants under "<code>.<role>" so each party gets guidance that
// fits what it can do next.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultLang = "fr"

//go:embed locales/*.yaml
var localesFS embed.FS

var catalogs = mustLoad("fr", "en")

func mustLoad(langs ...string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(langs))
	for _, lang := range langs {
		raw, err := localesFS.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			panic(fmt.Sprintf("i18n: read %s catalog: %v", lang, err))
		}
		var m map[string]string
		if err := yaml.Unmarshal(raw, &m); err != nil {
			panic(fmt.Sprintf("i18n: parse %s catalog: %v", lang, err))
		}
		out[lang] = m
	}
	return out
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// DetectLanguage picks "en" for English Accept-Language headers, "fr" otherwise.
func DetectLanguage(acceptLanguage string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(acceptLanguage)), "en") {
		return "en"
	}
	return DefaultLang
}

// T translates code, falling back to French, then to the code itself.
func T(lang, code string) string {
	if msg, ok := catalogs[lang][code]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLang][code]; ok {
		return msg
	}
	return code
}

// ForRole translates code for a reader with role, preferring "<code>.<role>".
func ForRole(lang, code, role string) string {
	if role != "" {
		key := code + "." + strings.ToLower(role)
		if msg := T(lang, key); msg != key {
			return msg
		}
	}
	return T(lang, code)
}

// Format translates code and substitutes "{name}" placeholders from params.
func Format(lang, code string, params map[string]string) string {
	msg := T(lang, code)
	if len(params) == 0 {
		return msg
	}
	pairs := make([]string, 0, 2*len(params))
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

type ctxKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, DefaultLang when absent.
func LangFrom(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}
