// Package i18n negotiates the response language and renders localized
// messages for the two supported languages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	English = "en"
	German  = "de"

	DefaultLanguage = English
)

// Supported lists the languages in preference order for negotiation.
var Supported = []string{English, German}

var (
	supportedTags = []language.Tag{language.English, language.German}
	matcher       = language.NewMatcher(supportedTags)
	messages      = buildCatalog()
)

var germanCountries = map[string]struct{}{
	"DE": {},
	"AT": {},
	"CH": {},
	"LI": {},
}

// Match returns the supported language that best matches the given BCP 47
// tag, or an empty string when nothing matches.
func Match(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	return matchTags(parsed)
}

// MatchAcceptLanguage negotiates against an Accept-Language header value.
func MatchAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return matchTags(tags...)
}

func matchTags(tags ...language.Tag) string {
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	return Supported[idx]
}

// LanguageForCountry maps an ISO country code to a language. German-speaking
// countries get German, any other known country English.
func LanguageForCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return ""
	}
	if _, ok := germanCountries[country]; ok {
		return German
	}
	return English
}

// Normalize coerces arbitrary input to a supported language.
func Normalize(locale string) string {
	if l := Match(locale); l != "" {
		return l
	}
	return DefaultLanguage
}

// IsSupported reports whether locale is exactly one of the supported codes.
func IsSupported(locale string) bool {
	for _, l := range Supported {
		if l == locale {
			return true
		}
	}
	return false
}

// T renders the message registered under key in the given language. Unknown
// keys are returned verbatim.
func T(locale, key string, args ...any) string {
	tag := language.English
	if Normalize(locale) == German {
		tag = language.German
	}
	p := message.NewPrinter(tag, message.Catalog(messages))
	return p.Sprintf(key, args...)
}

// LanguageName returns the display name of a language in that language.
func LanguageName(locale string) string {
	switch locale {
	case German:
		return "Deutsch"
	default:
		return "English"
	}
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)
	}
	for key, msg := range german {
		_ = b.SetString(language.German, key, msg)
	}
	return b
}
