// Package i18n provides the language catalog, tag normalization, script-based
// language detection and the phrase translator used to annotate negotiation
// messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is the fallback language for every localized lookup.
const Default = "en"

// Language describes a language offered on the language selection screen.
type Language struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NativeName   string `json:"native_name"`
	SpeechLocale string `json:"speech_locale"`
}

var languages = []Language{
	{Code: "en", Name: "English", NativeName: "English", SpeechLocale: "en-IN"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", SpeechLocale: "hi-IN"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்", SpeechLocale: "ta-IN"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা", SpeechLocale: "bn-IN"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు", SpeechLocale: "te-IN"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी", SpeechLocale: "mr-IN"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી", SpeechLocale: "gu-IN"},
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Lookup returns the catalog entry for a language code.
func Lookup(code string) (Language, bool) {
	code = Normalize(code)
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Supported reports whether code is in the language catalog.
func Supported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// SpeechLocale maps a language code to the locale handed to the speech
// recognizer. Unknown languages use Indian English.
func SpeechLocale(code string) string {
	if l, ok := Lookup(code); ok {
		return l.SpeechLocale
	}
	return "en-IN"
}

// Normalize reduces a BCP-47 tag ("hi-IN", "TA", "mr_IN") to its base
// language code. Tags that do not parse normalize to Default.
func Normalize(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return Default
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Default
	}
	base, _ := t.Base()
	return base.String()
}
