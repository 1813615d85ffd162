package i18n

import (
	"fmt"
	"strings"
)

// Translator maps text between languages. Implementations must be total:
// a phrase that cannot be translated yields Placeholder(text, to).
type Translator interface {
	Translate(text, from, to string) string
}

// phrases is the demo phrase table keyed by English source text.
var phrases = map[string]map[string]string{
	"Hello": {
		"hi": "नमस्ते",
		"ta": "வணக்கம்",
		"bn": "হ্যালো",
		"te": "హలో",
		"mr": "नमस्कार",
		"gu": "નમસ્તે",
	},
	"What is your final price?": {
		"hi": "आपकी अंतिम कीमत क्या है?",
		"ta": "உங்கள் இறுதி விலை என்ன?",
		"bn": "আপনার চূড়ান্ত মূল্য কি?",
		"te": "మీ చివరి ధర ఏమిటి?",
		"mr": "तुमची अंतिम किंमत काय आहे?",
		"gu": "તમારી અંતિમ કિંમત શું છે?",
	},
	"I can offer": {
		"hi": "मैं दे सकता हूं",
		"ta": "நான் வழங்க முடியும்",
		"bn": "আমি অফার করতে পারি",
		"te": "నేను అందించగలను",
		"mr": "मी ऑफर करू शकतो",
		"gu": "હું ઓફર કરી શકું છું",
	},
}

// StaticTranslator translates from a fixed phrase table.
type StaticTranslator struct{}

// Translate returns the table entry for text in language to, or the
// bracket-tagged placeholder when the phrase or language is unknown.
func (StaticTranslator) Translate(text, from, to string) string {
	if byLang, ok := phrases[text]; ok {
		if t, ok := byLang[Normalize(to)]; ok {
			return t
		}
	}
	return Placeholder(text, to)
}

// Placeholder is the deterministic stand-in for an untranslated phrase.
func Placeholder(text, to string) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(to), text)
}
