package i18n

import "unicode"

// scripts lists the scripts DetectLanguage looks for, in priority order.
// Marathi is written in Devanagari like Hindi and cannot be told apart by
// script, so Devanagari always reports "hi".
var scripts = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"hi", unicode.Devanagari},
	{"ta", unicode.Tamil},
	{"bn", unicode.Bengali},
	{"te", unicode.Telugu},
	{"gu", unicode.Gujarati},
}

// DetectLanguage guesses the language of text by script. Scripts are checked
// in priority order over the whole text, so mixed-script text reports the
// first script in the list that appears anywhere in it. Text without Indic
// script is English.
func DetectLanguage(text string) string {
	for _, s := range scripts {
		for _, r := range text {
			if unicode.Is(s.table, r) {
				return s.code
			}
		}
	}
	return Default
}
