package negotiation

import (
	"fmt"

	"github.com/zulandar/mandi/internal/i18n"
)

// Reply is a vendor line keyed by language code.
type Reply map[string]string

// In returns the reply text in lang, if the script carries it.
func (r Reply) In(lang string) (string, bool) {
	s, ok := r[lang]
	return s, ok
}

// Scripter produces vendor lines. Implementations must be safe for
// concurrent use; a real model can be substituted here without touching
// Session.
type Scripter interface {
	// Greeting announces a listing when a session opens.
	Greeting(commodity, quantity string, price int) Reply
	// Reply returns the vendor response for the given round (replies already
	// delivered) after the price has dropped to newPrice.
	Reply(round, newPrice int) Reply
}

// Script is a fixed Scripter. Replies past the end of the list repeat the
// last entry.
type Script struct {
	Greetings map[string]string // fmt templates: commodity, quantity, price
	Replies   []map[string]string
}

// DefaultScript is the built-in vendor script.
var DefaultScript = Script{
	Greetings: map[string]string{
		"hi": "नमस्ते! मैं %s बेच रहा हूं। %s के लिए मेरा मूल्य ₹%d/kg है।",
		"en": "Hello! I'm selling %s. My price for %s is ₹%d/kg.",
	},
	Replies: []map[string]string{
		{
			"hi": "मैं ₹%d/kg तक जा सकता हूं। यह बहुत अच्छी गुणवत्ता है।",
			"en": "I can go down to ₹%d/kg. This is very good quality.",
		},
		{
			"hi": "यह मेरी अंतिम कीमत है - ₹%d/kg।",
			"en": "This is my final price - ₹%d/kg.",
		},
		{
			"hi": "ठीक है, सौदा हो गया! ₹%d/kg पर।",
			"en": "Okay, deal done! At ₹%d/kg.",
		},
	},
}

// Greeting implements Scripter.
func (s Script) Greeting(commodity, quantity string, price int) Reply {
	r := make(Reply, len(s.Greetings))
	for lang, tmpl := range s.Greetings {
		r[lang] = fmt.Sprintf(tmpl, commodity, quantity, price)
	}
	return r
}

// Reply implements Scripter.
func (s Script) Reply(round, newPrice int) Reply {
	if len(s.Replies) == 0 {
		return Reply{i18n.Default: fmt.Sprintf("₹%d/kg", newPrice)}
	}
	idx := min(max(round, 0), len(s.Replies)-1)
	r := make(Reply, len(s.Replies[idx]))
	for lang, tmpl := range s.Replies[idx] {
		r[lang] = fmt.Sprintf(tmpl, newPrice)
	}
	return r
}

// counterTemplates phrase a buyer counter-offer.
var counterTemplates = map[string]string{
	"en": "Would you accept ₹%d/kg?",
	"hi": "क्या आप ₹%d/kg स्वीकार करेंगे?",
	"ta": "நீங்கள் ₹%d/kg ஏற்றுக்கொள்வீர்களா?",
}

func counterText(price int, lang string) string {
	tmpl, ok := counterTemplates[lang]
	if !ok {
		tmpl = counterTemplates[i18n.Default]
	}
	return fmt.Sprintf(tmpl, price)
}
