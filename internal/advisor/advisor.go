// Package advisor produces negotiation guidance: ranked counter-offer
// suggestions, sentiment of the latest message, gap-based strategy hints and
// the deal acceptance message. Every operation keeps its own localization
// table and falls back to English.
package advisor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/pricing"
)

// Tone labels a counter-offer suggestion.
type Tone string

const (
	ToneFriendly   Tone = "friendly"
	ToneReasonable Tone = "reasonable"
	ToneFactual    Tone = "factual"
)

// Sentiment classifies the latest negotiation message.
type Sentiment string

const (
	SentimentFirm     Sentiment = "firm"
	SentimentFlexible Sentiment = "flexible"
	SentimentNeutral  Sentiment = "neutral"
)

// Role is the participant a strategy hint is written for.
type Role string

const (
	RoleVendor Role = "vendor"
	RoleBuyer  Role = "buyer"
)

// CounterOfferSuggestion is one proposed counter price with its message.
type CounterOfferSuggestion struct {
	Price   int    `json:"price"`
	Message string `json:"message"`
	Tone    Tone   `json:"tone"`
}

// Analysis is the sentiment of the latest message and what to do about it.
type Analysis struct {
	Sentiment      Sentiment `json:"sentiment"`
	Recommendation string    `json:"recommendation"`
}

// counterOffers is indexed friendly, reasonable, factual.
var counterOffers = map[string][3]string{
	"en": {
		"How about we meet in the middle at ₹%d?",
		"I can adjust to ₹%d for this quality.",
		"Given the market rate, ₹%d would be fair.",
	},
	"hi": {
		"क्या हम बीच में ₹%d पर मिल सकते हैं?",
		"मैं इस गुणवत्ता के लिए ₹%d तक समायोजित कर सकता हूं।",
		"बाजार दर को देखते हुए, ₹%d उचित होगा।",
	},
	"ta": {
		"நாம் நடுவில் ₹%d இல் சந்திக்கலாமா?",
		"இந்த தரத்திற்கு நான் ₹%d வரை சரிசெய்யலாம்.",
		"சந்தை விலையைக் கருத்தில் கொண்டு, ₹%d நியாயமாக இருக்கும்.",
	},
}

var (
	urgencyPattern = regexp.MustCompile(`(?i)urgent|final|last`)
	hedgingPattern = regexp.MustCompile(`(?i)consider|maybe|perhaps`)
)

var recommendations = map[Sentiment]string{
	SentimentFirm:     "Consider accepting or making a final counter",
	SentimentFlexible: "Continue negotiating - there's room to discuss",
	SentimentNeutral:  "Continue negotiating - there's room to discuss",
}

type strategySet struct {
	largeVendor string
	largeBuyer  string
	medium      string
	small       string
}

var strategies = map[string]strategySet{
	"en": {
		largeVendor: "Consider small concessions to build trust",
		largeBuyer:  "Explain your budget constraints politely",
		medium:      "You're close! Suggest meeting in the middle",
		small:       "Minor difference - offer to close the deal now",
	},
	"hi": {
		largeVendor: "विश्वास बनाने के लिए छोटी छूट पर विचार करें",
		largeBuyer:  "अपनी बजट सीमाओं को विनम्रता से समझाएं",
		medium:      "आप करीब हैं! बीच में मिलने का सुझाव दें",
		small:       "मामूली अंतर - अभी सौदा बंद करने की पेशकश करें",
	},
	"ta": {
		largeVendor: "நம்பிக்கையை உருவாக்க சிறிய சலுகைகளை கருத்தில் கொள்ளுங்கள்",
		largeBuyer:  "உங்கள் பட்ஜெட் வரம்புகளை பணிவுடன் விளக்குங்கள்",
		medium:      "நீங்கள் நெருக்கமாக இருக்கிறீர்கள்! நடுவில் சந்திக்க பரிந்துரைக்கவும்",
		small:       "சிறிய வித்தியாசம் - இப்போது ஒப்பந்தத்தை மூட வழங்கவும்",
	},
}

// Gap thresholds for SuggestStrategy.
const (
	largeGap  = 20
	mediumGap = 10
)

var acceptances = map[string]string{
	"en": "Great! Deal accepted at ₹%d. Thank you for fair negotiation.",
	"hi": "बढ़िया! ₹%d पर सौदा स्वीकार किया गया। निष्पक्ष बातचीत के लिए धन्यवाद।",
	"ta": "அருமை! ₹%d இல் ஒப்பந்தம் ஏற்றுக்கொள்ளப்பட்டது. நியாயமான பேச்சுவார்த்தைக்கு நன்றி.",
	"bn": "দুর্দান্ত! ₹%d এ চুক্তি গৃহীত হয়েছে। ন্যায্য আলোচনার জন্য ধন্যবাদ।",
	"te": "గొప్ప! ₹%d వద్ద ఒప్పందం అంగీకరించబడింది. న్యాయమైన చర్చలకు ధన్యవాదాలు.",
	"mr": "छान! ₹%d वर करार स्वीकारला गेला. निष्पक्ष चर्चेसाठी धन्यवाद।",
	"gu": "સરસ! ₹%d પર સોદો સ્વીકારવામાં આવ્યો. ન્યાયી વાટાઘાટો માટે આભાર.",
}

// SuggestCounterOffers returns exactly three suggestions in the order
// friendly, reasonable, factual. Prices are not validated against each
// other: a target above the current price still yields three suggestions.
func SuggestCounterOffers(currentPrice, targetPrice int, lang string) []CounterOfferSuggestion {
	tmpl, ok := counterOffers[i18n.Normalize(lang)]
	if !ok {
		tmpl = counterOffers[i18n.Default]
	}
	prices := [3]int{
		pricing.Midpoint(currentPrice, targetPrice),
		pricing.Scale(currentPrice, 0.95),
		pricing.Scale(targetPrice, 1.05),
	}
	tones := [3]Tone{ToneFriendly, ToneReasonable, ToneFactual}

	out := make([]CounterOfferSuggestion, 3)
	for i := range out {
		out[i] = CounterOfferSuggestion{
			Price:   prices[i],
			Message: fmt.Sprintf(tmpl[i], prices[i]),
			Tone:    tones[i],
		}
	}
	return out
}

// ClassifySentiment analyzes the last of messages. It returns nil when there
// is nothing to classify. Urgency wins over hedging when both match.
func ClassifySentiment(messages []string) *Analysis {
	if len(messages) == 0 {
		return nil
	}
	s := Classify(messages[len(messages)-1])
	return &Analysis{Sentiment: s, Recommendation: recommendations[s]}
}

// Classify returns the sentiment of a single message.
func Classify(text string) Sentiment {
	switch {
	case urgencyPattern.MatchString(text):
		return SentimentFirm
	case hedgingPattern.MatchString(text):
		return SentimentFlexible
	default:
		return SentimentNeutral
	}
}

// SuggestStrategy returns a hint for the given absolute price gap.
func SuggestStrategy(priceGap int, role Role, lang string) string {
	set, ok := strategies[i18n.Normalize(lang)]
	if !ok {
		set = strategies[i18n.Default]
	}
	if priceGap < 0 {
		priceGap = -priceGap
	}
	switch {
	case priceGap > largeGap:
		if role == RoleVendor {
			return set.largeVendor
		}
		return set.largeBuyer
	case priceGap > mediumGap:
		return set.medium
	default:
		return set.small
	}
}

// AcceptanceMessage is the deal confirmation for finalPrice.
func AcceptanceMessage(finalPrice int, lang string) string {
	tmpl, ok := acceptances[i18n.Normalize(lang)]
	if !ok {
		tmpl = acceptances[i18n.Default]
	}
	return fmt.Sprintf(tmpl, finalPrice)
}

// ParseRole maps a free-form role to a Role. Anything but "vendor" is
// treated as the buyer side.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleVendor)) {
		return RoleVendor
	}
	return RoleBuyer
}
