package pricing

import (
	"strings"

	"github.com/zulandar/mandi/internal/i18n"
)

// explanations holds the three-line rationale per language.
var explanations = map[string][3]string{
	"en": {
		"📈 High market demand for {commodity} in your region",
		"📅 Current seasonal trends indicate favorable pricing",
		"📍 {location} has competitive pricing compared to nearby mandis",
	},
	"hi": {
		"📈 आपके क्षेत्र में {commodity} की उच्च मांग",
		"📅 वर्तमान मौसमी रुझान अनुकूल मूल्य निर्धारण का संकेत देते हैं",
		"📍 {location} में पास के मंडियों की तुलना में प्रतिस्पर्धी मूल्य है",
	},
	"ta": {
		"📈 உங்கள் பகுதியில் {commodity} க்கு அதிக சந்தை தேவை",
		"📅 தற்போதைய பருவகால போக்குகள் சாதகமான விலையை குறிக்கின்றன",
		"📍 {location} அருகிலுள்ள மண்டிகளுடன் ஒப்பிடும்போது போட்டி விலை உள்ளது",
	},
}

// Explain returns the localized rationale for a quote. Languages without a
// template set use English.
func Explain(_ PriceQuote, commodity, location, lang string) []string {
	tmpl, ok := explanations[i18n.Normalize(lang)]
	if !ok {
		tmpl = explanations[i18n.Default]
	}
	r := strings.NewReplacer("{commodity}", commodity, "{location}", location)
	out := make([]string, len(tmpl))
	for i, line := range tmpl {
		out[i] = r.Replace(line)
	}
	return out
}
