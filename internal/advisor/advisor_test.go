package advisor

import (
	"strings"
	"testing"
	"unicode"
)

func hasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

func TestSuggestCounterOffers_Formula(t *testing.T) {
	got := SuggestCounterOffers(100, 80, "en")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []struct {
		price int
		tone  Tone
	}{
		{90, ToneFriendly},
		{95, ToneReasonable},
		{84, ToneFactual},
	}
	for i, w := range want {
		if got[i].Price != w.price {
			t.Errorf("[%d].Price = %d, want %d", i, got[i].Price, w.price)
		}
		if got[i].Tone != w.tone {
			t.Errorf("[%d].Tone = %q, want %q", i, got[i].Tone, w.tone)
		}
	}
	if got[0].Message != "How about we meet in the middle at ₹90?" {
		t.Errorf("[0].Message = %q", got[0].Message)
	}
}

func TestSuggestCounterOffers_TargetAboveCurrent(t *testing.T) {
	got := SuggestCounterOffers(40, 60, "en")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Price != 50 || got[1].Price != 38 || got[2].Price != 63 {
		t.Errorf("prices = %d,%d,%d, want 50,38,63", got[0].Price, got[1].Price, got[2].Price)
	}
}

func TestSuggestCounterOffers_Localized(t *testing.T) {
	ta := SuggestCounterOffers(40, 35, "ta")
	if !strings.Contains(ta[0].Message, "சந்திக்கலாமா") {
		t.Errorf("ta message = %q, want Tamil template", ta[0].Message)
	}
	bn := SuggestCounterOffers(40, 35, "bn")
	if !strings.HasPrefix(bn[0].Message, "How about") {
		t.Errorf("bn message = %q, want English fallback", bn[0].Message)
	}
	if !strings.Contains(bn[2].Message, "₹37") {
		t.Errorf("factual message = %q, want ₹37", bn[2].Message)
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     Sentiment
	}{
		{"urgent", []string{"hi", "This is URGENT"}, SentimentFirm},
		{"final", []string{"My final offer"}, SentimentFirm},
		{"hedging", []string{"Maybe 35?"}, SentimentFlexible},
		{"firm beats flexible", []string{"Perhaps this is my last price"}, SentimentFirm},
		{"neutral", []string{"Is it fresh?"}, SentimentNeutral},
		{"only last message counts", []string{"final", "ok"}, SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ClassifySentiment(tt.messages)
			if a == nil {
				t.Fatal("ClassifySentiment returned nil")
			}
			if a.Sentiment != tt.want {
				t.Errorf("Sentiment = %q, want %q", a.Sentiment, tt.want)
			}
			if a.Recommendation == "" {
				t.Error("Recommendation is empty")
			}
		})
	}
}

func TestClassifySentiment_NoMessages(t *testing.T) {
	if a := ClassifySentiment(nil); a != nil {
		t.Errorf("ClassifySentiment(nil) = %+v, want nil", a)
	}
}

func TestClassifySentiment_Recommendations(t *testing.T) {
	firm := ClassifySentiment([]string{"final"})
	if firm.Recommendation != "Consider accepting or making a final counter" {
		t.Errorf("firm recommendation = %q", firm.Recommendation)
	}
	neutral := ClassifySentiment([]string{"hello"})
	if neutral.Recommendation != "Continue negotiating - there's room to discuss" {
		t.Errorf("neutral recommendation = %q", neutral.Recommendation)
	}
}

func TestSuggestStrategy_Thresholds(t *testing.T) {
	tests := []struct {
		gap  int
		role Role
		want string
	}{
		{25, RoleVendor, "Consider small concessions to build trust"},
		{25, RoleBuyer, "Explain your budget constraints politely"},
		{21, RoleBuyer, "Explain your budget constraints politely"},
		{20, RoleVendor, "You're close! Suggest meeting in the middle"},
		{11, RoleBuyer, "You're close! Suggest meeting in the middle"},
		{10, RoleBuyer, "Minor difference - offer to close the deal now"},
		{0, RoleVendor, "Minor difference - offer to close the deal now"},
		{-30, RoleVendor, "Consider small concessions to build trust"},
	}
	for _, tt := range tests {
		if got := SuggestStrategy(tt.gap, tt.role, "en"); got != tt.want {
			t.Errorf("SuggestStrategy(%d, %s) = %q, want %q", tt.gap, tt.role, got, tt.want)
		}
	}
}

func TestSuggestStrategy_LanguageCoverage(t *testing.T) {
	if got := SuggestStrategy(5, RoleBuyer, "hi"); !hasDevanagari(got) {
		t.Errorf("hi strategy = %q, want Devanagari", got)
	}
	// Gujarati has an acceptance message but no strategy table.
	if got := SuggestStrategy(5, RoleBuyer, "gu"); got != "Minor difference - offer to close the deal now" {
		t.Errorf("gu strategy = %q, want English fallback", got)
	}
}

func TestAcceptanceMessage(t *testing.T) {
	hi := AcceptanceMessage(36, "hi")
	if !strings.Contains(hi, "₹36") {
		t.Errorf("hi message = %q, want ₹36", hi)
	}
	if !hasDevanagari(hi) {
		t.Errorf("hi message = %q, want Devanagari", hi)
	}

	for _, lang := range []string{"en", "hi", "ta", "bn", "te", "mr", "gu"} {
		msg := AcceptanceMessage(50, lang)
		if !strings.Contains(msg, "₹50") {
			t.Errorf("AcceptanceMessage(50, %q) = %q, want ₹50", lang, msg)
		}
		if lang != "en" && strings.HasPrefix(msg, "Great!") {
			t.Errorf("AcceptanceMessage(50, %q) fell back to English", lang)
		}
	}

	if got := AcceptanceMessage(12, "fr"); got != "Great! Deal accepted at ₹12. Thank you for fair negotiation." {
		t.Errorf("fr fallback = %q", got)
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole(" Vendor ") != RoleVendor {
		t.Error("ParseRole(Vendor) != vendor")
	}
	if ParseRole("buyer") != RoleBuyer || ParseRole("") != RoleBuyer {
		t.Error("ParseRole should default to buyer")
	}
}
