package taskhandler

import (
	"strings"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// Keyword rules applied in fixed priority order when the model-backed
// classification is unavailable or unparsable. Pure and model-free so it
// is independently testable.
var fallbackRules = []struct {
	intent   statex.Intent
	keywords []string
}{
	{statex.IntentCheckAvailability, []string{"available", "availability", "free", "open"}},
	{statex.IntentBookAppointment, []string{"book", "schedule", "appointment", "see doctor"}},
	{statex.IntentCancelAppointment, []string{"cancel", "remove", "delete"}},
	{statex.IntentReschedule, []string{"reschedule", "change", "move", "modify"}},
}

const (
	fallbackKeywordConfidence = 0.8
	fallbackDefaultConfidence = 0.6
)

// FallbackClassify applies the deterministic keyword rules. The first
// rule with a match wins; everything else is a general inquiry.
func FallbackClassify(query string) contractx.Classification {
	lower := strings.ToLower(query)

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return contractx.Classification{
					Intent:     rule.intent,
					Confidence: fallbackKeywordConfidence,
					Reasoning:  "fallback: keyword match",
				}
			}
		}
	}

	return contractx.Classification{
		Intent:     statex.IntentGeneralInquiry,
		Confidence: fallbackDefaultConfidence,
		Reasoning:  "fallback: default classification",
	}
}
