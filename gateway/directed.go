package gateway

import (
	"regexp"
	"strings"
)

// wakePatterns match an explicit address to the assistant at the start
// of an utterance, with common greeting or apology lead-ins and the
// name variants speech recognition produces.
var wakePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(elenia|elena|elen|nena|helen|hellen|ellen)[\s,:.-]+`),
	regexp.MustCompile(`(?i)^(oye|hey|eh|hola|buenas)[\s,:.-]+(elenia|elena|elen|nena|helen|hellen|ellen)[\s,:.-]+`),
	regexp.MustCompile(`(?i)^(disculpa|perdón|perdon|por favor)[\s,:.-]+(elenia|elena|elen|nena|helen|hellen|ellen)[\s,:.-]+`),
}

// contextIndicators are request phrasings that count as addressed to
// the assistant even without a wake name.
var contextIndicators = []string{
	"puedes", "podrías", "ayúdame", "ayuda", "necesito", "quiero",
	"dime", "cuéntame", "explícame", "sabes", "conoces",
}

// rivalNames veto the context heuristic: speech aimed at another
// assistant is never ours.
var rivalNames = []string{
	"alexa", "siri", "google", "cortana", "ok google", "hey siri",
}

// IsDirected decides whether an utterance is addressed to the
// assistant: either it opens with a wake name, or it contains a
// request phrasing and names no rival assistant.
func IsDirected(text string) bool {
	lower := strings.ToLower(text)

	for _, p := range wakePatterns {
		if p.MatchString(lower) {
			return true
		}
	}

	var hasIndicator bool
	for _, indicator := range contextIndicators {
		if strings.Contains(lower, indicator) {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return false
	}
	for _, name := range rivalNames {
		if strings.Contains(lower, name) {
			return false
		}
	}
	return true
}

// StripWakePrefix removes a leading wake-name address so the engine
// sees only the actual request.
func StripWakePrefix(text string) string {
	cleaned := text
	for _, p := range wakePatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}
