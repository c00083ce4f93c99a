// Package council implements the consultation session orchestration core:
// ambiguity detection, persona selection, the clarification protocol, debate
// cycles, and the top-level discuss state machine.
package council

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minClearRequestLen is the shortest request text considered self-contained.
const minClearRequestLen = 20

var (
	questionWords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhow\b`),
		regexp.MustCompile(`(?i)\bwhat\b`),
		regexp.MustCompile(`(?i)\bwhy\b`),
		regexp.MustCompile(`(?i)\bwhich\b`),
		regexp.MustCompile(`(?i)\bwho\b`),
	}
	vagueHints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)something`),
		regexp.MustCompile(`(?i)somehow`),
		regexp.MustCompile(`(?i)stuff`),
		regexp.MustCompile(`(?i)maybe`),
		regexp.MustCompile(`(?i)not sure`),
	}
)

// AmbiguityResult reports whether a request needs clarification and why.
type AmbiguityResult struct {
	Ambiguous bool     `json:"ambiguous"`
	Reasons   []string `json:"reasons"`
}

// DetectAmbiguity classifies request text with fixed heuristics: length,
// question intent, and vague-language markers. Each check contributes its own
// reason; the checks never short-circuit. Deterministic for identical input.
func DetectAmbiguity(requestText string) AmbiguityResult {
	trimmed := strings.TrimSpace(requestText)
	var reasons []string

	// Rune count, not byte length: multibyte text must not clear the
	// threshold early.
	if utf8.RuneCountInString(trimmed) < minClearRequestLen {
		reasons = append(reasons, "Request is very short and likely lacks context")
	}

	hasQuestionWord := false
	for _, re := range questionWords {
		if re.MatchString(trimmed) {
			hasQuestionWord = true
			break
		}
	}
	if !hasQuestionWord {
		reasons = append(reasons, "Request lacks explicit question intent")
	}

	for _, re := range vagueHints {
		if re.MatchString(trimmed) {
			reasons = append(reasons, "Request contains vague language")
			break
		}
	}

	return AmbiguityResult{Ambiguous: len(reasons) > 0, Reasons: reasons}
}
