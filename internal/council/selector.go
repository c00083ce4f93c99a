package council

import (
	"regexp"

	"github.com/claritycouncil/council/internal/persona"
)

// keywordRule maps a request-text pattern to the personas it pulls into the
// debate. Rules are applied in order and accumulate as a set.
type keywordRule struct {
	pattern  *regexp.Regexp
	personas []string
}

var keywordRules = []keywordRule{
	{regexp.MustCompile(`(?i)security|compliance|threat|vulnerability`), []string{"Security Expert"}},
	{regexp.MustCompile(`(?i)devops|deployment|kubernetes|docker|ci/cd|pipeline|observability`), []string{"DevOps Engineer"}},
	{regexp.MustCompile(`(?i)architecture|design|system|scalability`), []string{"Senior Architect"}},
	{regexp.MustCompile(`(?i)performance|latency|throughput|optimization`), []string{"Senior Developer"}},
	{regexp.MustCompile(`(?i)product|roadmap|stakeholder|business value`), []string{"Product Owner"}},
	{regexp.MustCompile(`(?i)testing|qa|quality|regression`), []string{"QA Engineer"}},
}

// defaultPersonas is the fallback triad when no keyword rule matches.
var defaultPersonas = []string{"Senior Developer", "Senior Architect", "Product Owner"}

// Selection is the outcome of persona selection for one debate phase.
type Selection struct {
	Selected     []string `json:"selected"`
	Reason       string   `json:"reason"`
	UserOverride bool     `json:"userOverride"`
}

// SelectPersonas chooses debate participants. An explicit caller override is
// returned verbatim; name validation is the draft generator's concern, not
// the selector's. Otherwise keyword rules accumulate matches, the default
// triad covers the empty case, and the result is filtered to personas the
// catalog actually knows.
func SelectPersonas(requestText string, personasRequested []string) Selection {
	if len(personasRequested) > 0 {
		return Selection{
			Selected:     append([]string(nil), personasRequested...),
			Reason:       "User requested specific personas by name",
			UserOverride: true,
		}
	}

	seen := make(map[string]bool)
	var selected []string
	for _, rule := range keywordRules {
		if !rule.pattern.MatchString(requestText) {
			continue
		}
		for _, name := range rule.personas {
			if !seen[name] {
				seen[name] = true
				selected = append(selected, name)
			}
		}
	}

	usedDefaults := len(selected) == 0
	if usedDefaults {
		selected = append(selected, defaultPersonas...)
	}

	var filtered []string
	for _, name := range selected {
		if persona.Known(name) {
			filtered = append(filtered, name)
		}
	}

	reason := "Matched personas to request keywords"
	if usedDefaults {
		reason = "Using defaults"
	}

	return Selection{Selected: filtered, Reason: reason, UserOverride: false}
}
