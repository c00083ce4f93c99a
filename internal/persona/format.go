package persona

import (
	"fmt"
	"strings"
)

// Confidence levels attached to formatted responses.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// computeConfidence maps depth to a confidence level and rationale. Deeper
// consultations carry more evidence, so they rate higher.
func computeConfidence(d Depth) (Confidence, string) {
	switch d {
	case DepthDeep:
		return ConfidenceHigh, "Depth set to deep; more evidence provided."
	case DepthStandard:
		return ConfidenceMedium, "Standard depth with balanced evidence."
	default:
		return ConfidenceLow, "Brief depth; limited evidence included."
	}
}

// Response is a draft formatted for output: advice bulletized, lists clipped,
// confidence attached.
type Response struct {
	Persona             string     `json:"persona"`
	Summary             string     `json:"summary"`
	Advice              string     `json:"advice"`
	Assumptions         []string   `json:"assumptions"`
	Questions           []string   `json:"questions"`
	NextSteps           []string   `json:"next_steps"`
	Confidence          Confidence `json:"confidence"`
	ConfidenceRationale string     `json:"confidence_rationale"`
}

// FormatDraft converts a draft into a consultation response.
func FormatDraft(d Draft) Response {
	level, rationale := computeConfidence(d.Depth)
	return Response{
		Persona:             d.Persona,
		Summary:             d.Summary,
		Advice:              bulletize(ClipByDepth(d.Advice, d.Depth)),
		Assumptions:         ClipByDepth(d.Assumptions, d.Depth),
		Questions:           ClipByDepth(d.Questions, d.Depth),
		NextSteps:           ClipByDepth(d.NextSteps, d.Depth),
		Confidence:          level,
		ConfidenceRationale: rationale,
	}
}

func bulletize(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// Synthesis merges the individual responses into council-level insights.
type Synthesis struct {
	Agreements     []string `json:"agreements"`
	Conflicts      []string `json:"conflicts"`
	RisksTradeoffs []string `json:"risks_tradeoffs"`
	NextSteps      []string `json:"next_steps"`
	Notes          []string `json:"notes,omitempty"`
}

// BuildSynthesis derives agreements, conflicts, risks, and merged next steps
// from the formatted responses. Risk lines come from the Devil's Advocate.
func BuildSynthesis(responses []Response, depth Depth, input ConsultInput) Synthesis {
	agreements := []string{"Shared goal: " + input.UserProblem}
	if input.DesiredOutcome != "" {
		agreements = append(agreements, "Target outcome: "+input.DesiredOutcome)
	} else {
		agreements = append(agreements, "Align on explicit outcome")
	}

	conflicts := []string{"Balance speed vs quality"}
	for _, c := range input.Constraints {
		conflicts = append(conflicts, "Constraint tension: "+c)
	}

	var risks []string
	for _, r := range responses {
		if r.Persona != DevilsAdvocateName {
			continue
		}
		for _, line := range strings.Split(r.Advice, "\n") {
			risks = append(risks, strings.TrimPrefix(strings.TrimSpace(line), "- "))
		}
	}

	var merged []string
	for _, r := range responses {
		merged = append(merged, r.NextSteps...)
	}
	if len(merged) == 0 {
		merged = []string{"Align on next steps"}
	}

	return Synthesis{
		Agreements:     unique(agreements),
		Conflicts:      unique(conflicts),
		RisksTradeoffs: unique(risks),
		NextSteps:      ClipByDepth(unique(merged), depth),
		Notes:          []string{"Depth: " + string(depth)},
	}
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		out = append(out, trimmed)
	}
	return out
}

// MarkdownReport renders a full council consultation as markdown: each
// persona's perspective followed by the synthesis.
func MarkdownReport(responses []Response, synthesis Synthesis, problem string) string {
	var b strings.Builder

	b.WriteString("# Clarity Council Consultation\n\n")
	fmt.Fprintf(&b, "**Problem:** %s\n\n---\n\n", problem)

	b.WriteString("## Persona Perspectives\n\n")
	for _, r := range responses {
		fmt.Fprintf(&b, "### %s\n", r.Persona)
		fmt.Fprintf(&b, "**Confidence:** %s - %s\n\n", r.Confidence, r.ConfidenceRationale)
		fmt.Fprintf(&b, "**Summary:** %s\n\n", r.Summary)

		b.WriteString("**Advice:**\n")
		for _, line := range strings.Split(r.Advice, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				fmt.Fprintf(&b, "- %s\n", strings.TrimPrefix(t, "- "))
			}
		}
		b.WriteString("\n")

		writeBulletSection(&b, "Assumptions", r.Assumptions)
		writeBulletSection(&b, "Key Questions", r.Questions)
		writeBulletSection(&b, "Next Steps", r.NextSteps)
		b.WriteString("---\n\n")
	}

	b.WriteString("## Council Synthesis\n\n")
	writeBulletSection(&b, "Agreements", synthesis.Agreements)
	writeBulletSection(&b, "Conflicts & Tensions", synthesis.Conflicts)
	writeBulletSection(&b, "Risks & Tradeoffs", synthesis.RisksTradeoffs)
	writeBulletSection(&b, "Council-Recommended Next Steps", synthesis.NextSteps)
	writeBulletSection(&b, "Notes", synthesis.Notes)

	return b.String()
}

func writeBulletSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
