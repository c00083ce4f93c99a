package persona

import (
	"fmt"
	"strings"
)

// Depth controls how much content a draft carries.
type Depth string

const (
	DepthBrief    Depth = "brief"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// ValidDepth reports whether d is a recognized depth, defaulting empty to standard.
func ValidDepth(d Depth) bool {
	switch d {
	case DepthBrief, DepthStandard, DepthDeep:
		return true
	}
	return false
}

// depthLimits returns the min/max item counts for a depth level.
func depthLimits(d Depth) (min, max int) {
	switch d {
	case DepthBrief:
		return 2, 3
	case DepthStandard:
		return 5, 7
	default: // deep: effectively unlimited
		return 10, 999
	}
}

// ClipByDepth returns the depth-appropriate prefix of items: size is clamped
// between the depth's min and max, preferring earlier items.
func ClipByDepth[T any](items []T, d Depth) []T {
	min, max := depthLimits(d)
	size := len(items)
	if size > max {
		size = max
	}
	if size < min {
		size = min
	}
	if size > len(items) {
		size = len(items)
	}
	return items[:size]
}

// ConsultInput carries the caller's problem statement into draft generation.
type ConsultInput struct {
	UserProblem    string   `json:"user_problem"`
	Context        string   `json:"context,omitempty"`
	DesiredOutcome string   `json:"desired_outcome,omitempty"`
	Constraints    []string `json:"constraints,omitempty"`
	Depth          Depth    `json:"depth"`
}

// Draft is one persona's structured take on a consultation input.
type Draft struct {
	Persona     string   `json:"persona"`
	Summary     string   `json:"summary"`
	Advice      []string `json:"advice"`
	Assumptions []string `json:"assumptions"`
	Questions   []string `json:"questions"`
	NextSteps   []string `json:"next_steps"`
	Depth       Depth    `json:"depth"`
}

// GenerateDraft produces a draft for one persona. It is a pure function of
// the contract and input: identical arguments yield identical drafts.
func GenerateDraft(c Contract, input ConsultInput) Draft {
	if c.Name == DevilsAdvocateName {
		return devilsAdvocateDraft(input)
	}

	advice := []string{c.Soul}
	for _, f := range c.Focus {
		advice = append(advice, fmt.Sprintf("%s focus: %s", c.Name, f))
	}
	if input.DesiredOutcome != "" {
		advice = append(advice, "Aim: "+input.DesiredOutcome)
	} else {
		advice = append(advice, "Clarify desired outcome")
	}
	if input.Context != "" {
		advice = append(advice, "Context: "+input.Context)
	} else {
		advice = append(advice, "Gather context and baselines")
	}
	for _, con := range c.Constraints {
		advice = append(advice, "Respect constraint: "+con)
	}

	assumptions := []string{"Problem: " + input.UserProblem}
	if input.DesiredOutcome != "" {
		assumptions = append(assumptions, "Outcome: "+input.DesiredOutcome)
	} else {
		assumptions = append(assumptions, "Outcome: unspecified")
	}
	if len(input.Constraints) > 0 {
		assumptions = append(assumptions, "Constraints: "+strings.Join(input.Constraints, ", "))
	} else {
		assumptions = append(assumptions, "Constraints: none provided")
	}

	questions := []string{
		"What is the current baseline?",
		"What is the budget and timeline?",
		"Who is accountable and informed?",
	}

	nextSteps := []string{
		"Restate success metric for " + c.Name,
		"Draft a 3-step plan with milestones",
		"Assign owners and timelines",
		"Identify risks and mitigations",
		"Set instrumentation for tracking",
		"Schedule a review after first milestone",
	}

	return Draft{
		Persona:     c.Name,
		Summary:     fmt.Sprintf("%s: %s", c.Name, input.UserProblem),
		Advice:      ClipByDepth(advice, input.Depth),
		Assumptions: ClipByDepth(assumptions, input.Depth),
		Questions:   ClipByDepth(questions, input.Depth),
		NextSteps:   ClipByDepth(nextSteps, input.Depth),
		Depth:       input.Depth,
	}
}

// devilsAdvocateDraft is the specialized risk-first draft.
func devilsAdvocateDraft(input ConsultInput) Draft {
	advice := []string{
		"Assumption risk: unvalidated demand",
		"Execution risk: timeline too tight",
		"Financial risk: budget overrun",
		"People risk: team capacity",
		"Operational risk: tooling gaps",
		"Challenge optimistic assumptions",
		"Highlight tradeoffs versus constraints",
		"Ask for fallback plan",
	}

	questions := []string{
		"What if budget is cut by 30%?",
		"What if adoption lags?",
		"What if key dependency slips?",
	}

	nextSteps := []string{
		"List top 3 risks and mitigations",
		"Define a fallback if primary plan fails",
		"Timebox a spike to validate assumptions",
		"Add leading indicators for risk detection",
		"Quantify impact range for worst case",
		"Set an explicit stop/go checkpoint",
	}

	return Draft{
		Persona:     DevilsAdvocateName,
		Summary:     fmt.Sprintf("%s: Stress-test assumptions for %s", DevilsAdvocateName, input.UserProblem),
		Advice:      ClipByDepth(advice, input.Depth),
		Assumptions: []string{"Assumptions need explicit validation"},
		Questions:   ClipByDepth(questions, input.Depth),
		NextSteps:   ClipByDepth(nextSteps, input.Depth),
		Depth:       input.Depth,
	}
}
