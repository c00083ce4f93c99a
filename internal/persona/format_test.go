package persona

import (
	"strings"
	"testing"
)

func TestFormatDraft(t *testing.T) {
	contract := *ByName("Senior Developer")
	draft := GenerateDraft(contract, ConsultInput{UserProblem: "flaky tests", Depth: DepthBrief})

	resp := FormatDraft(draft)

	if resp.Persona != "Senior Developer" {
		t.Errorf("Unexpected persona %q", resp.Persona)
	}
	for _, line := range strings.Split(resp.Advice, "\n") {
		if !strings.HasPrefix(line, "- ") {
			t.Errorf("Expected bulletized advice, got %q", line)
		}
	}
	if resp.Confidence != ConfidenceLow {
		t.Errorf("Expected low confidence at brief depth, got %s", resp.Confidence)
	}
}

func TestComputeConfidence(t *testing.T) {
	tests := []struct {
		depth Depth
		want  Confidence
	}{
		{DepthBrief, ConfidenceLow},
		{DepthStandard, ConfidenceMedium},
		{DepthDeep, ConfidenceHigh},
	}
	for _, tt := range tests {
		got, rationale := computeConfidence(tt.depth)
		if got != tt.want {
			t.Errorf("computeConfidence(%s) = %s, want %s", tt.depth, got, tt.want)
		}
		if rationale == "" {
			t.Errorf("Expected rationale for %s depth", tt.depth)
		}
	}
}

func TestBuildSynthesis(t *testing.T) {
	input := ConsultInput{
		UserProblem:    "monolith split",
		DesiredOutcome: "independent deploys",
		Constraints:    []string{"six month window"},
		Depth:          DepthStandard,
	}
	responses := []Response{
		FormatDraft(GenerateDraft(*ByName("Senior Architect"), input)),
		FormatDraft(GenerateDraft(*ByName(DevilsAdvocateName), input)),
	}

	syn := BuildSynthesis(responses, input.Depth, input)

	if syn.Agreements[0] != "Shared goal: monolith split" {
		t.Errorf("Unexpected agreements %v", syn.Agreements)
	}
	foundTension := false
	for _, c := range syn.Conflicts {
		if c == "Constraint tension: six month window" {
			foundTension = true
		}
	}
	if !foundTension {
		t.Errorf("Expected constraint tension, got %v", syn.Conflicts)
	}
	if len(syn.RisksTradeoffs) == 0 {
		t.Error("Expected risks sourced from Devil's Advocate advice")
	}
	if len(syn.NextSteps) == 0 {
		t.Error("Expected merged next steps")
	}
}

func TestBuildSynthesis_NoDevilsAdvocate(t *testing.T) {
	input := ConsultInput{UserProblem: "monolith split", Depth: DepthStandard}
	responses := []Response{
		FormatDraft(GenerateDraft(*ByName("Senior Architect"), input)),
	}

	syn := BuildSynthesis(responses, input.Depth, input)
	if len(syn.RisksTradeoffs) != 0 {
		t.Errorf("Expected no risks without Devil's Advocate, got %v", syn.RisksTradeoffs)
	}
}

func TestMarkdownReport(t *testing.T) {
	input := ConsultInput{UserProblem: "monolith split", Depth: DepthStandard}
	responses := []Response{
		FormatDraft(GenerateDraft(*ByName("Senior Architect"), input)),
	}
	syn := BuildSynthesis(responses, input.Depth, input)

	md := MarkdownReport(responses, syn, input.UserProblem)

	for _, want := range []string{
		"# Clarity Council Consultation",
		"**Problem:** monolith split",
		"### Senior Architect",
		"## Council Synthesis",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected %q in report", want)
		}
	}
}
