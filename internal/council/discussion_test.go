package council

import (
	"strings"
	"testing"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/persona"
)

func fakeDrafter() Drafter {
	return DraftFunc(func(c persona.Contract, in persona.ConsultInput) persona.Draft {
		return persona.Draft{
			Persona:   c.Name,
			Summary:   "summary from " + c.Name,
			Advice:    []string{c.Soul, "point one", "point two", "point three", "point four"},
			Questions: []string{"what is the deadline?"},
			NextSteps: []string{"write it down"},
			Depth:     in.Depth,
		}
	})
}

func debateParticipants(names ...string) []domain.Participant {
	out := make([]domain.Participant, len(names))
	for i, n := range names {
		out[i] = domain.Participant{ParticipantID: n, Type: domain.ParticipantPersona, Name: n}
	}
	return out
}

func TestStartDiscussion_OneCycle(t *testing.T) {
	session := &domain.Session{SessionID: "sess-1", RequestText: "improve checkout latency"}

	result := StartDiscussion(DiscussionParams{
		Session:     session,
		Personas:    debateParticipants("Senior Developer", "Senior Architect"),
		Topic:       "improve checkout latency",
		CycleNumber: 1,
		Catalog:     persona.NewCatalog(nil),
		Drafter:     fakeDrafter(),
	})

	updated := result.UpdatedSession
	if updated.DebateCycles != 1 {
		t.Errorf("Expected 1 debate cycle, got %d", updated.DebateCycles)
	}
	if updated.DebateCycles != len(updated.Discussions) {
		t.Errorf("Expected DebateCycles to equal discussion count, got %d and %d",
			updated.DebateCycles, len(updated.Discussions))
	}

	d := result.Discussion
	if d.Status != domain.DebateConcluded {
		t.Errorf("Expected concluded discussion, got %s", d.Status)
	}
	if d.ExchangeEnds == nil {
		t.Error("Expected exchange end timestamp")
	}
	if len(d.MessageTurns) != 2 {
		t.Fatalf("Expected one turn per persona, got %d", len(d.MessageTurns))
	}
	if d.MessageTurns[0].Sender.Name != "Senior Developer" || d.MessageTurns[1].Sender.Name != "Senior Architect" {
		t.Error("Expected turns in persona order")
	}
	for i, turn := range d.MessageTurns {
		if turn.SequenceNumber != i+1 {
			t.Errorf("Turn %d: expected sequence %d, got %d", i, i+1, turn.SequenceNumber)
		}
		if turn.RelatedCycle == nil || turn.RelatedCycle.CycleType != domain.CycleDebate || turn.RelatedCycle.Number != 1 {
			t.Errorf("Turn %d: unexpected cycle ref %+v", i, turn.RelatedCycle)
		}
	}
	if !strings.Contains(result.Summary, "Senior Developer, Senior Architect") {
		t.Errorf("Expected participant names in summary, got %q", result.Summary)
	}

	// Input session untouched.
	if session.DebateCycles != 0 || len(session.Discussions) != 0 {
		t.Error("Expected input session to remain unmodified")
	}
}

func TestStartDiscussion_SequencesContinueFromTranscript(t *testing.T) {
	session := &domain.Session{
		SessionID: "sess-1",
		MessageTurns: []domain.MessageTurn{
			{TurnID: "t1", SequenceNumber: 1},
			{TurnID: "t2", SequenceNumber: 2},
		},
	}

	result := StartDiscussion(DiscussionParams{
		Session:     session,
		Personas:    debateParticipants("QA Engineer"),
		Topic:       "regression strategy",
		CycleNumber: 1,
		Catalog:     persona.NewCatalog(nil),
		Drafter:     fakeDrafter(),
	})

	if got := result.Discussion.MessageTurns[0].SequenceNumber; got != 3 {
		t.Errorf("Expected sequence 3, got %d", got)
	}
	if got := len(result.UpdatedSession.MessageTurns); got != 3 {
		t.Errorf("Expected transcript length 3, got %d", got)
	}
}

func TestStartDiscussion_SkipsUnknownPersonas(t *testing.T) {
	session := &domain.Session{SessionID: "sess-1"}

	result := StartDiscussion(DiscussionParams{
		Session:     session,
		Personas:    debateParticipants("Imaginary Persona", "Product Owner"),
		Topic:       "roadmap shape",
		CycleNumber: 1,
		Catalog:     persona.NewCatalog(nil),
		Drafter:     fakeDrafter(),
	})

	if len(result.Discussion.MessageTurns) != 1 {
		t.Fatalf("Expected unknown persona skipped, got %d turns", len(result.Discussion.MessageTurns))
	}
	if result.Discussion.MessageTurns[0].Sender.Name != "Product Owner" {
		t.Errorf("Unexpected sender %q", result.Discussion.MessageTurns[0].Sender.Name)
	}
}

func TestDebateTurnContent(t *testing.T) {
	draft := persona.Draft{
		Advice:    []string{"soul line", "a", "b", "c", "d"},
		Questions: []string{"q1", "q2"},
		NextSteps: []string{"s1", "s2"},
	}

	content := debateTurnContent("QA Engineer", draft)

	if !strings.HasPrefix(content, "QA Engineer: a\nb\nc") {
		t.Errorf("Expected first three post-soul advice points, got %q", content)
	}
	if !strings.Contains(content, "**Key Question:** q1") {
		t.Errorf("Expected first question, got %q", content)
	}
	if !strings.Contains(content, "**Recommends:** s1") {
		t.Errorf("Expected first next step, got %q", content)
	}
	if strings.Contains(content, "\nd\n") {
		t.Errorf("Expected advice clipped to three points, got %q", content)
	}
}
