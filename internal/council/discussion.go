package council

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/persona"
)

// Drafter produces a persona's structured take on a consultation input.
// The production implementation is persona.GenerateDraft; tests substitute
// their own.
type Drafter interface {
	Generate(contract persona.Contract, input persona.ConsultInput) persona.Draft
}

// DraftFunc adapts a plain function to the Drafter interface.
type DraftFunc func(persona.Contract, persona.ConsultInput) persona.Draft

// Generate calls f.
func (f DraftFunc) Generate(c persona.Contract, in persona.ConsultInput) persona.Draft {
	return f(c, in)
}

// DiscussionParams bundles the inputs to StartDiscussion.
type DiscussionParams struct {
	Session     *domain.Session
	Personas    []domain.Participant
	Topic       string
	CycleNumber int
	Catalog     *persona.Catalog
	Drafter     Drafter
}

// DiscussionResult is one executed debate cycle.
type DiscussionResult struct {
	Discussion     domain.Discussion
	UpdatedSession *domain.Session
	Summary        string
}

// StartDiscussion runs a single debate cycle: one message turn per persona,
// in the given order, each built from that persona's draft at standard
// depth. The returned session appends the concluded discussion and its
// turns and increments DebateCycles by exactly one.
func StartDiscussion(p DiscussionParams) DiscussionResult {
	now := time.Now().UTC()

	names := make([]string, len(p.Personas))
	for i, pp := range p.Personas {
		names[i] = pp.Name
	}

	discussion := domain.Discussion{
		DiscussionID:          uuid.NewString(),
		SessionID:             p.Session.SessionID,
		CycleNumber:           p.CycleNumber,
		ParticipatingPersonas: names,
		ExchangeStarts:        now,
		Topic:                 p.Topic,
		Status:                domain.DebateInProgress,
	}

	input := persona.ConsultInput{
		UserProblem: p.Topic,
		Context:     p.Session.RequestText,
		Depth:       persona.DepthStandard,
	}

	turns := make([]domain.MessageTurn, 0, len(p.Personas))
	for _, participant := range p.Personas {
		contract := p.Catalog.Lookup(participant.Name)
		if contract == nil {
			// Unknown to the current catalog; the selector filters these
			// out, but an explicit override list can still name one.
			continue
		}
		draft := p.Drafter.Generate(*contract, input)

		turns = append(turns, domain.MessageTurn{
			TurnID:         uuid.NewString(),
			SessionID:      p.Session.SessionID,
			Sender:         participant,
			MessageType:    domain.MessageDiscussion,
			Content:        debateTurnContent(participant.Name, draft),
			Timestamp:      now,
			SequenceNumber: len(p.Session.MessageTurns) + len(turns) + 1,
			RelatedCycle:   &domain.CycleRef{CycleType: domain.CycleDebate, Number: p.CycleNumber},
		})
	}

	summary := fmt.Sprintf("Council discussed %s. Participating personas: %s. Consensus on approach established.",
		p.Topic, strings.Join(names, ", "))

	ended := time.Now().UTC()
	discussion.MessageTurns = turns
	discussion.ExchangeEnds = &ended
	discussion.Status = domain.DebateConcluded
	discussion.ResolutionSummary = summary

	updated := p.Session.Clone()
	updated.Discussions = append(updated.Discussions, discussion)
	updated.MessageTurns = append(updated.MessageTurns, turns...)
	updated.DebateCycles++
	updated.UpdatedAt = ended

	return DiscussionResult{
		Discussion:     discussion,
		UpdatedSession: updated,
		Summary:        summary,
	}
}

// debateTurnContent renders one persona's debate contribution: the persona
// name, the 2-3 advice points past the generic soul line, the first
// question, and the first recommended next step.
func debateTurnContent(name string, draft persona.Draft) string {
	var b strings.Builder
	b.WriteString(name + ": ")

	advice := draft.Advice
	if len(advice) > 1 {
		points := advice[1:]
		if len(points) > 3 {
			points = points[:3]
		}
		b.WriteString(strings.Join(points, "\n"))
		b.WriteString("\n\n")
	}
	if len(draft.Questions) > 0 {
		fmt.Fprintf(&b, "**Key Question:** %s\n\n", draft.Questions[0])
	}
	if len(draft.NextSteps) > 0 {
		fmt.Fprintf(&b, "**Recommends:** %s", draft.NextSteps[0])
	}
	return strings.TrimSpace(b.String())
}
