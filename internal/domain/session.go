// Package domain holds the consultation session aggregate and its nested entities.
package domain

import (
	"time"
)

// Status is the lifecycle state of a consultation session.
type Status string

const (
	StatusCreated    Status = "created"
	StatusClarifying Status = "clarifying"
	StatusDebating   Status = "debating"
	StatusFinal      Status = "final"
	StatusCompleted  Status = "completed"
	// Reserved terminal states, not produced by the current flow.
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Valid reports whether s is a known session status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusClarifying, StatusDebating, StatusFinal,
		StatusCompleted, StatusCancelled, StatusError:
		return true
	}
	return false
}

// directSettable lists the statuses callers may set through SetStatus.
// Anything else is rejected by leaving the session unchanged.
var directSettable = map[Status]bool{
	StatusCreated:    true,
	StatusClarifying: true,
	StatusDebating:   true,
	StatusCompleted:  true,
}

// DirectSettable reports whether s may be applied via a direct status set.
func (s Status) DirectSettable() bool {
	return directSettable[s]
}

// ParticipantType discriminates the actors in a session.
type ParticipantType string

const (
	ParticipantUser    ParticipantType = "user"
	ParticipantPersona ParticipantType = "persona"
	ParticipantSystem  ParticipantType = "system"
)

// MessageType categorizes a message turn.
type MessageType string

const (
	MessageQuestion   MessageType = "question"
	MessageAnswer     MessageType = "answer"
	MessageDiscussion MessageType = "discussion"
	MessageConclusion MessageType = "conclusion"
	MessageAssumption MessageType = "assumption_statement"
)

// QuestionStatus is the state of a clarification question.
type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
	QuestionSkipped  QuestionStatus = "skipped"
	QuestionDeferred QuestionStatus = "deferred"
)

// DebateStatus is the state of one council discussion.
type DebateStatus string

const (
	DebateInProgress   DebateStatus = "in_progress"
	DebateConcluded    DebateStatus = "concluded"
	DebateLimitReached DebateStatus = "limit_reached"
)

// CycleType tags which kind of round a message turn belongs to.
type CycleType string

const (
	CycleClarification CycleType = "clarification"
	CycleDebate        CycleType = "debate"
)

// Participant is a distinct actor in a session.
type Participant struct {
	ParticipantID string          `json:"participantId"`
	Type          ParticipantType `json:"type"`
	Name          string          `json:"name"`
	Role          string          `json:"role,omitempty"`
}

// CycleRef correlates a message turn with a clarification round or debate cycle.
type CycleRef struct {
	CycleType CycleType `json:"cycleType"`
	Number    int       `json:"number"`
}

// MessageTurn is a single message in the session transcript. Sequence numbers
// increase monotonically within a session.
type MessageTurn struct {
	TurnID         string       `json:"turnId"`
	SessionID      string       `json:"sessionId"`
	Sender         Participant  `json:"sender"`
	Recipient      *Participant `json:"recipient,omitempty"`
	MessageType    MessageType  `json:"messageType"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	SequenceNumber int          `json:"sequenceNumber"`
	RelatedCycle   *CycleRef    `json:"relatedCycleOrRound,omitempty"`
}

// ClarificationAnswer is the immutable record of one answer (or skip).
type ClarificationAnswer struct {
	AnswerID    string    `json:"answerId"`
	QuestionID  string    `json:"questionId"`
	SessionID   string    `json:"sessionId"`
	Answer      string    `json:"answer"`
	SkipCommand bool      `json:"skipCommand"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClarificationQuestion is one question in the clarification protocol.
// Ordering key is (RoundNumber, SequenceInRound) ascending.
type ClarificationQuestion struct {
	QuestionID      string               `json:"questionId"`
	SessionID       string               `json:"sessionId"`
	RoundNumber     int                  `json:"roundNumber"`
	SequenceInRound int                  `json:"sequenceInRound"`
	Question        string               `json:"question"`
	TargetAmbiguity string               `json:"targetAmbiguity,omitempty"`
	AskedBy         Participant          `json:"askedBy"`
	UserAnswer      *ClarificationAnswer `json:"userAnswer,omitempty"`
	Status          QuestionStatus       `json:"status"`
	CreatedAt       time.Time            `json:"createdAt"`
	AnsweredAt      *time.Time           `json:"answeredAt,omitempty"`
}

// Assumption records a default assumed on behalf of a skipped question.
type Assumption struct {
	AssumptionID      string    `json:"assumptionId"`
	SessionID         string    `json:"sessionId"`
	RelatedQuestionID string    `json:"relatedQuestionId,omitempty"`
	Assumption        string    `json:"assumption"`
	Rationale         string    `json:"rationale"`
	AddedAt           time.Time `json:"addedAt"`
}

// Discussion is one concluded (or in-progress) debate cycle.
type Discussion struct {
	DiscussionID          string        `json:"discussionId"`
	SessionID             string        `json:"sessionId"`
	CycleNumber           int           `json:"cycleNumber"`
	ParticipatingPersonas []string      `json:"participatingPersonas"`
	ExchangeStarts        time.Time     `json:"exchangeStarts"`
	ExchangeEnds          *time.Time    `json:"exchangeEnds,omitempty"`
	Topic                 string        `json:"topic,omitempty"`
	MessageTurns          []MessageTurn `json:"messageTurns"`
	ResolutionSummary     string        `json:"resolutionSummary,omitempty"`
	Status                DebateStatus  `json:"status"`
}

// PersonaSelection records how debate participants were chosen.
type PersonaSelection struct {
	SelectionID           string    `json:"selectionId"`
	SessionID             string    `json:"sessionId"`
	RequestClassification string    `json:"requestClassification"`
	SelectedPersonas      []string  `json:"selectedPersonas"`
	Reason                string    `json:"reason"`
	UserOverride          bool      `json:"userOverride"`
	OverriddenPersonas    []string  `json:"overriddenPersonas,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Session is the root aggregate of one consultation conversation. It owns
// every nested collection exclusively; nothing is shared across sessions.
// Invariant: DebateCycles == len(Discussions).
type Session struct {
	SessionID               string                  `json:"sessionId"`
	Status                  Status                  `json:"status"`
	RequestText             string                  `json:"requestText"`
	ClarificationRounds     int                     `json:"clarificationRounds"`
	DebateCycles            int                     `json:"debateCycles"`
	ExtendedDebateRequested bool                    `json:"extendedDebateRequested"`
	Participants            []Participant           `json:"participants"`
	MessageTurns            []MessageTurn           `json:"messageTurns"`
	ClarificationQuestions  []ClarificationQuestion `json:"clarificationQuestions"`
	Assumptions             []Assumption            `json:"assumptions"`
	Discussions             []Discussion            `json:"discussions"`
	PersonaSelection        *PersonaSelection       `json:"personaSelection,omitempty"`
	FinalAnswer             string                  `json:"finalAnswer,omitempty"`
	Metadata                map[string]any          `json:"metadata,omitempty"`
	CreatedAt               time.Time               `json:"createdAt"`
	UpdatedAt               time.Time               `json:"updatedAt"`
}

// NextSequence returns the sequence number the next message turn should use.
func (s *Session) NextSequence() int {
	return len(s.MessageTurns) + 1
}

// UserParticipant returns the user participant, or nil if none exists yet.
func (s *Session) UserParticipant() *Participant {
	for i := range s.Participants {
		if s.Participants[i].Type == ParticipantUser {
			return &s.Participants[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the session. Repository updates clone before
// mutating so concurrent readers never observe a partial write.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s

	out.Participants = append([]Participant(nil), s.Participants...)
	out.MessageTurns = cloneTurns(s.MessageTurns)

	out.ClarificationQuestions = make([]ClarificationQuestion, len(s.ClarificationQuestions))
	for i, q := range s.ClarificationQuestions {
		cq := q
		if q.UserAnswer != nil {
			a := *q.UserAnswer
			cq.UserAnswer = &a
		}
		if q.AnsweredAt != nil {
			t := *q.AnsweredAt
			cq.AnsweredAt = &t
		}
		out.ClarificationQuestions[i] = cq
	}

	out.Assumptions = append([]Assumption(nil), s.Assumptions...)

	out.Discussions = make([]Discussion, len(s.Discussions))
	for i, d := range s.Discussions {
		cd := d
		cd.ParticipatingPersonas = append([]string(nil), d.ParticipatingPersonas...)
		cd.MessageTurns = cloneTurns(d.MessageTurns)
		if d.ExchangeEnds != nil {
			t := *d.ExchangeEnds
			cd.ExchangeEnds = &t
		}
		out.Discussions[i] = cd
	}

	if s.PersonaSelection != nil {
		ps := *s.PersonaSelection
		ps.SelectedPersonas = append([]string(nil), s.PersonaSelection.SelectedPersonas...)
		ps.OverriddenPersonas = append([]string(nil), s.PersonaSelection.OverriddenPersonas...)
		out.PersonaSelection = &ps
	}

	if s.Metadata != nil {
		out.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}

	return &out
}

func cloneTurns(turns []MessageTurn) []MessageTurn {
	out := make([]MessageTurn, len(turns))
	for i, t := range turns {
		ct := t
		if t.Recipient != nil {
			r := *t.Recipient
			ct.Recipient = &r
		}
		if t.RelatedCycle != nil {
			c := *t.RelatedCycle
			ct.RelatedCycle = &c
		}
		out[i] = ct
	}
	return out
}
