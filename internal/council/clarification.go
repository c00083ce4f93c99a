package council

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/claritycouncil/council/internal/domain"
)

// The fixed first-round question set posed when a request is ambiguous.
var defaultQuestions = []struct {
	question        string
	targetAmbiguity string
}{
	{"What is your primary goal or outcome?", "goal"},
	{"What constraints or deadlines should we consider?", "constraints"},
	{"Who is the intended audience or user?", "audience"},
}

var skipCommandRe = regexp.MustCompile(`(?i)^\s*(skip|defer)(\s+question)?\s*$`)

// IsSkipCommand reports whether answerText is a skip/defer signal rather
// than a real answer. Matching tolerates case and surrounding whitespace;
// any other text is treated as an answer.
func IsSkipCommand(answerText string) bool {
	return skipCommandRe.MatchString(answerText)
}

// InitializeClarifications returns the session's question set, synthesizing
// the fixed round-1 trio when none exists yet. Idempotent: a session that
// already has questions gets them back unchanged.
func InitializeClarifications(session *domain.Session, askedBy domain.Participant) []domain.ClarificationQuestion {
	if len(session.ClarificationQuestions) > 0 {
		return session.ClarificationQuestions
	}
	now := time.Now().UTC()
	questions := make([]domain.ClarificationQuestion, len(defaultQuestions))
	for i, q := range defaultQuestions {
		questions[i] = domain.ClarificationQuestion{
			QuestionID:      uuid.NewString(),
			SessionID:       session.SessionID,
			RoundNumber:     1,
			SequenceInRound: i + 1,
			Question:        q.question,
			TargetAmbiguity: q.targetAmbiguity,
			AskedBy:         askedBy,
			Status:          domain.QuestionPending,
			CreatedAt:       now,
		}
	}
	return questions
}

// NextPendingQuestion returns the pending question with the smallest
// (round, sequence) key, or nil when none is pending.
func NextPendingQuestion(session *domain.Session) *domain.ClarificationQuestion {
	var best *domain.ClarificationQuestion
	for i := range session.ClarificationQuestions {
		q := &session.ClarificationQuestions[i]
		if q.Status != domain.QuestionPending {
			continue
		}
		if best == nil ||
			q.RoundNumber < best.RoundNumber ||
			(q.RoundNumber == best.RoundNumber && q.SequenceInRound < best.SequenceInRound) {
			best = q
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// SkippedQuestions returns the questions currently marked skipped.
func SkippedQuestions(session *domain.Session) []domain.ClarificationQuestion {
	var out []domain.ClarificationQuestion
	for _, q := range session.ClarificationQuestions {
		if q.Status == domain.QuestionSkipped {
			out = append(out, q)
		}
	}
	return out
}

// AnswerParams bundles the inputs to RecordAnswer.
type AnswerParams struct {
	Session         *domain.Session
	Question        domain.ClarificationQuestion
	AnswerText      string
	SkipCommand     bool
	UserParticipant domain.Participant
}

// RecordAnswer applies one answer (or skip) to its question and appends the
// user's message turn. The input session is not mutated; a new value is
// returned along with the next pending question, if any.
func RecordAnswer(p AnswerParams) (*domain.Session, *domain.ClarificationQuestion) {
	now := time.Now().UTC()
	updated := p.Session.Clone()

	answer := domain.ClarificationAnswer{
		AnswerID:    uuid.NewString(),
		QuestionID:  p.Question.QuestionID,
		SessionID:   updated.SessionID,
		Answer:      p.AnswerText,
		SkipCommand: p.SkipCommand,
		CreatedAt:   now,
	}

	status := domain.QuestionAnswered
	if p.SkipCommand {
		status = domain.QuestionSkipped
	}
	for i := range updated.ClarificationQuestions {
		q := &updated.ClarificationQuestions[i]
		if q.QuestionID != p.Question.QuestionID {
			continue
		}
		q.Status = status
		q.UserAnswer = &answer
		answeredAt := now
		q.AnsweredAt = &answeredAt
	}

	updated.MessageTurns = append(updated.MessageTurns, domain.MessageTurn{
		TurnID:         uuid.NewString(),
		SessionID:      updated.SessionID,
		Sender:         p.UserParticipant,
		MessageType:    domain.MessageAnswer,
		Content:        p.AnswerText,
		Timestamp:      now,
		SequenceNumber: p.Session.NextSequence(),
	})
	updated.UpdatedAt = now

	return updated, NextPendingQuestion(updated)
}

// NewSkipAssumption derives the assumption recorded when a question is
// skipped. Its RelatedQuestionID ties it back so a later revisit can remove
// exactly this assumption.
func NewSkipAssumption(sessionID string, question domain.ClarificationQuestion) domain.Assumption {
	target := question.TargetAmbiguity
	if target == "" {
		target = "details"
	}
	return domain.Assumption{
		AssumptionID:      uuid.NewString(),
		SessionID:         sessionID,
		RelatedQuestionID: question.QuestionID,
		Assumption:        fmt.Sprintf("Assuming %s are acceptable as default", target),
		Rationale:         "User skipped clarification question",
		AddedAt:           time.Now().UTC(),
	}
}

// RevisitSkipped re-opens every skipped question: status back to pending,
// answer and answered timestamp cleared, linked assumptions removed, session
// status returned to clarifying. Answered questions and unrelated
// assumptions are untouched. With no skipped questions the session is
// returned unchanged.
func RevisitSkipped(session *domain.Session) *domain.Session {
	skipped := SkippedQuestions(session)
	if len(skipped) == 0 {
		return session
	}

	skippedIDs := make(map[string]bool, len(skipped))
	for _, q := range skipped {
		skippedIDs[q.QuestionID] = true
	}

	updated := session.Clone()
	for i := range updated.ClarificationQuestions {
		q := &updated.ClarificationQuestions[i]
		if q.Status == domain.QuestionSkipped {
			q.Status = domain.QuestionPending
			q.UserAnswer = nil
			q.AnsweredAt = nil
		}
	}

	var kept []domain.Assumption
	for _, a := range updated.Assumptions {
		if a.RelatedQuestionID != "" && skippedIDs[a.RelatedQuestionID] {
			continue
		}
		kept = append(kept, a)
	}
	updated.Assumptions = kept

	updated.Status = domain.StatusClarifying
	updated.UpdatedAt = time.Now().UTC()
	return updated
}

// NewSystemParticipant creates the system actor that asks clarification
// questions and posts bookkeeping messages.
func NewSystemParticipant() domain.Participant {
	return domain.Participant{
		ParticipantID: uuid.NewString(),
		Type:          domain.ParticipantSystem,
		Name:          "System",
	}
}
