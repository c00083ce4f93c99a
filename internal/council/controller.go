package council

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/persona"
)

// ValidationError marks caller mistakes detected before any session
// mutation. The transport adapter maps these to a validation error code.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// errRequestTextRequired is returned when no session can be resolved and no
// request text was supplied to start one.
var errRequestTextRequired = &ValidationError{Msg: "requestText is required when starting a new session"}

// Next-action types surfaced to the caller.
const (
	ActionAnswerQuestion    = "answer_question"
	ActionReviewFinalAnswer = "review_final_answer"
	ActionNone              = "none"
)

// NextAction tells the caller what the session expects next.
type NextAction struct {
	ActionType string `json:"actionType"`
	Prompt     string `json:"prompt,omitempty"`
}

// QuestionView is the caller-facing summary of a pending question.
type QuestionView struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Round      int    `json:"round"`
	AskedBy    string `json:"askedBy"`
}

// DiscussRequest is the single entry-point input. Every field is optional
// except that a new session needs RequestText.
type DiscussRequest struct {
	SessionID         string   `json:"sessionId,omitempty"`
	RequestText       string   `json:"requestText,omitempty"`
	Answer            string   `json:"answer,omitempty"`
	PersonasRequested []string `json:"personasRequested,omitempty"`
	ExtendedDebate    bool     `json:"extendedDebate,omitempty"`
	RevisitSkipped    bool     `json:"revisitSkipped,omitempty"`
	// InteractiveMode defaults to the configured process-wide setting
	// when nil.
	InteractiveMode *bool `json:"interactiveMode,omitempty"`
}

// DiscussResponse is the view returned on every call.
type DiscussResponse struct {
	SessionID       string          `json:"sessionId"`
	Status          domain.Status   `json:"status"`
	Message         string          `json:"message"`
	NextAction      *NextAction     `json:"nextAction,omitempty"`
	NextQuestion    *QuestionView   `json:"nextQuestion,omitempty"`
	DebateExchanges string          `json:"debateExchanges,omitempty"`
	CurrentState    *domain.Session `json:"currentState"`
}

// Controller drives the consultation state machine. Each call advances the
// session by at most one meaningful phase and returns as soon as a
// caller-facing action is produced.
type Controller struct {
	mgr     *SessionManager
	catalog *persona.Catalog
	drafter Drafter

	// Serializes state-machine steps per session id. Two calls carrying
	// the same id otherwise interleave read-modify-write cycles.
	sessionLocks sync.Map
}

// NewController wires the state machine to its collaborators. A nil drafter
// uses the built-in persona draft generator.
func NewController(mgr *SessionManager, catalog *persona.Catalog, drafter Drafter) *Controller {
	if drafter == nil {
		drafter = DraftFunc(persona.GenerateDraft)
	}
	return &Controller{mgr: mgr, catalog: catalog, drafter: drafter}
}

// lockSession acquires the per-session mutex for one state-machine step.
func (c *Controller) lockSession(sessionID string) func() {
	v, _ := c.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Discuss is the single entry point: load-or-create the session, advance it
// through at most one phase, persist, and report the next expected action.
func (c *Controller) Discuss(ctx context.Context, req DiscussRequest) (*DiscussResponse, error) {
	var session *domain.Session

	if req.SessionID != "" {
		unlock := c.lockSession(req.SessionID)
		defer unlock()

		loaded, err := c.mgr.GetSession(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", req.SessionID, err)
		}
		session = loaded
	}

	if session == nil {
		if req.RequestText == "" {
			return nil, errRequestTextRequired
		}
		created, err := c.mgr.CreateSession(ctx, req.RequestText, req.ExtendedDebate)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		session = created
		unlock := c.lockSession(session.SessionID)
		defer unlock()
		slog.Info("Session created",
			"session_id", session.SessionID,
			"extended_debate", session.ExtendedDebateRequested)
	}

	userParticipant := c.ensureUserParticipant(session)

	// Revisit skipped questions on explicit request.
	if req.RevisitSkipped && session.Status != domain.StatusCreated {
		if skipped := SkippedQuestions(session); len(skipped) > 0 {
			session = RevisitSkipped(session)
			if err := c.persist(ctx, session); err != nil {
				return nil, err
			}
			next := NextPendingQuestion(session)
			resp := c.buildResponse(session,
				fmt.Sprintf("Revisiting %d skipped question(s)", len(skipped)),
				&NextAction{ActionType: ActionAnswerQuestion, Prompt: questionPrompt(next)},
				questionView(next))
			return resp, nil
		}
	}

	interactive := c.mgr.Config().InteractiveModeEnabled &&
		(req.InteractiveMode == nil || *req.InteractiveMode)
	if !interactive {
		session.Status = domain.StatusCompleted
		session.FinalAnswer = "Interactive mode disabled. Request received: " + session.RequestText
		if err := c.persist(ctx, session); err != nil {
			return nil, err
		}
		return c.buildResponse(session, "Interactive mode disabled; returned direct response",
			&NextAction{ActionType: ActionNone}, nil), nil
	}

	// Apply a supplied answer while clarifying. Answering with no pending
	// question left is deliberately lenient: the phase just advances.
	if req.Answer != "" && session.Status == domain.StatusClarifying {
		if question := NextPendingQuestion(session); question == nil {
			session.Status = domain.StatusDebating
		} else {
			skip := IsSkipCommand(req.Answer)
			session, _ = RecordAnswer(AnswerParams{
				Session:         session,
				Question:        *question,
				AnswerText:      req.Answer,
				SkipCommand:     skip,
				UserParticipant: userParticipant,
			})
			if skip {
				session.Assumptions = append(session.Assumptions,
					NewSkipAssumption(session.SessionID, *question))
			}
		}
	}

	if session.Status == domain.StatusCreated {
		ambiguity := DetectAmbiguity(session.RequestText)
		if ambiguity.Ambiguous {
			session.Status = domain.StatusClarifying
			system := NewSystemParticipant()
			session.Participants = append(session.Participants, system)
			session.ClarificationQuestions = InitializeClarifications(session, system)
			session.ClarificationRounds = 1
			if err := c.persist(ctx, session); err != nil {
				return nil, err
			}
			next := NextPendingQuestion(session)
			slog.Info("Clarification started",
				"session_id", session.SessionID,
				"reasons", strings.Join(ambiguity.Reasons, "; "))
			return c.buildResponse(session, "Clarification required",
				&NextAction{ActionType: ActionAnswerQuestion, Prompt: questionPrompt(next)},
				questionView(next)), nil
		}
		session.Status = domain.StatusDebating
	}

	if session.Status == domain.StatusClarifying {
		if err := c.persist(ctx, session); err != nil {
			return nil, err
		}
		next := NextPendingQuestion(session)
		return c.buildResponse(session, "Awaiting clarification response",
			&NextAction{ActionType: ActionAnswerQuestion, Prompt: questionPrompt(next)},
			questionView(next)), nil
	}

	if session.Status == domain.StatusDebating {
		// Selection is re-derived from the request text on every debate
		// call; only the extended flag is pinned at creation.
		selection := SelectPersonas(session.RequestText, req.PersonasRequested)
		session.PersonaSelection = newSelectionRecord(session.SessionID, selection)

		participants := make([]domain.Participant, len(selection.Selected))
		for i, name := range selection.Selected {
			participants[i] = domain.Participant{
				ParticipantID: name,
				Type:          domain.ParticipantPersona,
				Name:          name,
			}
		}

		limit := ResolveDebateLimit(LimitConfig{
			DefaultLimit:  c.mgr.Config().DebateCycleLimit,
			ExtendedLimit: c.mgr.Config().ExtendedDebateCycleLimit,
		}, session.ExtendedDebateRequested)

		if HasReachedDebateLimit(session.DebateCycles, limit) {
			session.Status = domain.StatusFinal
			session.FinalAnswer = "Debate cycle limit reached. Proceeding to final answer."
		} else {
			result := StartDiscussion(DiscussionParams{
				Session:     session,
				Personas:    participants,
				Topic:       session.RequestText,
				CycleNumber: session.DebateCycles + 1,
				Catalog:     c.catalog,
				Drafter:     c.drafter,
			})
			session = result.UpdatedSession
			slog.Info("Debate cycle concluded",
				"session_id", session.SessionID,
				"cycle", session.DebateCycles,
				"personas", strings.Join(selection.Selected, ", "))
			if HasReachedDebateLimit(session.DebateCycles, limit) {
				session.Status = domain.StatusFinal
				session.FinalAnswer = "Debate cycle limit reached. Proceeding to final answer."
			}
		}
	}

	if session.Status == domain.StatusFinal || session.Status == domain.StatusCompleted {
		session.Status = domain.StatusCompleted
		if session.FinalAnswer == "" {
			session.FinalAnswer = "Final answer for: " + session.RequestText
		}
		if err := c.persist(ctx, session); err != nil {
			return nil, err
		}
		return c.buildResponse(session, "Final answer ready",
			&NextAction{ActionType: ActionReviewFinalAnswer}, nil), nil
	}

	if err := c.persist(ctx, session); err != nil {
		return nil, err
	}
	return c.buildResponse(session, "Session updated", &NextAction{ActionType: ActionNone}, nil), nil
}

// ensureUserParticipant lazily creates the user actor, keyed by type so the
// creation is idempotent across calls.
func (c *Controller) ensureUserParticipant(session *domain.Session) domain.Participant {
	if existing := session.UserParticipant(); existing != nil {
		return *existing
	}
	user := domain.Participant{
		ParticipantID: "user",
		Type:          domain.ParticipantUser,
		Name:          "User",
	}
	session.Participants = append(session.Participants, user)
	return user
}

func (c *Controller) persist(ctx context.Context, session *domain.Session) error {
	if _, err := c.mgr.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("persist session %s: %w", session.SessionID, err)
	}
	return nil
}

func (c *Controller) buildResponse(session *domain.Session, message string, action *NextAction, next *QuestionView) *DiscussResponse {
	return &DiscussResponse{
		SessionID:       session.SessionID,
		Status:          session.Status,
		Message:         message,
		NextAction:      action,
		NextQuestion:    next,
		DebateExchanges: RenderDebateExchanges(session),
		CurrentState:    session,
	}
}

func questionPrompt(q *domain.ClarificationQuestion) string {
	if q == nil {
		return ""
	}
	return q.Question
}

func questionView(q *domain.ClarificationQuestion) *QuestionView {
	if q == nil {
		return nil
	}
	return &QuestionView{
		QuestionID: q.QuestionID,
		Question:   q.Question,
		Round:      q.RoundNumber,
		AskedBy:    q.AskedBy.Name,
	}
}

func newSelectionRecord(sessionID string, sel Selection) *domain.PersonaSelection {
	classification := "keyword_match"
	if sel.UserOverride {
		classification = "user_override"
	} else if sel.Reason == "Using defaults" {
		classification = "default"
	}
	return &domain.PersonaSelection{
		SelectionID:           uuid.NewString(),
		SessionID:             sessionID,
		RequestClassification: classification,
		SelectedPersonas:      sel.Selected,
		Reason:                sel.Reason,
		UserOverride:          sel.UserOverride,
		CreatedAt:             time.Now().UTC(),
	}
}

// RenderDebateExchanges renders the transcript of past debate cycles, or ""
// when no discussion has run yet.
func RenderDebateExchanges(session *domain.Session) string {
	if len(session.Discussions) == 0 {
		return ""
	}
	var parts []string
	for _, d := range session.Discussions {
		topic := d.Topic
		if topic == "" {
			topic = "Discussion"
		}
		parts = append(parts, fmt.Sprintf("\n### Cycle %d: %s\n", d.CycleNumber, topic))
		for _, turn := range d.MessageTurns {
			parts = append(parts, fmt.Sprintf("**%s**: %s\n", turn.Sender.Name, turn.Content))
		}
		if d.ResolutionSummary != "" {
			parts = append(parts, fmt.Sprintf("\n*Resolution*: %s\n", d.ResolutionSummary))
		}
	}
	return strings.Join(parts, "\n")
}
