package council

import (
	"context"
	"strings"
	"testing"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/persona"
	"github.com/claritycouncil/council/internal/store"
)

const (
	clearRequest     = "How should we redesign the checkout service for lower latency?"
	ambiguousRequest = "do stuff"
)

func newTestController(cfg Config) *Controller {
	mgr := NewSessionManager(store.NewMemoryStore(), cfg)
	return NewController(mgr, persona.NewCatalog(nil), fakeDrafter())
}

func defaultTestConfig() Config {
	return Config{InteractiveModeEnabled: true, DebateCycleLimit: 10, ExtendedDebateCycleLimit: 20}
}

func TestController_NewClearRequestRunsDebate(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())

	resp, err := ctrl.Discuss(context.Background(), DiscussRequest{RequestText: clearRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	if resp.Status != domain.StatusDebating {
		t.Errorf("Expected debating status, got %s", resp.Status)
	}
	if resp.Message != "Session updated" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.CurrentState.DebateCycles != 1 {
		t.Errorf("Expected 1 debate cycle, got %d", resp.CurrentState.DebateCycles)
	}
	if resp.DebateExchanges == "" {
		t.Error("Expected debate exchanges in response")
	}
	if resp.CurrentState.PersonaSelection == nil {
		t.Error("Expected persona selection recorded")
	}
	if resp.CurrentState.UserParticipant() == nil {
		t.Error("Expected user participant created")
	}
}

func TestController_AmbiguousRequestStartsClarification(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())

	resp, err := ctrl.Discuss(context.Background(), DiscussRequest{RequestText: ambiguousRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	if resp.Status != domain.StatusClarifying {
		t.Fatalf("Expected clarifying status, got %s", resp.Status)
	}
	if resp.Message != "Clarification required" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.NextAction == nil || resp.NextAction.ActionType != ActionAnswerQuestion {
		t.Errorf("Expected answer_question action, got %+v", resp.NextAction)
	}
	if resp.NextQuestion == nil || resp.NextQuestion.Question != "What is your primary goal or outcome?" {
		t.Errorf("Expected first clarification question, got %+v", resp.NextQuestion)
	}
	if len(resp.CurrentState.ClarificationQuestions) != 3 {
		t.Errorf("Expected 3 questions, got %d", len(resp.CurrentState.ClarificationQuestions))
	}
}

func TestController_ClarificationFlowWithSkip(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())
	ctx := context.Background()

	resp, err := ctrl.Discuss(ctx, DiscussRequest{RequestText: ambiguousRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	sessionID := resp.SessionID

	// Answer the goal question.
	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, Answer: "migrate billing safely"})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusClarifying {
		t.Fatalf("Expected clarifying status, got %s", resp.Status)
	}
	if resp.NextQuestion == nil || !strings.Contains(resp.NextQuestion.Question, "constraints") {
		t.Errorf("Expected constraints question next, got %+v", resp.NextQuestion)
	}

	// Skip the constraints question; an assumption should be recorded.
	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, Answer: "skip"})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if len(resp.CurrentState.Assumptions) != 1 {
		t.Fatalf("Expected 1 assumption after skip, got %d", len(resp.CurrentState.Assumptions))
	}
	if resp.CurrentState.Assumptions[0].Assumption != "Assuming constraints are acceptable as default" {
		t.Errorf("Unexpected assumption %q", resp.CurrentState.Assumptions[0].Assumption)
	}

	// Answer the audience question; the session stays clarifying until the
	// next call observes the empty pending set.
	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, Answer: "internal finance team"})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusClarifying {
		t.Fatalf("Expected clarifying status, got %s", resp.Status)
	}
	if resp.Message != "Awaiting clarification response" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.NextQuestion != nil {
		t.Errorf("Expected no pending question, got %+v", resp.NextQuestion)
	}

	// The follow-up answer finds nothing pending and advances to debate.
	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, Answer: "continue"})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusDebating {
		t.Errorf("Expected debating status, got %s", resp.Status)
	}
	if resp.CurrentState.DebateCycles != 1 {
		t.Errorf("Expected 1 debate cycle, got %d", resp.CurrentState.DebateCycles)
	}
}

func TestController_RevisitSkipped(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())
	ctx := context.Background()

	resp, err := ctrl.Discuss(ctx, DiscussRequest{RequestText: ambiguousRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	sessionID := resp.SessionID

	for _, answer := range []string{"ship the migration", "skip", "platform team"} {
		if resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, Answer: answer}); err != nil {
			t.Fatalf("Discuss failed: %v", err)
		}
	}

	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: sessionID, RevisitSkipped: true})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	if resp.Message != "Revisiting 1 skipped question(s)" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.Status != domain.StatusClarifying {
		t.Errorf("Expected clarifying status, got %s", resp.Status)
	}
	if resp.NextQuestion == nil || !strings.Contains(resp.NextQuestion.Question, "constraints") {
		t.Errorf("Expected reopened constraints question, got %+v", resp.NextQuestion)
	}
	if len(resp.CurrentState.Assumptions) != 0 {
		t.Errorf("Expected skip assumption removed, got %v", resp.CurrentState.Assumptions)
	}
}

func TestController_DebateLimitReached(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DebateCycleLimit = 1
	ctrl := newTestController(cfg)

	resp, err := ctrl.Discuss(context.Background(), DiscussRequest{RequestText: clearRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	// The single allowed cycle runs and the limit check right after it
	// finalizes the session in the same call.
	if resp.Status != domain.StatusCompleted {
		t.Errorf("Expected completed status, got %s", resp.Status)
	}
	if resp.Message != "Final answer ready" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if resp.CurrentState.FinalAnswer != "Debate cycle limit reached. Proceeding to final answer." {
		t.Errorf("Unexpected final answer %q", resp.CurrentState.FinalAnswer)
	}
	if resp.CurrentState.DebateCycles != 1 {
		t.Errorf("Expected exactly 1 cycle, got %d", resp.CurrentState.DebateCycles)
	}
	if resp.NextAction == nil || resp.NextAction.ActionType != ActionReviewFinalAnswer {
		t.Errorf("Expected review_final_answer action, got %+v", resp.NextAction)
	}
}

func TestController_ZeroLimitSkipsDebate(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DebateCycleLimit = 0
	ctrl := newTestController(cfg)

	resp, err := ctrl.Discuss(context.Background(), DiscussRequest{RequestText: clearRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	if resp.CurrentState.DebateCycles != 0 {
		t.Errorf("Expected no debate cycles, got %d", resp.CurrentState.DebateCycles)
	}
	if resp.Status != domain.StatusCompleted {
		t.Errorf("Expected completed status, got %s", resp.Status)
	}
}

func TestController_ExtendedDebateLimit(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DebateCycleLimit = 1
	cfg.ExtendedDebateCycleLimit = 2
	ctrl := newTestController(cfg)
	ctx := context.Background()

	resp, err := ctrl.Discuss(ctx, DiscussRequest{RequestText: clearRequest, ExtendedDebate: true})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusDebating {
		t.Fatalf("Expected debating after first cycle under extended limit, got %s", resp.Status)
	}

	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: resp.SessionID})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusCompleted {
		t.Errorf("Expected completed after second cycle, got %s", resp.Status)
	}
	if resp.CurrentState.DebateCycles != 2 {
		t.Errorf("Expected 2 cycles, got %d", resp.CurrentState.DebateCycles)
	}
}

func TestController_NonInteractiveMode(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())
	off := false

	resp, err := ctrl.Discuss(context.Background(), DiscussRequest{RequestText: clearRequest, InteractiveMode: &off})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}

	if resp.Status != domain.StatusCompleted {
		t.Errorf("Expected completed status, got %s", resp.Status)
	}
	if resp.Message != "Interactive mode disabled; returned direct response" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	want := "Interactive mode disabled. Request received: " + clearRequest
	if resp.CurrentState.FinalAnswer != want {
		t.Errorf("Unexpected final answer %q", resp.CurrentState.FinalAnswer)
	}
}

func TestController_MissingRequestText(t *testing.T) {
	ctrl := newTestController(defaultTestConfig())

	_, err := ctrl.Discuss(context.Background(), DiscussRequest{})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if verr.Msg != "requestText is required when starting a new session" {
		t.Errorf("Unexpected message %q", verr.Msg)
	}
}

func TestController_CompletedSessionStaysCompleted(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.DebateCycleLimit = 1
	ctrl := newTestController(cfg)
	ctx := context.Background()

	resp, err := ctrl.Discuss(ctx, DiscussRequest{RequestText: clearRequest})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	finalAnswer := resp.CurrentState.FinalAnswer

	resp, err = ctrl.Discuss(ctx, DiscussRequest{SessionID: resp.SessionID})
	if err != nil {
		t.Fatalf("Discuss failed: %v", err)
	}
	if resp.Status != domain.StatusCompleted || resp.Message != "Final answer ready" {
		t.Errorf("Expected completed session to report final answer, got %s %q", resp.Status, resp.Message)
	}
	if resp.CurrentState.FinalAnswer != finalAnswer {
		t.Errorf("Expected final answer preserved, got %q", resp.CurrentState.FinalAnswer)
	}
}
