package council

import (
	"context"
	"testing"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/store"
)

func newTestManager() *SessionManager {
	return NewSessionManager(store.NewMemoryStore(), defaultTestConfig())
}

func TestSessionManager_CreateSession(t *testing.T) {
	mgr := newTestManager()

	session, err := mgr.CreateSession(context.Background(), "split the monolith", true)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if session.SessionID == "" {
		t.Error("Expected session id assigned")
	}
	if session.Status != domain.StatusCreated {
		t.Errorf("Expected created status, got %s", session.Status)
	}
	if !session.ExtendedDebateRequested {
		t.Error("Expected extended debate flag captured")
	}
	if session.Metadata["debateCycleLimit"] != 10 || session.Metadata["extendedDebateCycleLimit"] != 20 {
		t.Errorf("Expected config snapshot in metadata, got %v", session.Metadata)
	}
}

func TestSessionManager_GetSession_Unknown(t *testing.T) {
	mgr := newTestManager()

	session, err := mgr.GetSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session != nil {
		t.Errorf("Expected nil for unknown id, got %+v", session)
	}
}

func TestSessionManager_SetStatus(t *testing.T) {
	mgr := newTestManager()
	ctx := context.Background()

	created, err := mgr.CreateSession(ctx, "split the monolith", false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	updated, err := mgr.SetStatus(ctx, created.SessionID, domain.StatusDebating)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if updated.Status != domain.StatusDebating {
		t.Errorf("Expected debating, got %s", updated.Status)
	}
}

func TestSessionManager_SetStatus_RejectsNonSettable(t *testing.T) {
	mgr := newTestManager()
	ctx := context.Background()

	created, err := mgr.CreateSession(ctx, "split the monolith", false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Rejection is signalled by the returned status, not an error.
	for _, invalid := range []domain.Status{domain.StatusFinal, domain.StatusError, domain.StatusCancelled, "bogus"} {
		got, err := mgr.SetStatus(ctx, created.SessionID, invalid)
		if err != nil {
			t.Fatalf("SetStatus(%s) failed: %v", invalid, err)
		}
		if got.Status != domain.StatusCreated {
			t.Errorf("SetStatus(%s): expected status unchanged, got %s", invalid, got.Status)
		}
	}

	stored, _ := mgr.GetSession(ctx, created.SessionID)
	if stored.Status != domain.StatusCreated {
		t.Errorf("Expected persisted status unchanged, got %s", stored.Status)
	}
}

func TestStatus_DirectSettable(t *testing.T) {
	settable := []domain.Status{domain.StatusCreated, domain.StatusClarifying, domain.StatusDebating, domain.StatusCompleted}
	for _, s := range settable {
		if !s.DirectSettable() {
			t.Errorf("Expected %s to be directly settable", s)
		}
	}
	rejected := []domain.Status{domain.StatusFinal, domain.StatusCancelled, domain.StatusError, "bogus"}
	for _, s := range rejected {
		if s.DirectSettable() {
			t.Errorf("Expected %s to be rejected", s)
		}
	}
}

func TestSessionManager_CollectionHelpers(t *testing.T) {
	mgr := newTestManager()
	ctx := context.Background()

	created, err := mgr.CreateSession(ctx, "split the monolith", false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.SessionID

	session, err := mgr.AddParticipant(ctx, id, domain.Participant{
		ParticipantID: "user", Type: domain.ParticipantUser, Name: "User",
	})
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if len(session.Participants) != 1 {
		t.Fatalf("Expected 1 participant, got %d", len(session.Participants))
	}

	session, err = mgr.AddMessageTurn(ctx, id, domain.MessageTurn{
		TurnID: "t1", SessionID: id, Sender: session.Participants[0],
		MessageType: domain.MessageDiscussion, Content: "first", SequenceNumber: 1,
	})
	if err != nil {
		t.Fatalf("AddMessageTurn failed: %v", err)
	}
	if len(session.MessageTurns) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(session.MessageTurns))
	}

	session, err = mgr.AddAssumption(ctx, id, domain.Assumption{
		AssumptionID: "a1", SessionID: id, Assumption: "defaults are acceptable",
	})
	if err != nil {
		t.Fatalf("AddAssumption failed: %v", err)
	}
	if len(session.Assumptions) != 1 {
		t.Fatalf("Expected 1 assumption, got %d", len(session.Assumptions))
	}

	session, err = mgr.SetPersonaSelection(ctx, id, domain.PersonaSelection{
		SelectionID: "s1", SessionID: id, SelectedPersonas: []string{"Product Owner"},
	})
	if err != nil {
		t.Fatalf("SetPersonaSelection failed: %v", err)
	}
	if session.PersonaSelection == nil || session.PersonaSelection.SelectedPersonas[0] != "Product Owner" {
		t.Errorf("Expected selection recorded, got %+v", session.PersonaSelection)
	}

	session, err = mgr.AppendSystemMessage(ctx, id, "limits reached", domain.MessageConclusion)
	if err != nil {
		t.Fatalf("AppendSystemMessage failed: %v", err)
	}
	last := session.MessageTurns[len(session.MessageTurns)-1]
	if last.Sender.Type != domain.ParticipantSystem || last.MessageType != domain.MessageConclusion {
		t.Errorf("Unexpected system turn %+v", last)
	}
	if last.SequenceNumber != 2 {
		t.Errorf("Expected sequence 2, got %d", last.SequenceNumber)
	}

	// Helpers persist through the repository, not just on the returned copy.
	stored, _ := mgr.GetSession(ctx, id)
	if len(stored.MessageTurns) != 2 || len(stored.Assumptions) != 1 {
		t.Error("Expected helper mutations persisted")
	}
	if stored.UpdatedAt.Before(created.UpdatedAt) {
		t.Error("Expected UpdatedAt stamped on update")
	}
}
