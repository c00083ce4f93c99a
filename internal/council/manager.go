package council

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/store"
)

// Config is the session-creation snapshot of process-wide settings. It is
// captured into session metadata once; later config changes do not affect
// sessions already created.
type Config struct {
	InteractiveModeEnabled   bool
	DebateCycleLimit         int
	ExtendedDebateCycleLimit int
}

// SessionManager owns session CRUD on top of the repository. All mutation
// goes through the repository's copy-on-write Update, so concurrent readers
// never see a half-applied change.
type SessionManager struct {
	repo store.Repository
	cfg  Config
}

// NewSessionManager creates a manager backed by repo.
func NewSessionManager(repo store.Repository, cfg Config) *SessionManager {
	return &SessionManager{repo: repo, cfg: cfg}
}

// Config returns the manager's configuration snapshot.
func (m *SessionManager) Config() Config {
	return m.cfg
}

// CreateSession stores a fresh session in status created. The extended
// debate flag is captured here and is immutable for the session's lifetime.
func (m *SessionManager) CreateSession(ctx context.Context, requestText string, extendedDebateRequested bool) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		Status:                  domain.StatusCreated,
		RequestText:             requestText,
		ExtendedDebateRequested: extendedDebateRequested,
		Metadata: map[string]any{
			"interactiveModeEnabled":   m.cfg.InteractiveModeEnabled,
			"debateCycleLimit":         m.cfg.DebateCycleLimit,
			"extendedDebateCycleLimit": m.cfg.ExtendedDebateCycleLimit,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return m.repo.Create(ctx, session)
}

// GetSession loads a session, or nil when the id is unknown.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// SaveSession upserts the session value.
func (m *SessionManager) SaveSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	return m.repo.Save(ctx, session)
}

// DeleteSession removes a session. Cleanup is caller-driven; sessions are
// never expired automatically.
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	return m.repo.Delete(ctx, sessionID)
}

// SetStatus applies a direct status change. Statuses outside the settable
// set are rejected by returning the session unchanged; callers detect the
// rejection by checking the returned status.
func (m *SessionManager) SetStatus(ctx context.Context, sessionID string, status domain.Status) (*domain.Session, error) {
	if !status.DirectSettable() {
		session, err := m.repo.Get(ctx, sessionID)
		if err == store.ErrNotFound {
			return nil, nil
		}
		return session, err
	}
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.Status = status
		return s
	})
}

// AddParticipant appends a participant to the session.
func (m *SessionManager) AddParticipant(ctx context.Context, sessionID string, p domain.Participant) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.Participants = append(s.Participants, p)
		return s
	})
}

// AddMessageTurn appends a prepared message turn to the transcript.
func (m *SessionManager) AddMessageTurn(ctx context.Context, sessionID string, turn domain.MessageTurn) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.MessageTurns = append(s.MessageTurns, turn)
		return s
	})
}

// AddAssumption appends an assumption record.
func (m *SessionManager) AddAssumption(ctx context.Context, sessionID string, a domain.Assumption) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.Assumptions = append(s.Assumptions, a)
		return s
	})
}

// SetPersonaSelection records how debate participants were chosen.
func (m *SessionManager) SetPersonaSelection(ctx context.Context, sessionID string, sel domain.PersonaSelection) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.PersonaSelection = &sel
		return s
	})
}

// AppendSystemMessage adds a system-authored turn with the next sequence
// number.
func (m *SessionManager) AppendSystemMessage(ctx context.Context, sessionID string, content string, messageType domain.MessageType) (*domain.Session, error) {
	return m.update(ctx, sessionID, func(s domain.Session) domain.Session {
		s.MessageTurns = append(s.MessageTurns, domain.MessageTurn{
			TurnID:         uuid.NewString(),
			SessionID:      sessionID,
			Sender:         NewSystemParticipant(),
			MessageType:    messageType,
			Content:        content,
			Timestamp:      time.Now().UTC(),
			SequenceNumber: s.NextSequence(),
		})
		return s
	})
}

func (m *SessionManager) update(ctx context.Context, sessionID string, fn store.UpdateFunc) (*domain.Session, error) {
	updated, err := m.repo.Update(ctx, sessionID, func(s domain.Session) domain.Session {
		out := fn(s)
		out.UpdatedAt = time.Now().UTC()
		return out
	})
	if err == store.ErrNotFound {
		return nil, nil
	}
	return updated, err
}
