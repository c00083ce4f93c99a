package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claritycouncil/council/internal/domain"
	"github.com/claritycouncil/council/internal/shared"
)

const (
	putRetryAttempts = 3
	putRetryDelay    = 100 * time.Millisecond
)

// SQLiteStore implements Repository on a SQLite database. It backs the
// session archive: completed consultations survive process restarts, unlike
// the live in-memory store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the archive database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps concurrent readers cheap; the busy timeout covers archive
	// writes racing the HTTP handlers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		request_text TEXT NOT NULL,
		debate_cycles INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create stores a new session under a fresh id.
func (s *SQLiteStore) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	stored := session.Clone()
	stored.SessionID = uuid.NewString()
	if err := s.put(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Get retrieves a session by id.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE session_id = ?`, sessionID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return &session, nil
}

// Update applies fn inside a transaction, serializing concurrent updates to
// the same session through the row write lock.
func (s *SQLiteStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (*domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE session_id = ?`, sessionID)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	var current domain.Session
	if err := json.Unmarshal(payload, &current); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}

	updated := fn(current)
	updated.SessionID = sessionID

	encoded, err := json.Marshal(&updated)
	if err != nil {
		return nil, fmt.Errorf("encode session payload: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET status = ?, request_text = ?, debate_cycles = ?, payload = ?, updated_at = ?
		WHERE session_id = ?`,
		string(updated.Status), updated.RequestText, updated.DebateCycles,
		encoded, updated.UpdatedAt.Unix(), sessionID)
	if err != nil {
		return nil, fmt.Errorf("update session row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session update: %w", err)
	}
	return &updated, nil
}

// Save upserts the session under its id.
func (s *SQLiteStore) Save(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	stored := session.Clone()
	if stored.SessionID == "" {
		stored.SessionID = uuid.NewString()
	}
	if err := s.put(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// put upserts with a short exponential backoff on SQLITE_BUSY, which shows
// up when an archive write races the handlers.
func (s *SQLiteStore) put(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}

	for attempt := 0; attempt < putRetryAttempts; attempt++ {
		err = s.exec(ctx, session, payload)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || attempt == putRetryAttempts-1 {
			break
		}
		time.Sleep(putRetryDelay * time.Duration(1<<attempt))
	}
	return err
}

func (s *SQLiteStore) exec(ctx context.Context, session *domain.Session, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, status, request_text, debate_cycles, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			request_text = excluded.request_text,
			debate_cycles = excluded.debate_cycles,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		session.SessionID, string(session.Status), session.RequestText,
		session.DebateCycles, payload,
		session.CreatedAt.Unix(), session.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert session row: %w", err)
	}
	return nil
}

// Delete removes a session row if present.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session row: %w", err)
	}
	return nil
}

// ListByStatus returns session summaries in most-recently-updated order.
// Used by the archive listing endpoint.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status domain.Status, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM sessions
		WHERE status = ?
		ORDER BY updated_at DESC
		LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions by status: %w", err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		var session domain.Session
		if err := json.Unmarshal(payload, &session); err != nil {
			return nil, fmt.Errorf("decode session payload: %w", err)
		}
		out = append(out, &session)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
