// Package store provides session persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/claritycouncil/council/internal/domain"
)

// ErrNotFound is returned when a session id is unknown to the repository.
var ErrNotFound = errors.New("session not found")

// UpdateFunc transforms a session during a copy-on-write update. It receives
// a private copy and returns the replacement value; it must not retain either.
type UpdateFunc func(domain.Session) domain.Session

// Repository persists session aggregates. Updates are atomic whole-session
// replacements: readers never observe a partially applied mutation.
type Repository interface {
	// Create stores a new session, assigning its id.
	Create(ctx context.Context, session *domain.Session) (*domain.Session, error)

	// Get retrieves a session by id, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Update applies fn to the current session value under per-session
	// serialization and replaces the stored value with the result.
	Update(ctx context.Context, sessionID string, fn UpdateFunc) (*domain.Session, error)

	// Save upserts a session under its existing id (assigning one if empty).
	Save(ctx context.Context, session *domain.Session) (*domain.Session, error)

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Close releases any resources held by the repository.
	Close() error
}
