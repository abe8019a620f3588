package repositories

import (
	"context"

	"github.com/cafefinder/gateway/internal/domain/entities"
)

// SessionRepository persists gateway sessions across restarts. It is the
// server-side analog of the browser's local storage: a bearer token plus a
// serialized user profile per session.
type SessionRepository interface {
	// Save inserts or replaces a session record.
	Save(ctx context.Context, session *entities.Session) error

	// Get returns the session for the given ID, or a NOT_FOUND AppError.
	Get(ctx context.Context, id string) (*entities.Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// All returns every persisted session, used to rebuild in-memory state
	// at startup.
	All(ctx context.Context) ([]*entities.Session, error)
}
