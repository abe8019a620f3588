package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/domain/repositories"
	"github.com/cafefinder/gateway/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteSessionStore implements the SessionRepository interface on a local
// SQLite file. Sessions survive process restarts so signed-in users are
// restored on boot.
type SQLiteSessionStore struct {
	db *sql.DB
}

// NewSQLiteSessionStore opens (or creates) the session database at path.
func NewSQLiteSessionStore(path string) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		roles TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	return &SQLiteSessionStore{db: db}, nil
}

var _ repositories.SessionRepository = (*SQLiteSessionStore)(nil)

// Save inserts or replaces a session record.
func (s *SQLiteSessionStore) Save(ctx context.Context, session *entities.Session) error {
	roles, err := json.Marshal(session.User.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, user_id, username, email, roles, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			roles = excluded.roles,
			updated_at = excluded.updated_at
	`, session.ID, session.Token, session.User.ID, session.User.Username,
		session.User.Email, string(roles),
		session.CreatedAt.UTC().Format(time.RFC3339), session.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the session with the given ID, or a NOT_FOUND error.
func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (*entities.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, token, user_id, username, email, roles, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("session not found: %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SQLiteSessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// All returns every stored session, used to restore state on startup.
func (s *SQLiteSessionStore) All(ctx context.Context) ([]*entities.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, token, user_id, username, email, roles, created_at, updated_at
		FROM sessions ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entities.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*entities.Session, error) {
	var (
		session            entities.Session
		roles              string
		createdAt, updated string
	)
	err := row.Scan(&session.ID, &session.Token, &session.User.ID, &session.User.Username,
		&session.User.Email, &roles, &createdAt, &updated)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(roles), &session.User.Roles); err != nil {
		return nil, fmt.Errorf("failed to decode roles: %w", err)
	}
	session.CreatedAt = parseStoredTime(createdAt)
	session.UpdatedAt = parseStoredTime(updated)
	return &session, nil
}

// parseStoredTime handles both RFC3339 (what modernc.org/sqlite returns)
// and the plain DATETIME format.
func parseStoredTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}
