package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable implementation of Store backed by a local SQLite
// file, so gateway sessions survive a restart.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	expires_at    TIMESTAMP NOT NULL
);`

// NewSQLiteStore opens (and if needed initialises) the session database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise session db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	query := `
		INSERT INTO sessions (id, access_token, refresh_token, email, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			email = excluded.email,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`

	_, err := s.db.ExecContext(ctx, query,
		sessionID,
		session.AccessToken,
		session.RefreshToken,
		session.Email,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	query := `
		SELECT access_token, refresh_token, email, created_at, expires_at
		FROM sessions WHERE id = ?`

	var session Session
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.AccessToken, &session.RefreshToken, &session.Email,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// DeleteExpired removes lapsed sessions. Called periodically by the server.
// The cutoff is bound as a parameter so it uses the same time encoding the
// driver wrote expires_at with.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
