package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/promptlab/internal/model"
)

// DefaultSessionTTL is how long an idle browsing session is kept.
const DefaultSessionTTL = 24 * time.Hour

// childTables hold per-session rows removed together with their session.
var childTables = []string{"saved_prompts", "favorites", "test_results"}

// CreateSession starts a new empty session that expires after ttl.
// Expired sessions are swept on the way.
func (s *Store) CreateSession(ttl time.Duration) (*model.Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if err := s.CleanupExpiredSessions(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		sess.ID, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession returns the session with the given ID, or nil if not found/expired.
func (s *Store) GetSession(id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRow(
		`SELECT id, created_at, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		if err := s.DiscardSession(id); err != nil {
			slog.Warn("discard expired session", "session", id, "error", err)
		}
		return nil, nil
	}
	return &sess, nil
}

// DiscardSession removes a session and everything it owns.
func (s *Store) DiscardSession(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	for _, table := range childTables {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE session_id = ?`, id); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CleanupExpiredSessions removes all expired sessions and their data.
func (s *Store) CleanupExpiredSessions() error {
	now := time.Now().UTC()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck
	for _, table := range childTables {
		_, err := tx.Exec(
			`DELETE FROM `+table+` WHERE session_id IN (SELECT id FROM sessions WHERE expires_at < ?)`, now,
		)
		if err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE expires_at < ?`, now); err != nil {
		return err
	}
	return tx.Commit()
}
