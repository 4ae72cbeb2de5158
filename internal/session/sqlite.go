package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"contracheques/internal/core"
)

// SQLiteStore persists sessions as JSON payloads with an expiry column.
// Useful when the analyzer runs behind more than one process or needs
// sessions to survive a restart within their TTL.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSQLiteStore(dbPath string, ttl time.Duration) (*SQLiteStore, error) {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, ttl: ttl}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sess Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (id, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		sess.ID, string(payload), now, now.Add(s.ttl))
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	s.purgeExpired(ctx)
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM sessions WHERE id = ? AND expires_at > ?`,
		id, time.Now().UTC()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, core.ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// purgeExpired is best-effort housekeeping piggybacked on writes.
func (s *SQLiteStore) purgeExpired(ctx context.Context) {
	_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
}
