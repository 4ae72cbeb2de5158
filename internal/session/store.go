// Package session holds the short-lived per-document state between the
// upload, filter and report steps of the HTTP flow. There is no
// process-wide mutable state: everything a request needs lives in its
// Session, keyed by an opaque id, and stores expire entries on a TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"contracheques/internal/core"
	"contracheques/internal/rubricas"
)

// Session is the document-scoped context threaded through the
// processing stages. Matched and Results only exist after a filter run;
// Threshold records the value that produced them. Report holds the last
// generated final report so the download endpoints can re-render it.
type Session struct {
	ID        string                 `json:"id"`
	Statement core.Statement         `json:"statement"`
	Matched   []core.LineItem        `json:"matched,omitempty"`
	Results   []rubricas.MatchResult `json:"results,omitempty"`
	Threshold int                    `json:"threshold"`
	Received  string                 `json:"received,omitempty"`
	Report    []core.FinalLineItem   `json:"report,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Store keeps sessions for their short lifetime. Get returns
// core.ErrSessionNotFound for unknown or expired ids.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Options configures store construction.
type Options struct {
	Backend      string // "memory" or "sqlite"
	TTL          time.Duration
	MaxSessions  int
	SQLiteDBPath string
}

// NewStore builds the configured backend and returns it with its
// cleanup function.
func NewStore(opts Options) (Store, func() error, error) {
	switch opts.Backend {
	case "", "memory":
		st := NewMemoryStore(opts.MaxSessions, opts.TTL)
		return st, st.Close, nil
	case "sqlite":
		st, err := NewSQLiteStore(opts.SQLiteDBPath, opts.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite session store: %w", err)
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", opts.Backend)
	}
}

// NewID returns a random session identifier.
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return "sess_" + hex.EncodeToString(b)
}
