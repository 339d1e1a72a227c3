// Package repository defines the session store interface and its in-memory
// implementation.
package repository

import (
	"context"

	"github.com/okian/ringlens/internal/domain/session"
)

// Info describes a stored session without its data.
type Info struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"created_at"`
	Files     []string `json:"files"`
	Latest    bool     `json:"latest"`
}

// Store keeps uploaded sessions.
type Store interface {
	// Put stores s and makes it the latest session. It may evict the oldest
	// sessions to stay within capacity.
	Put(ctx context.Context, s *session.Session) error

	// Get returns the session with id.
	// Returns ErrNotFound if it is unknown or expired.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Latest returns the most recently stored session.
	// Returns ErrNoSession if nothing has been uploaded.
	Latest(ctx context.Context) (*session.Session, error)

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every live session, newest first.
	List(ctx context.Context) ([]Info, error)

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
