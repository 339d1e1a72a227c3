// Package session holds the immutable result of one upload.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/table"
)

// Session is a set of parsed files from a single upload. It is never
// modified after New returns, so it can be shared between goroutines.
// Callers must treat the rows it hands out as read-only.
type Session struct {
	id        string
	createdAt time.Time
	files     []string
	tables    map[string]*table.Table
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithCreatedAt overrides the creation time.
func WithCreatedAt(t time.Time) Option {
	return func(s *Session) {
		if !t.IsZero() {
			s.createdAt = t
		}
	}
}

// New builds a session from tables in upload order. A later table with the
// same name replaces an earlier one but keeps its position.
func New(tables []*table.Table, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		tables:    make(map[string]*table.Table, len(tables)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		if _, seen := s.tables[t.Name]; !seen {
			s.files = append(s.files, t.Name)
		}
		s.tables[t.Name] = t
	}
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Len() int             { return len(s.files) }

// Files returns the filenames in upload order.
func (s *Session) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Table returns the parsed file with name.
func (s *Session) Table(name string) (*table.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Rows returns the raw rows of a file.
func (s *Session) Rows(name string) ([]table.Row, bool) {
	t, ok := s.tables[name]
	if !ok {
		return nil, false
	}
	return t.Rows, true
}

// Dataset exposes the session as a filename to rows map.
func (s *Session) Dataset() catalog.Dataset {
	ds := make(catalog.Dataset, len(s.tables))
	for name, t := range s.tables {
		ds[name] = t.Rows
	}
	return ds
}

// Overview computes the dashboard header for the session.
func (s *Session) Overview() catalog.Overview {
	return catalog.Compute(s.Dataset())
}
