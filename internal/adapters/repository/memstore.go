package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/pkg/metrics"
)

// MemoryStore is a bounded, in-memory Store. Sessions are kept in insertion
// order; the last one is the latest.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*session.Session
	order []string

	maxSessions   int
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts the expiry sweeper, which runs
// until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:          make(map[string]*session.Session),
		maxSessions:   16,
		ttl:           2 * time.Hour,
		sweepInterval: time.Minute,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateSessionsActive(0)
	if s.ttl > 0 {
		s.startSweeper(ctx)
	}
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrNilSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[sess.ID()]; ok {
		s.removeLocked(sess.ID())
	}
	s.byID[sess.ID()] = sess
	s.order = append(s.order, sess.ID())

	for len(s.order) > s.maxSessions {
		s.removeLocked(s.order[0])
		metrics.RecordSessionEvicted()
	}
	metrics.UpdateSessionsActive(len(s.order))
	return nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[id]
	if !ok || s.expired(sess) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Latest implements Store.Latest.
func (s *MemoryStore) Latest(_ context.Context) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		if sess := s.byID[s.order[i]]; !s.expired(sess) {
			return sess, nil
		}
	}
	return nil, ErrNoSession
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	metrics.UpdateSessionsActive(len(s.order))
	return nil
}

// List implements Store.List.
func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		sess := s.byID[s.order[i]]
		if s.expired(sess) {
			continue
		}
		out = append(out, Info{
			ID:        sess.ID(),
			CreatedAt: sess.CreatedAt().UTC().Format(time.RFC3339),
			Files:     sess.Files(),
			Latest:    len(out) == 0,
		})
	}
	return out, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range s.order {
		if !s.expired(s.byID[id]) {
			n++
		}
	}
	return n
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	kept := s.order[:0]
	for _, id := range s.order {
		if s.expired(s.byID[id]) {
			delete(s.byID, id)
			metrics.RecordSessionEvicted()
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	metrics.UpdateSessionsActive(len(s.order))
	return removed
}

func (s *MemoryStore) expired(sess *session.Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.CreatedAt()) > s.ttl
}

func (s *MemoryStore) removeLocked(id string) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
