package proposal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tattoovision/internal/domain"
)

// Store keeps sessions between requests. Update applies fn atomically to one
// session; fn must not block on network calls. When fn returns an error the
// session is left unchanged and the error is returned as is.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	session *Session
	expires time.Time
}

// MemoryStore is a process-local Store with sliding expiry.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

// NewMemoryStore returns a store whose sessions expire ttl after their last
// write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("proposal: session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.liveLocked(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return entry.session.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.liveLocked(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	working := entry.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	now := m.now()
	working.UpdatedAt = now.UTC()
	m.sessions[id] = memoryEntry{session: working, expires: now.Add(m.ttl)}
	return working.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) liveLocked(id string) (memoryEntry, bool) {
	entry, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if m.ttl > 0 && m.now().After(entry.expires) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryStore) sweepLocked() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
