package store

import (
	"context"
	"sync"
	"time"

	"unitd/internal/converter"
	"unitd/pkg/platform/sentinel"
)

type memoryEntry struct {
	session   converter.Session
	expiresAt time.Time
}

// Memory is an in-process session store for tests and single-instance
// deployments. Entries expire lazily on read.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, id string) (converter.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.sessions[id]
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return converter.Session{}, sentinel.ErrNotFound
	}
	return copySession(entry.session), nil
}

// Put stores the session under its id after an optimistic version check: the
// caller's Version must match the stored one (zero for a new id). The stored
// copy carries the bumped version and is returned.
func (m *Memory) Put(_ context.Context, session converter.Session, ttl time.Duration) (converter.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.sessions[session.ID]
	if ok {
		if current.session.Version != session.Version {
			return converter.Session{}, sentinel.ErrConflict
		}
	} else if session.Version != 0 {
		return converter.Session{}, sentinel.ErrConflict
	}
	session.Version++
	entry := memoryEntry{session: copySession(session)}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.sessions[session.ID] = entry
	return session, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func copySession(s converter.Session) converter.Session {
	out := s
	out.Data = make([]converter.Quantity, len(s.Data))
	copy(out.Data, s.Data)
	return out
}
