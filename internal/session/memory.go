package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map for the life of the process.
// It stores and hands out copies so callers never share a Session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemoryStore) Create(ctx context.Context, data *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	data.CreatedAt = now
	data.UpdatedAt = now
	data.Version = 1
	if prev, ok := s.sessions[data.ID]; ok {
		data.Version = prev.Version + 1
	}

	s.sessions[data.ID] = data.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return data.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, data *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[data.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != data.Version {
		return ErrVersionConflict
	}

	data.Version++
	data.UpdatedAt = time.Now()

	s.sessions[data.ID] = data.Clone()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*Session)
	return nil
}
