package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process port.SessionStore for single-instance deployments
// and development. Revocations are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, tokenID, _ string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.tokens[tokenID] = expiresAt
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.tokens, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenID)
	return nil
}

// sweep drops expired entries. Caller holds mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, id)
		}
	}
}
