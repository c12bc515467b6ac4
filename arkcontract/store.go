package arkcontract

import (
	"context"
	"sync"
)

// Repository is the persistence contract for the contract set: a mapping
// id -> Contract with secondary indexes on script and state. A save must be
// atomic: readers observe either the old or the new value, never a torn
// one. Concrete backends live outside this module; MemoryStore below serves
// tests and ephemeral wallets.
type Repository interface {
	Save(ctx context.Context, c Contract) error
	Get(ctx context.Context, id string) (Contract, bool, error)
	GetByScript(ctx context.Context, script []byte) (Contract, bool, error)
	ListByState(ctx context.Context, state State) ([]Contract, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Repository: writers are serialized behind one
// mutex, readers take the read lock, and the script index is kept in
// lockstep with the primary map so lookups by either key agree.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]Contract
	byScript map[string]string // pkScript -> id
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]Contract),
		byScript: make(map[string]string),
	}
}

var _ Repository = (*MemoryStore)(nil)

// Save inserts or replaces c. The script index is a unique constraint: a
// different contract already holding c's script is rejected.
func (s *MemoryStore) Save(_ context.Context, c Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scriptKey := string(c.Script)
	if existingID, ok := s.byScript[scriptKey]; ok && existingID != c.ID {
		return ErrScriptTaken
	}

	if old, ok := s.byID[c.ID]; ok {
		delete(s.byScript, string(old.Script))
	}
	s.byID[c.ID] = c
	s.byScript[scriptKey] = c.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Contract, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok, nil
}

func (s *MemoryStore) GetByScript(_ context.Context, script []byte) (Contract, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byScript[string(script)]
	if !ok {
		return Contract{}, false, nil
	}
	c, ok := s.byID[id]
	return c, ok, nil
}

func (s *MemoryStore) ListByState(_ context.Context, state State) ([]Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Contract
	for _, c := range s.byID {
		if c.State == state {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	delete(s.byScript, string(c.Script))
	return nil
}
