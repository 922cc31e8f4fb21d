package profile

import (
	"context"
	"strings"
	"sync"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]Member
	byEmail map[string]Member
}

// NewMemoryRepository constructs an in-memory directory for tests.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]Member),
		byEmail: make(map[string]Member),
	}
}

// Add registers a member in the directory.
func (r *MemoryRepository) Add(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = m
	r.byEmail[strings.ToLower(m.Email)] = m
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}
