package identity

import (
	"context"
	"sync"

	"github.com/mcdev12/workshop/go/internal/models"
)

// Keys the identity is stored under.
const (
	KeyUserID = "workshop_uid"
	KeyName   = "workshop_name"
)

// MemoryStore keeps the identity for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	id models.Identity
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

func (s *MemoryStore) Save(_ context.Context, id models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = models.Identity{}
	return nil
}
