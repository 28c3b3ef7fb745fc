package otp

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryKey struct {
	accountID uuid.UUID
	kind      Kind
}

// MemoryStore keeps OTP records in a map. Records are not expired in the
// background; verification checks IssuedAt, so stale records simply fail
// with "expired" when read.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[memoryKey]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[memoryKey]Record)}
}

func (s *MemoryStore) Put(_ context.Context, accountID uuid.UUID, kind Kind, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[memoryKey{accountID, kind}] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, accountID uuid.UUID, kind Kind) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[memoryKey{accountID, kind}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Clear(_ context.Context, accountID uuid.UUID, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, memoryKey{accountID, kind})
	return nil
}
