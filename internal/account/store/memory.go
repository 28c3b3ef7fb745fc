package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Memory is the map-backed account store used by unit tests and dev mode.
type Memory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Account
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*models.Account)}
}

func clone(a *models.Account) *models.Account {
	cp := *a
	if a.PendingUpdates != nil {
		pu := *a.PendingUpdates
		cp.PendingUpdates = &pu
	}
	return &cp
}

func (s *Memory) Save(_ context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Unique normalized contact across all accounts.
	for id, existing := range s.rows {
		if id != a.ID && existing.Contact == a.Contact {
			return dErrors.New(dErrors.CodeConflict, "Contact already registered")
		}
	}
	s.rows[a.ID] = clone(a)
	return nil
}

func (s *Memory) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.rows[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return clone(a), nil
}

func (s *Memory) FindByContact(_ context.Context, contact string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.rows {
		if a.Contact == contact {
			return clone(a), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
}

// FindByName matches on trimmed, case-insensitive first and last name.
func (s *Memory) FindByName(_ context.Context, first, last string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	first = strings.ToLower(strings.TrimSpace(first))
	last = strings.ToLower(strings.TrimSpace(last))
	for _, a := range s.rows {
		if strings.ToLower(strings.TrimSpace(a.FirstName)) == first &&
			strings.ToLower(strings.TrimSpace(a.LastName)) == last {
			return clone(a), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
}

func (s *Memory) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Account, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) ListStaff(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Account{}
	for _, a := range s.rows {
		if a.Role.IsStaff() {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (s *Memory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	delete(s.rows, id)
	return nil
}
