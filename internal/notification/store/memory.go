package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"brgyconnect/internal/notification/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Memory is the map-backed notification store used by unit tests and
// dev mode.
type Memory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Notification
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*models.Notification)}
}

func (s *Memory) Save(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.rows[n.ID] = &cp
	return nil
}

func (s *Memory) FindByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.rows[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	cp := *n
	return &cp, nil
}

func (s *Memory) List(_ context.Context, filter models.Filter) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0, len(s.rows))
	for _, n := range s.rows {
		if filter.AccountID != nil && (n.AccountID == nil || *n.AccountID != *filter.AccountID) {
			continue
		}
		if filter.Type != "" && !strings.EqualFold(n.Type, filter.Type) {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Memory) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	n.Read = true
	return nil
}

func (s *Memory) MarkAllRead(_ context.Context, accountID *uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.rows {
		if accountID != nil && (n.AccountID == nil || *n.AccountID != *accountID) {
			continue
		}
		if !n.Read {
			n.Read = true
			count++
		}
	}
	return count, nil
}

func (s *Memory) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	delete(s.rows, id)
	return nil
}

func (s *Memory) DeleteByOwner(_ context.Context, accountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.rows {
		if n.AccountID != nil && *n.AccountID == accountID {
			delete(s.rows, id)
		}
	}
	return nil
}
