package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"brgyconnect/internal/directory/models"
)

// Memory is the map-backed masterlist used by unit tests and dev mode.
type Memory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Entry
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*models.Entry)}
}

func (s *Memory) Save(_ context.Context, e *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.rows[e.ID] = &cp
	return nil
}

func (s *Memory) Search(_ context.Context, f models.SearchFilter) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Entry, 0)
	for _, e := range s.rows {
		if !matches(e, f) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func matches(e *models.Entry, f models.SearchFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.FirstName), q) &&
			!strings.Contains(strings.ToLower(e.MiddleName), q) &&
			!strings.Contains(strings.ToLower(e.LastName), q) {
			return false
		}
	}
	if p := strings.ToLower(strings.TrimSpace(f.Purok)); p != "" {
		if !strings.Contains(strings.ToLower(e.Purok), p) {
			return false
		}
	}
	if b := strings.ToLower(strings.TrimSpace(f.Barangay)); b != "" {
		if !strings.Contains(strings.ToLower(e.Barangay), b) {
			return false
		}
	}
	return true
}
