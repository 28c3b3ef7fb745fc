package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"brgyconnect/internal/request/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Memory is the map-backed request store used by unit tests and dev mode.
type Memory struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*models.Request
}

func NewMemory() *Memory {
	return &Memory{rows: make(map[uuid.UUID]*models.Request)}
}

func clone(r *models.Request) *models.Request {
	cp := *r
	if r.PickupDate != nil {
		t := *r.PickupDate
		cp.PickupDate = &t
	}
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

func (s *Memory) Save(_ context.Context, r *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[r.ID] = clone(r)
	return nil
}

func (s *Memory) FindByID(_ context.Context, id uuid.UUID, includeDeleted bool) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[id]
	if !ok || (!includeDeleted && r.IsDeleted) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Request not found")
	}
	return clone(r), nil
}

func (s *Memory) List(_ context.Context, f models.Filter) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Request, 0)
	for _, r := range s.rows {
		if !f.IncludeDeleted && r.IsDeleted {
			continue
		}
		if f.Contact != "" && r.Contact != f.Contact {
			continue
		}
		if f.Status != "" && !strings.EqualFold(string(r.Status), string(f.Status)) {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListExpirable returns live rows created at or before the cutoff whose
// status still allows expiry.
func (s *Memory) ListExpirable(_ context.Context, cutoff time.Time) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Request, 0)
	for _, r := range s.rows {
		if r.IsDeleted {
			continue
		}
		if r.Status == models.StatusCompleted || r.Status == models.StatusCancelled {
			continue
		}
		if r.CreatedAt.After(cutoff) {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) DeleteByOwner(_ context.Context, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rows {
		if r.OwnerID == ownerID {
			delete(s.rows, id)
		}
	}
	return nil
}
