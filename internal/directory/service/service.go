// Package service implements the secretary-only resident directory search.
package service

import (
	"context"

	"github.com/google/uuid"

	accountmodels "brgyconnect/internal/account/models"
	"brgyconnect/internal/directory/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Store is the masterlist persistence surface.
type Store interface {
	Save(ctx context.Context, e *models.Entry) error
	Search(ctx context.Context, f models.SearchFilter) ([]*models.Entry, error)
}

// Accounts resolves the acting account for the role gate.
type Accounts interface {
	FindByID(ctx context.Context, id uuid.UUID) (*accountmodels.Account, error)
}

type Service struct {
	store    Store
	accounts Accounts
}

func New(store Store, accounts Accounts) *Service {
	return &Service{store: store, accounts: accounts}
}

// Search runs a masterlist search on behalf of actorID. Only secretaries
// may search; the captain role is deliberately excluded.
func (s *Service) Search(ctx context.Context, actorID uuid.UUID, f models.SearchFilter) ([]*models.Entry, error) {
	actor, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != accountmodels.RoleSecretary {
		return nil, dErrors.New(dErrors.CodeForbidden, "Not authorized")
	}
	entries, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search residents")
	}
	return entries, nil
}
