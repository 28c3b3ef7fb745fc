package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"brgyconnect/internal/request/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Postgres persists document requests. The model's db tags map the table
// directly, so no separate row type is needed.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, r *models.Request) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO document_requests (
			id, owner_id, document_type, purpose, copies, requirements, photo,
			authorization_photo, contact, notes, status, action, pickup_date,
			is_deleted, deleted_at, created_at, updated_at
		) VALUES (
			:id, :owner_id, :document_type, :purpose, :copies, :requirements, :photo,
			:authorization_photo, :contact, :notes, :status, :action, :pickup_date,
			:is_deleted, :deleted_at, :created_at, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			document_type = EXCLUDED.document_type,
			purpose = EXCLUDED.purpose,
			copies = EXCLUDED.copies,
			requirements = EXCLUDED.requirements,
			photo = EXCLUDED.photo,
			authorization_photo = EXCLUDED.authorization_photo,
			contact = EXCLUDED.contact,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status,
			action = EXCLUDED.action,
			pickup_date = EXCLUDED.pickup_date,
			is_deleted = EXCLUDED.is_deleted,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at`, r)
	if err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Request, error) {
	query := `SELECT * FROM document_requests WHERE id = $1`
	if !includeDeleted {
		query += ` AND NOT is_deleted`
	}
	var row models.Request
	err := s.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Request not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &row, nil
}

func (s *Postgres) List(ctx context.Context, f models.Filter) ([]*models.Request, error) {
	query := `SELECT * FROM document_requests WHERE 1 = 1`
	args := []any{}
	if !f.IncludeDeleted {
		query += ` AND NOT is_deleted`
	}
	if f.Contact != "" {
		args = append(args, f.Contact)
		query += fmt.Sprintf(` AND contact = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += fmt.Sprintf(` AND lower(status) = lower($%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	return s.list(ctx, query, args...)
}

func (s *Postgres) ListExpirable(ctx context.Context, cutoff time.Time) ([]*models.Request, error) {
	return s.list(ctx, `
		SELECT * FROM document_requests
		WHERE NOT is_deleted
		  AND created_at <= $1
		  AND status NOT IN ('Completed', 'Cancelled')
		ORDER BY created_at`, cutoff)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Request, error) {
	rows := []models.Request{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	out := make([]*models.Request, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}

func (s *Postgres) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM document_requests WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("delete requests by owner: %w", err)
	}
	return nil
}
