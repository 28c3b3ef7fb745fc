package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"brgyconnect/internal/notification/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Postgres persists notifications in the notifications table.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, n *models.Notification) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, account_id, title, message, type, is_read, created_at)
		VALUES (:id, :account_id, :title, :message, :type, :is_read, :created_at)`, n)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	err := s.db.GetContext(ctx, &n, `SELECT * FROM notifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Notification, error) {
	query := `SELECT * FROM notifications WHERE 1=1`
	args := []any{}
	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND lower(type) = lower($%d)", len(args))
	}
	if filter.UnreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows := []*models.Notification{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}

func (s *Postgres) MarkRead(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	return nil
}

func (s *Postgres) MarkAllRead(ctx context.Context, accountID *uuid.UUID) (int, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE is_read = FALSE`
	args := []any{}
	if accountID != nil {
		args = append(args, *accountID)
		query += " AND account_id = $1"
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "Notification not found")
	}
	return nil
}

func (s *Postgres) DeleteByOwner(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("delete notifications by owner: %w", err)
	}
	return nil
}
