package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"brgyconnect/internal/directory/models"
)

// Postgres reads the resident_masterlist table.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Save(ctx context.Context, e *models.Entry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO resident_masterlist (
			id, first_name, middle_name, last_name, dob, gender,
			purok, barangay, city, province, number_of_years
		) VALUES (
			:id, :first_name, :middle_name, :last_name, :dob, :gender,
			:purok, :barangay, :city, :province, :number_of_years
		)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name,
			dob = EXCLUDED.dob,
			gender = EXCLUDED.gender,
			purok = EXCLUDED.purok,
			barangay = EXCLUDED.barangay,
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			number_of_years = EXCLUDED.number_of_years`, e)
	if err != nil {
		return fmt.Errorf("save masterlist entry: %w", err)
	}
	return nil
}

func (s *Postgres) Search(ctx context.Context, f models.SearchFilter) ([]*models.Entry, error) {
	query := `SELECT * FROM resident_masterlist WHERE 1 = 1`
	args := []any{}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (first_name ILIKE $%d OR middle_name ILIKE $%d OR last_name ILIKE $%d)`, n, n, n)
	}
	if f.Purok != "" {
		args = append(args, "%"+f.Purok+"%")
		query += fmt.Sprintf(` AND purok ILIKE $%d`, len(args))
	}
	if f.Barangay != "" {
		args = append(args, "%"+f.Barangay+"%")
		query += fmt.Sprintf(` AND barangay ILIKE $%d`, len(args))
	}
	query += ` ORDER BY last_name, first_name`

	rows := []models.Entry{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search masterlist: %w", err)
	}
	out := make([]*models.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, &rows[i])
	}
	return out, nil
}
