package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"brgyconnect/internal/account/models"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Postgres persists accounts in the accounts table.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// accountRow maps the accounts table. PendingUpdates round-trips through
// JSONB.
type accountRow struct {
	ID             uuid.UUID      `db:"id"`
	FirstName      string         `db:"first_name"`
	MiddleName     sql.NullString `db:"middle_name"`
	LastName       string         `db:"last_name"`
	DOB            time.Time      `db:"dob"`
	Gender         string         `db:"gender"`
	CivilStatus    string         `db:"civil_status"`
	Contact        string         `db:"contact"`
	Purok          string         `db:"purok"`
	Barangay       string         `db:"barangay"`
	City           string         `db:"city"`
	Province       string         `db:"province"`
	PostalCode     string         `db:"postal_code"`
	PlaceOfBirth   sql.NullString `db:"place_of_birth"`
	PasswordDigest string         `db:"password_digest"`
	Photo          sql.NullString `db:"photo"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	PendingContact string         `db:"pending_contact"`
	PendingUpdates []byte         `db:"pending_updates"`
	CreatedAt      time.Time      `db:"created_at"`
}

func toRow(a *models.Account) (*accountRow, error) {
	row := &accountRow{
		ID:             a.ID,
		FirstName:      a.FirstName,
		MiddleName:     nullString(a.MiddleName),
		LastName:       a.LastName,
		DOB:            a.DOB,
		Gender:         a.Gender,
		CivilStatus:    a.CivilStatus,
		Contact:        a.Contact,
		Purok:          a.Purok,
		Barangay:       a.Barangay,
		City:           a.City,
		Province:       a.Province,
		PostalCode:     a.PostalCode,
		PlaceOfBirth:   nullString(a.PlaceOfBirth),
		PasswordDigest: a.PasswordDigest,
		Photo:          nullString(a.Photo),
		Role:           string(a.Role),
		Status:         string(a.Status),
		PendingContact: a.PendingContact,
		CreatedAt:      a.CreatedAt,
	}
	if a.PendingUpdates != nil {
		raw, err := json.Marshal(a.PendingUpdates)
		if err != nil {
			return nil, fmt.Errorf("marshal pending updates: %w", err)
		}
		row.PendingUpdates = raw
	}
	return row, nil
}

func (r *accountRow) toAccount() (*models.Account, error) {
	a := &models.Account{
		ID:             r.ID,
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName.String,
		LastName:       r.LastName,
		DOB:            r.DOB,
		Gender:         r.Gender,
		CivilStatus:    r.CivilStatus,
		Contact:        r.Contact,
		Purok:          r.Purok,
		Barangay:       r.Barangay,
		City:           r.City,
		Province:       r.Province,
		PostalCode:     r.PostalCode,
		PlaceOfBirth:   r.PlaceOfBirth.String,
		PasswordDigest: r.PasswordDigest,
		Photo:          r.Photo.String,
		Role:           models.Role(r.Role),
		Status:         models.Status(r.Status),
		PendingContact: r.PendingContact,
		CreatedAt:      r.CreatedAt,
	}
	if len(r.PendingUpdates) > 0 {
		var pu models.ProfileUpdate
		if err := json.Unmarshal(r.PendingUpdates, &pu); err != nil {
			return nil, fmt.Errorf("unmarshal pending updates: %w", err)
		}
		a.PendingUpdates = &pu
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Save upserts the account. A unique violation on contact maps to the
// duplicate-contact conflict the registration flow reports.
func (s *Postgres) Save(ctx context.Context, a *models.Account) error {
	row, err := toRow(a)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (
			id, first_name, middle_name, last_name, dob, gender, civil_status,
			contact, purok, barangay, city, province, postal_code, place_of_birth,
			password_digest, photo, role, status, pending_contact, pending_updates, created_at
		) VALUES (
			:id, :first_name, :middle_name, :last_name, :dob, :gender, :civil_status,
			:contact, :purok, :barangay, :city, :province, :postal_code, :place_of_birth,
			:password_digest, :photo, :role, :status, :pending_contact, :pending_updates, :created_at
		)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name,
			dob = EXCLUDED.dob,
			gender = EXCLUDED.gender,
			civil_status = EXCLUDED.civil_status,
			contact = EXCLUDED.contact,
			purok = EXCLUDED.purok,
			barangay = EXCLUDED.barangay,
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			postal_code = EXCLUDED.postal_code,
			place_of_birth = EXCLUDED.place_of_birth,
			password_digest = EXCLUDED.password_digest,
			photo = EXCLUDED.photo,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			pending_contact = EXCLUDED.pending_contact,
			pending_updates = EXCLUDED.pending_updates`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return dErrors.New(dErrors.CodeConflict, "Contact already registered")
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.findOne(ctx, `SELECT * FROM accounts WHERE id = $1`, id)
}

func (s *Postgres) FindByContact(ctx context.Context, contact string) (*models.Account, error) {
	return s.findOne(ctx, `SELECT * FROM accounts WHERE contact = $1`, contact)
}

func (s *Postgres) FindByName(ctx context.Context, first, last string) (*models.Account, error) {
	return s.findOne(ctx, `
		SELECT * FROM accounts
		WHERE lower(trim(first_name)) = lower(trim($1))
		  AND lower(trim(last_name)) = lower(trim($2))
		LIMIT 1`, first, last)
}

func (s *Postgres) findOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return row.toAccount()
}

func (s *Postgres) List(ctx context.Context) ([]*models.Account, error) {
	return s.list(ctx, `SELECT * FROM accounts ORDER BY created_at`)
}

func (s *Postgres) ListStaff(ctx context.Context) ([]*models.Account, error) {
	return s.list(ctx, `SELECT * FROM accounts WHERE lower(role) IN ('secretary', 'captain')`)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows := []accountRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]*models.Account, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toAccount()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Delete hard-deletes the account. The FK cascades drop owned document
// requests and notifications.
func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return nil
}
