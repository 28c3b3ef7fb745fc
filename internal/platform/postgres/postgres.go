// Package postgres owns the database handle and the schema bootstrap. The
// original deployment created its tables at startup, so Connect keeps that
// behavior instead of requiring a migration step.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a sqlx handle, verifies connectivity, and ensures the schema
// exists. Returns (nil, nil) when the URL is empty so callers can fall back
// to the in-memory stores.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they are missing. The FK cascades back
// the hard-delete semantics: removing an account removes its document
// requests and notifications.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			first_name TEXT NOT NULL,
			middle_name TEXT,
			last_name TEXT NOT NULL,
			dob TIMESTAMPTZ NOT NULL,
			gender TEXT NOT NULL,
			civil_status TEXT NOT NULL,
			contact TEXT NOT NULL UNIQUE,
			purok TEXT NOT NULL,
			barangay TEXT NOT NULL,
			city TEXT NOT NULL,
			province TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			place_of_birth TEXT,
			password_digest TEXT NOT NULL,
			photo TEXT,
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			pending_contact TEXT NOT NULL DEFAULT '',
			pending_updates JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_contact ON accounts (contact)`,
		`CREATE TABLE IF NOT EXISTS document_requests (
			id UUID PRIMARY KEY,
			document_type TEXT NOT NULL,
			purpose TEXT NOT NULL,
			copies INT NOT NULL DEFAULT 1,
			requirements TEXT NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			authorization_photo TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			contact TEXT NOT NULL,
			status TEXT NOT NULL,
			action TEXT NOT NULL,
			owner_id UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			pickup_date TIMESTAMPTZ,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_document_requests_contact ON document_requests (contact)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			account_id UUID REFERENCES accounts (id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'info',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS resident_masterlist (
			id UUID PRIMARY KEY,
			first_name TEXT NOT NULL,
			middle_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL,
			dob TIMESTAMPTZ NOT NULL,
			gender TEXT NOT NULL,
			purok TEXT NOT NULL DEFAULT '',
			barangay TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			province TEXT NOT NULL DEFAULT '',
			number_of_years INT NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
