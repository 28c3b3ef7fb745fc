package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one event of interest to an account. Immutable after
// creation except for the read flag. AccountID is nullable: system-wide
// notices may exist unowned.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	AccountID *uuid.UUID `db:"account_id" json:"user_id,omitempty"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Type      string     `db:"type" json:"type"`
	Read      bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Filter narrows a notification listing. Zero values mean "no constraint".
type Filter struct {
	AccountID  *uuid.UUID
	Type       string
	UnreadOnly bool
}
