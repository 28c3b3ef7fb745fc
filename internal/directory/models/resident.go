// Package models defines the resident-masterlist entry.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one masterlist row. The masterlist is reference data imported
// by the barangay office; it is not tied to registered accounts.
type Entry struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	MiddleName    string    `db:"middle_name" json:"middle_name,omitempty"`
	LastName      string    `db:"last_name" json:"last_name"`
	DOB           time.Time `db:"dob" json:"dob"`
	Gender        string    `db:"gender" json:"gender"`
	Purok         string    `db:"purok" json:"purok,omitempty"`
	Barangay      string    `db:"barangay" json:"barangay,omitempty"`
	City          string    `db:"city" json:"city,omitempty"`
	Province      string    `db:"province" json:"province,omitempty"`
	NumberOfYears int       `db:"number_of_years" json:"number_of_years,omitempty"`
}

// SearchFilter narrows a search; empty fields match everything. Query
// matches any of the three name parts as a substring.
type SearchFilter struct {
	Query    string
	Purok    string
	Barangay string
}
