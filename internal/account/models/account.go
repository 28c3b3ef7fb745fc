package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account's capability class. Fixed at creation except by
// explicit administrative action.
type Role string

const (
	RoleResident  Role = "resident"
	RoleSecretary Role = "secretary"
	RoleCaptain   Role = "captain"
)

// IsStaff reports whether the role may review requests and registrations.
func (r Role) IsStaff() bool {
	return r == RoleSecretary || r == RoleCaptain
}

// Status is an account's lifecycle status. Transitions only happen through
// explicit approve/reject actions.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Account is one resident or staff member.
type Account struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"firstName"`
	MiddleName     string    `json:"middleName,omitempty"`
	LastName       string    `json:"lastName"`
	DOB            time.Time `json:"dob"`
	Gender         string    `json:"gender"`
	CivilStatus    string    `json:"civilStatus"`
	Contact        string    `json:"contact"`
	Purok          string    `json:"purok"`
	Barangay       string    `json:"barangay"`
	City           string    `json:"city"`
	Province       string    `json:"province"`
	PostalCode     string    `json:"postalCode"`
	PlaceOfBirth   string    `json:"placeOfBirth,omitempty"`
	PasswordDigest string    `json:"-"`
	Photo          string    `json:"photo,omitempty"`
	Role           Role      `json:"role"`
	Status         Status    `json:"status"`
	// PendingContact is a staged replacement number awaiting OTP
	// confirmation.
	PendingContact string `json:"-"`
	// PendingUpdates is a staged profile patch awaiting staff approval,
	// applied atomically on approve.
	PendingUpdates *ProfileUpdate `json:"pending_updates,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FullName renders the display name used in notifications and SMS.
func (a *Account) FullName() string {
	if a.FirstName == "" && a.LastName == "" {
		return ""
	}
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// ProfileUpdate is the closed set of fields a resident may stage for staff
// approval. Optional pointers distinguish "unset" from "set to empty".
// Identity fields (names, DOB, contact) are deliberately excluded: contact
// changes go through the OTP flow and identity corrections are an
// over-the-counter action.
type ProfileUpdate struct {
	CivilStatus *string `json:"civilStatus,omitempty"`
	Purok       *string `json:"purok,omitempty"`
	Barangay    *string `json:"barangay,omitempty"`
	City        *string `json:"city,omitempty"`
	Province    *string `json:"province,omitempty"`
	PostalCode  *string `json:"postalCode,omitempty"`
	Photo       *string `json:"photo,omitempty"`
}

// IsEmpty reports whether the patch stages no fields.
func (u *ProfileUpdate) IsEmpty() bool {
	return u == nil || (u.CivilStatus == nil && u.Purok == nil && u.Barangay == nil &&
		u.City == nil && u.Province == nil && u.PostalCode == nil && u.Photo == nil)
}

// ApplyTo assigns every staged field onto the account.
func (u *ProfileUpdate) ApplyTo(a *Account) {
	if u == nil {
		return
	}
	if u.CivilStatus != nil {
		a.CivilStatus = *u.CivilStatus
	}
	if u.Purok != nil {
		a.Purok = *u.Purok
	}
	if u.Barangay != nil {
		a.Barangay = *u.Barangay
	}
	if u.City != nil {
		a.City = *u.City
	}
	if u.Province != nil {
		a.Province = *u.Province
	}
	if u.PostalCode != nil {
		a.PostalCode = *u.PostalCode
	}
	if u.Photo != nil {
		a.Photo = *u.Photo
	}
}
