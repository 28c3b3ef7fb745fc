// Package models defines the document-request aggregate and its status
// vocabulary.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is a document request's workflow state.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusForPrint  Status = "For Print"
	StatusForPickup Status = "For Pickup"
	StatusCompleted Status = "Completed"
	StatusReturned  Status = "Returned"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// Request is one resident's document request. Soft deletion keeps the row
// for audit; IsDeleted rows are excluded from listings by default.
type Request struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	OwnerID            uuid.UUID  `db:"owner_id" json:"user_id"`
	DocumentType       string     `db:"document_type" json:"documentType"`
	Purpose            string     `db:"purpose" json:"purpose"`
	Copies             int        `db:"copies" json:"copies"`
	Requirements       string     `db:"requirements" json:"requirements"`
	Photo              string     `db:"photo" json:"photo,omitempty"`
	AuthorizationPhoto string     `db:"authorization_photo" json:"authorizationPhoto,omitempty"`
	Contact            string     `db:"contact" json:"contact"`
	Notes              string     `db:"notes" json:"notes"`
	Status             Status     `db:"status" json:"status"`
	Action             string     `db:"action" json:"action"`
	PickupDate         *time.Time `db:"pickup_date" json:"pickup_date,omitempty"`
	IsDeleted          bool       `db:"is_deleted" json:"-"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Contact        string
	Status         Status
	IncludeDeleted bool
}

// UpdatePatch is the owner-resubmit payload: nil fields are untouched.
type UpdatePatch struct {
	DocumentType *string `json:"documentType,omitempty"`
	Purpose      *string `json:"purpose,omitempty"`
	Copies       *int    `json:"copies,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
	Photo        *string `json:"photo,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}
