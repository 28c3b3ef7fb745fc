// Package service implements the document-request workflow: creation,
// staff-driven status transitions, owner resubmission, soft deletion, and
// the stale-request expiry sweep.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	accountmodels "brgyconnect/internal/account/models"
	"brgyconnect/internal/contact"
	notifmodels "brgyconnect/internal/notification/models"
	notifservice "brgyconnect/internal/notification/service"
	"brgyconnect/internal/platform/metrics"
	"brgyconnect/internal/request/models"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/requestcontext"
)

// expiryAge is how old a live, unfinished request may grow before the
// sweep cancels it.
const expiryAge = 180 * 24 * time.Hour

// Store is the request persistence surface.
type Store interface {
	Save(ctx context.Context, r *models.Request) error
	FindByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.Request, error)
	List(ctx context.Context, f models.Filter) ([]*models.Request, error)
	ListExpirable(ctx context.Context, cutoff time.Time) ([]*models.Request, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

// Accounts is the slice of the account store this service reads.
type Accounts interface {
	FindByID(ctx context.Context, id uuid.UUID) (*accountmodels.Account, error)
	FindByContact(ctx context.Context, contact string) (*accountmodels.Account, error)
	ListStaff(ctx context.Context) ([]*accountmodels.Account, error)
}

// Notifier is the notification emitter.
type Notifier interface {
	Emit(ctx context.Context, p notifservice.EmitParams) (*notifmodels.Notification, error)
}

type Service struct {
	store    Store
	accounts Accounts
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, accounts Accounts, notifier Notifier, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		accounts: accounts,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateParams carries a new request submission.
type CreateParams struct {
	DocumentType       string
	Purpose            string
	Copies             int
	Requirements       string
	AuthorizationPhoto string
	Contact            string
	Notes              string
}

// Create files a request for the Approved account matching the contact.
// The contact is normalized leniently so legacy rows still match.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.Request, error) {
	normalized, _ := contact.Normalize(p.Contact, contact.Lenient)

	owner, err := s.accounts.FindByContact(ctx, normalized)
	if err != nil || !strings.EqualFold(string(owner.Status), string(accountmodels.StatusApproved)) {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"User with contact '%s' not found or not approved.", normalized)
	}

	docType := strings.TrimSpace(p.DocumentType)
	if docType == "" {
		docType = "Unknown"
	}
	copies := p.Copies
	if copies <= 0 {
		copies = 1
	}

	now := requestcontext.Now(ctx)
	req := &models.Request{
		ID:                 uuid.New(),
		OwnerID:            owner.ID,
		DocumentType:       docType,
		Purpose:            strings.TrimSpace(p.Purpose),
		Copies:             copies,
		Requirements:       strings.TrimSpace(p.Requirements),
		AuthorizationPhoto: p.AuthorizationPhoto,
		Contact:            normalized,
		Notes:              strings.TrimSpace(p.Notes),
		Status:             models.StatusPending,
		Action:             "Review",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Save(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document request")
	}

	s.emit(ctx, notifservice.EmitParams{
		AccountID: owner.ID,
		Title:     "Document Request Submitted",
		Message:   fmt.Sprintf("Your request for %s has been submitted and is now under review.", req.DocumentType),
		Type:      "user_request",
	})
	s.notifyStaff(ctx, "New Document Request Received",
		fmt.Sprintf("A new %s request was submitted by %s %s.", req.DocumentType, owner.FirstName, owner.LastName),
		"staff_action")

	return req, nil
}

func (s *Service) List(ctx context.Context, f models.Filter) ([]*models.Request, error) {
	if f.Contact != "" {
		f.Contact, _ = contact.Normalize(f.Contact, contact.Lenient)
	}
	rows, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch document requests")
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	return s.store.FindByID(ctx, id, false)
}

// TransitionParams describes one staff status change. Notes and Action
// override the per-status defaults when set.
type TransitionParams struct {
	RequestID   uuid.UUID
	Target      models.Status
	Notes       string
	Action      string
	PerformedBy uuid.UUID
}

// Transition applies the per-target policy, then notifies the owner (SMS
// only for For Pickup and Completed) and the acting staff member.
func (s *Service) Transition(ctx context.Context, p TransitionParams) (*models.Request, error) {
	req, err := s.store.FindByID(ctx, p.RequestID, false)
	if err != nil {
		return nil, err
	}
	staff, err := s.requireStaff(ctx, p.PerformedBy)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	switch p.Target {
	case models.StatusReturned:
		req.Status = models.StatusReturned
		req.Notes = defaultString(p.Notes, "Request returned for correction")
		req.Action = "Update Request"
	case models.StatusRejected:
		req.Status = models.StatusRejected
		req.Notes = defaultString(p.Notes, "Request rejected")
		req.Action = "Reject"
	case models.StatusApproved, models.StatusForPrint, models.StatusCompleted:
		req.Status = p.Target
		req.Action = defaultString(p.Action, "Review")
		req.Notes = ""
	case models.StatusForPickup:
		req.Status = models.StatusForPickup
		req.Action = defaultString(p.Action, "Ready for Pickup")
		req.Notes = ""
		req.PickupDate = &now
	case models.StatusPending:
		if req.Status != models.StatusReturned {
			return nil, dErrors.New(dErrors.CodeValidation, "Only Returned requests can be resubmitted.")
		}
		req.Status = models.StatusPending
		req.Action = defaultString(p.Action, "Resubmitted")
		req.Notes = ""
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "Invalid status: %s", p.Target)
	}
	req.UpdatedAt = now

	if err := s.store.Save(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request status")
	}
	s.metrics.ObserveTransition(string(req.Status))

	fullName := s.ownerName(ctx, req.OwnerID)
	s.emit(ctx, notifservice.EmitParams{
		AccountID:  req.OwnerID,
		Title:      fmt.Sprintf("Request %s", req.Status),
		Message:    statusMessage(req.Status, fullName, req.DocumentType),
		Type:       "status_update",
		NotifySMS:  true,
		Phone:      req.Contact,
		GateStatus: string(req.Status),
	})
	s.emit(ctx, notifservice.EmitParams{
		AccountID: staff.ID,
		Title:     fmt.Sprintf("Request %s Updated", req.Status),
		Message:   fmt.Sprintf("You updated %s request for %s.", req.DocumentType, fullName),
		Type:      "staff_action",
	})

	return req, nil
}

// Resubmit lets the owner amend a Returned request; it goes back to
// Pending for another review round.
func (s *Service) Resubmit(ctx context.Context, id uuid.UUID, patch models.UpdatePatch) (*models.Request, error) {
	req, err := s.store.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusReturned {
		return nil, dErrors.New(dErrors.CodeValidation, "Only Returned requests can be updated by user.")
	}

	if patch.DocumentType != nil {
		req.DocumentType = strings.TrimSpace(*patch.DocumentType)
	}
	if patch.Purpose != nil {
		req.Purpose = strings.TrimSpace(*patch.Purpose)
	}
	if patch.Copies != nil {
		req.Copies = *patch.Copies
	}
	if patch.Requirements != nil {
		req.Requirements = strings.TrimSpace(*patch.Requirements)
	}
	if patch.Photo != nil {
		req.Photo = strings.TrimSpace(*patch.Photo)
	}
	if patch.Notes != nil {
		req.Notes = strings.TrimSpace(*patch.Notes)
	}
	req.Status = models.StatusPending
	req.Action = "Resubmitted"
	req.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Save(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
	}

	fullName := s.ownerName(ctx, req.OwnerID)
	s.notifyStaff(ctx, "Request Resubmitted",
		fmt.Sprintf("%s request has been resubmitted by %s.", req.DocumentType, fullName),
		"staff_action")
	s.emit(ctx, notifservice.EmitParams{
		AccountID: req.OwnerID,
		Title:     "Request Resubmitted",
		Message:   fmt.Sprintf("Your %s request has been successfully resubmitted and is now under review.", req.DocumentType),
		Type:      "user_request",
	})

	return req, nil
}

// SoftDelete cancels a request and hides it from default listings. The
// row stays for audit.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	req, err := s.store.FindByID(ctx, id, true)
	if err != nil {
		return err
	}
	if req.IsDeleted {
		return dErrors.New(dErrors.CodeValidation, "Request already deleted.")
	}

	now := requestcontext.Now(ctx)
	req.IsDeleted = true
	req.DeletedAt = &now
	req.Status = models.StatusCancelled
	req.UpdatedAt = now
	if err := s.store.Save(ctx, req); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete request")
	}

	s.emit(ctx, notifservice.EmitParams{
		AccountID: req.OwnerID,
		Title:     "Request Cancelled",
		Message:   fmt.Sprintf("Your request for %s has been cancelled.", req.DocumentType),
		Type:      "cancel",
	})
	return nil
}

// ExpireStale cancels live requests older than six months that never
// finished. Each row is saved individually so one failure does not stall
// the rest; the sweep is at-least-once.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	cutoff := requestcontext.Now(ctx).Add(-expiryAge)
	rows, err := s.store.ListExpirable(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expirable requests")
	}

	expired := 0
	for _, req := range rows {
		now := requestcontext.Now(ctx)
		req.Status = models.StatusCancelled
		req.Notes = "Automatically expired after 6 months"
		req.IsDeleted = true
		req.DeletedAt = &now
		req.UpdatedAt = now
		if err := s.store.Save(ctx, req); err != nil {
			s.logger.ErrorContext(ctx, "failed to expire request",
				"request_id", requestcontext.RequestID(ctx),
				"document_request_id", req.ID,
				"error", err,
			)
			continue
		}
		expired++
		s.metrics.IncRequestsExpired(1)
		s.emit(ctx, notifservice.EmitParams{
			AccountID: req.OwnerID,
			Title:     "Request Expired",
			Message:   fmt.Sprintf("Your %s request has expired after 6 months.", req.DocumentType),
			Type:      "cancel",
		})
	}
	return expired, nil
}

func (s *Service) requireStaff(ctx context.Context, actorID uuid.UUID) (*accountmodels.Account, error) {
	actor, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid staff user ID.")
	}
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "Not authorized")
	}
	return actor, nil
}

func (s *Service) ownerName(ctx context.Context, ownerID uuid.UUID) string {
	owner, err := s.accounts.FindByID(ctx, ownerID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(owner.FirstName + " " + owner.LastName)
}

// emit logs and swallows notification failures; a lost notification never
// fails the request operation that produced it.
func (s *Service) emit(ctx context.Context, p notifservice.EmitParams) {
	if _, err := s.notifier.Emit(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit notification",
			"request_id", requestcontext.RequestID(ctx),
			"title", p.Title,
			"error", err,
		)
	}
}

func (s *Service) notifyStaff(ctx context.Context, title, message, notifType string) {
	staff, err := s.accounts.ListStaff(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list staff for notification",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	for _, member := range staff {
		s.emit(ctx, notifservice.EmitParams{
			AccountID: member.ID,
			Title:     title,
			Message:   message,
			Type:      notifType,
		})
	}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// statusMessage personalizes the resident-facing text for each target
// status. Unknown statuses get the generic form.
func statusMessage(status models.Status, fullName, documentType string) string {
	switch status {
	case models.StatusApproved:
		return fmt.Sprintf("Hi %s, your %s request has been approved by Barangay Tilhaong Office. You can now log in to BarangayConnect.", fullName, documentType)
	case models.StatusForPickup:
		return fmt.Sprintf("Hi %s, your %s is now ready for pickup at Barangay Tilhaong Office. Please bring a valid ID.", fullName, documentType)
	case models.StatusCompleted:
		return fmt.Sprintf("Hi %s, your %s request has been completed. Thank you for using BrgyConnect!", fullName, documentType)
	case models.StatusReturned:
		return fmt.Sprintf("Hi %s, your %s request has been returned for correction. Please review and resubmit.", fullName, documentType)
	case models.StatusRejected:
		return fmt.Sprintf("Hi %s, unfortunately, your %s request has been rejected. Please contact the Barangay Office for details.", fullName, documentType)
	case models.StatusPending:
		return fmt.Sprintf("Hi %s, your %s request has been resubmitted and is now under review.", fullName, documentType)
	default:
		return fmt.Sprintf("Hi %s, the status of your %s request is now '%s'. Thank you!", fullName, documentType, status)
	}
}
