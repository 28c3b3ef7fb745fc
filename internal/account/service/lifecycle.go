package service

import (
	"context"

	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	notifservice "brgyconnect/internal/notification/service"
	dErrors "brgyconnect/pkg/domain-errors"
)

// Decision is a staff verdict on a registration or staged profile update.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecideRegistration approves or rejects a newly registered account. The
// acting account must be staff. Notification plus best-effort SMS either way.
func (s *Service) DecideRegistration(ctx context.Context, accountID uuid.UUID, decision Decision, actorID uuid.UUID) error {
	if _, err := s.requireStaff(ctx, actorID); err != nil {
		return err
	}
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	fullName := account.FullName()
	var title, message, notifType, smsMessage string
	switch decision {
	case DecisionApprove:
		account.Status = models.StatusApproved
		title = "Account Approved"
		message = "Hi " + fullName + ", your registration has been approved. You can now log in to the BarangayConnect system."
		notifType = "registration_approval"
		smsMessage = "Hi " + fullName + ", your registration is approved by Barangay Tilhaong. You may now log in to BarangayConnect."
	case DecisionReject:
		account.Status = models.StatusRejected
		title = "Registration Rejected"
		message = "Hi " + fullName + ", your registration has been rejected. Please contact the Barangay Tilhaong Office for more information."
		notifType = "registration_rejection"
		smsMessage = "Hi " + fullName + ", your registration was not approved. Please visit the Barangay Tilhaong office for assistance."
	default:
		return dErrors.New(dErrors.CodeValidation, "Invalid action parameter. Use 'approve' or 'reject'.")
	}

	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registration status")
	}

	if _, err := s.notifier.Emit(ctx, notifservice.EmitParams{
		AccountID: account.ID,
		Title:     title,
		Message:   message,
		Type:      notifType,
	}); err != nil {
		return err
	}
	s.notifier.SendDirect(ctx, account.Contact, smsMessage)
	return nil
}

// StageProfileUpdate stores a profile patch for staff review. The account
// drops back to Pending until the patch is decided.
func (s *Service) StageProfileUpdate(ctx context.Context, accountID uuid.UUID, patch models.ProfileUpdate) error {
	if patch.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "No updates provided")
	}
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	account.PendingUpdates = &patch
	account.Status = models.StatusPending
	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage profile update")
	}

	s.notifyStaff(ctx, "Profile Update Requested",
		account.FullName()+" requested a profile update.", "staff_action")
	return nil
}

// DecidePendingUpdate approves or rejects a staged profile patch. Approval
// applies every staged field atomically and clears the payload; rejection
// just clears it.
func (s *Service) DecidePendingUpdate(ctx context.Context, accountID uuid.UUID, decision Decision, actorID uuid.UUID) error {
	if _, err := s.requireStaff(ctx, actorID); err != nil {
		return err
	}
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.PendingUpdates.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "No pending updates to approve")
	}

	var title, message, notifType, smsMessage string
	switch decision {
	case DecisionApprove:
		account.PendingUpdates.ApplyTo(account)
		account.PendingUpdates = nil
		account.Status = models.StatusApproved
		title = "Profile Update Approved"
		message = "Your profile update has been approved."
		notifType = "approval"
		smsMessage = "Hi, your profile update has been approved. - BarangayConnect"
	case DecisionReject:
		account.PendingUpdates = nil
		account.Status = models.StatusRejected
		title = "Profile Update Rejected"
		message = "Your requested profile changes were rejected."
		notifType = "rejection"
		smsMessage = "Hi, your profile update was not approved. Please visit the barangay office for details. - BarangayConnect"
	default:
		return dErrors.New(dErrors.CodeValidation, "Invalid action parameter.")
	}

	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply pending updates")
	}

	if _, err := s.notifier.Emit(ctx, notifservice.EmitParams{
		AccountID: account.ID,
		Title:     title,
		Message:   message,
		Type:      notifType,
	}); err != nil {
		return err
	}
	s.notifier.SendDirect(ctx, account.Contact, smsMessage)
	return nil
}
