package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	"brgyconnect/internal/account/otp"
	"brgyconnect/internal/contact"
	notifservice "brgyconnect/internal/notification/service"
	"brgyconnect/internal/password"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/requestcontext"
)

// RequestContactChange stages a replacement number and texts a 6-digit code
// to it. The change only lands after ConfirmContactChange inside the
// 5-minute window.
func (s *Service) RequestContactChange(ctx context.Context, accountID uuid.UUID, rawNewContact string) error {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	normalized, err := contact.Normalize(rawNewContact, contact.Strict)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid new contact number format")
	}
	if other, err := s.store.FindByContact(ctx, normalized); err == nil && other.ID != account.ID {
		return dErrors.New(dErrors.CodeValidation, "Contact number already in use")
	} else if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact")
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate OTP")
	}

	account.PendingContact = normalized
	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to stage contact change")
	}
	rec := otp.Record{Code: code, IssuedAt: requestcontext.Now(ctx)}
	if err := s.otps.Put(ctx, account.ID, otp.KindContactChange, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store OTP")
	}

	s.notifier.SendDirect(ctx, normalized,
		"BarangayConnect: Your contact change code is "+code+". It expires in 5 minutes.")
	return nil
}

// ConfirmContactChange verifies the OTP and swaps the canonical contact.
// An expired code clears the staged state so the flow restarts cleanly.
func (s *Service) ConfirmContactChange(ctx context.Context, accountID uuid.UUID, providedCode string) error {
	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(providedCode) == "" {
		return dErrors.New(dErrors.CodeValidation, "OTP is required")
	}

	rec, err := s.otps.Get(ctx, account.ID, otp.KindContactChange)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read OTP")
	}
	if rec == nil {
		return s.expireContactChange(ctx, account)
	}
	if rec.Code != providedCode {
		return dErrors.New(dErrors.CodeValidation, "Invalid OTP")
	}
	if requestcontext.Now(ctx).After(rec.IssuedAt.Add(otp.Window)) {
		return s.expireContactChange(ctx, account)
	}

	normalized, err := contact.Normalize(account.PendingContact, contact.Strict)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid new contact number format")
	}
	if other, err := s.store.FindByContact(ctx, normalized); err == nil && other.ID != account.ID {
		return dErrors.New(dErrors.CodeValidation, "Contact number already in use")
	} else if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact")
	}

	account.Contact = normalized
	account.PendingContact = ""
	account.Status = models.StatusApproved
	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update contact")
	}
	if err := s.otps.Clear(ctx, account.ID, otp.KindContactChange); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear OTP")
	}

	if _, err := s.notifier.Emit(ctx, notifservice.EmitParams{
		AccountID: account.ID,
		Title:     "Contact Updated",
		Message:   "Your contact number has been successfully updated.",
		Type:      "update",
	}); err != nil {
		return err
	}
	s.notifier.SendDirect(ctx, account.Contact, "Your contact number has been updated successfully.")
	return nil
}

func (s *Service) expireContactChange(ctx context.Context, account *models.Account) error {
	account.PendingContact = ""
	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear staged contact")
	}
	if err := s.otps.Clear(ctx, account.ID, otp.KindContactChange); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear OTP")
	}
	return dErrors.New(dErrors.CodeValidation, "OTP expired. Request a new one.")
}

// ForgotPasswordSendOTP issues a reset code to a registered contact.
func (s *Service) ForgotPasswordSendOTP(ctx context.Context, rawContact string) error {
	normalized, err := contact.Normalize(rawContact, contact.Strict)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid contact number format")
	}
	account, err := s.store.FindByContact(ctx, normalized)
	if err != nil {
		return err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate OTP")
	}
	rec := otp.Record{Code: code, IssuedAt: requestcontext.Now(ctx)}
	if err := s.otps.Put(ctx, account.ID, otp.KindPasswordReset, rec); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store OTP")
	}

	s.notifier.SendDirect(ctx, normalized,
		"BarangayConnect: Your password reset code is "+code+". It expires in 5 minutes.")
	return nil
}

// ForgotPasswordVerify checks the reset code and overwrites the password
// digest.
func (s *Service) ForgotPasswordVerify(ctx context.Context, rawContact, providedCode, newPassword string) error {
	if rawContact == "" || providedCode == "" || newPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "contact, otp, and new_password are required")
	}
	normalized, err := contact.Normalize(rawContact, contact.Strict)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid contact number format")
	}
	account, err := s.store.FindByContact(ctx, normalized)
	if err != nil {
		return err
	}

	rec, err := s.otps.Get(ctx, account.ID, otp.KindPasswordReset)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read OTP")
	}
	if rec == nil || rec.Code != providedCode {
		return dErrors.New(dErrors.CodeValidation, "Incorrect OTP")
	}
	if requestcontext.Now(ctx).After(rec.IssuedAt.Add(otp.Window)) {
		if err := s.otps.Clear(ctx, account.ID, otp.KindPasswordReset); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear OTP")
		}
		return dErrors.New(dErrors.CodeValidation, "OTP expired. Request a new one.")
	}

	account.PasswordDigest = password.Digest(newPassword)
	if err := s.store.Save(ctx, account); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}
	if err := s.otps.Clear(ctx, account.ID, otp.KindPasswordReset); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear OTP")
	}

	s.notifier.SendDirect(ctx, normalized, "Your password has been successfully reset. - BarangayConnect")
	return nil
}
