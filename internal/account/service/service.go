// Package service implements the account lifecycle: registration, login,
// staff approval gates, staged profile updates, and the OTP-protected
// contact-change and password-reset flows.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	"brgyconnect/internal/account/otp"
	"brgyconnect/internal/contact"
	notifmodels "brgyconnect/internal/notification/models"
	notifservice "brgyconnect/internal/notification/service"
	"brgyconnect/internal/password"
	"brgyconnect/internal/token"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/requestcontext"
)

// Store is the account persistence surface.
type Store interface {
	Save(ctx context.Context, a *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByContact(ctx context.Context, contact string) (*models.Account, error)
	FindByName(ctx context.Context, first, last string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	ListStaff(ctx context.Context) ([]*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier is the slice of the notification emitter this service uses.
type Notifier interface {
	Emit(ctx context.Context, p notifservice.EmitParams) (*notifmodels.Notification, error)
	SendDirect(ctx context.Context, phone, message string)
}

// OwnedPurger removes rows owned by an account; used to cascade hard
// deletes when the backing store has no FK support.
type OwnedPurger interface {
	DeleteByOwner(ctx context.Context, accountID uuid.UUID) error
}

const accessTokenTTL = 24 * time.Hour

type Service struct {
	store         Store
	otps          otp.Store
	notifier      Notifier
	tokens        *token.Service
	requests      OwnedPurger
	notifications OwnedPurger
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTokenService(tokens *token.Service) Option {
	return func(s *Service) { s.tokens = tokens }
}

// WithCascade wires the stores whose rows must go when an account does.
func WithCascade(requests, notifications OwnedPurger) Option {
	return func(s *Service) {
		s.requests = requests
		s.notifications = notifications
	}
}

func New(store Store, otps otp.Store, notifier Notifier, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		otps:     otps,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RegisterParams carries a registration submission.
type RegisterParams struct {
	FirstName    string
	MiddleName   string
	LastName     string
	DOB          time.Time
	Gender       string
	CivilStatus  string
	Contact      string
	Purok        string
	Barangay     string
	City         string
	Province     string
	PostalCode   string
	PlaceOfBirth string
	Password     string
	Photo        string
	Role         string
}

// Register validates and persists a new Pending account and notifies every
// staff member.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.Account, error) {
	if err := contact.ValidateName(p.FirstName, "First name"); err != nil {
		return nil, err
	}
	if err := contact.ValidateName(p.LastName, "Last name"); err != nil {
		return nil, err
	}
	if p.MiddleName != "" {
		if err := contact.ValidateName(p.MiddleName, "Middle name"); err != nil {
			return nil, err
		}
	}

	normalized, err := contact.Normalize(p.Contact, contact.Strict)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.FindByContact(ctx, normalized); err == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Contact already registered")
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check contact")
	}

	if _, err := s.store.FindByName(ctx, p.FirstName, p.LastName); err == nil {
		middle := strings.TrimSpace(p.MiddleName)
		if middle != "" {
			return nil, dErrors.Newf(dErrors.CodeValidation,
				"A user named '%s %s %s' already exists.", p.FirstName, middle, p.LastName)
		}
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"A user named '%s %s' already exists.", p.FirstName, p.LastName)
	} else if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check name")
	}

	if strings.TrimSpace(p.Photo) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Photo is required")
	}

	role := models.Role(strings.ToLower(strings.TrimSpace(p.Role)))
	if role == "" {
		role = models.RoleResident
	}
	switch role {
	case models.RoleResident, models.RoleSecretary, models.RoleCaptain:
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid role")
	}

	account := &models.Account{
		ID:             uuid.New(),
		FirstName:      strings.TrimSpace(p.FirstName),
		MiddleName:     strings.TrimSpace(p.MiddleName),
		LastName:       strings.TrimSpace(p.LastName),
		DOB:            p.DOB,
		Gender:         strings.TrimSpace(p.Gender),
		CivilStatus:    strings.TrimSpace(p.CivilStatus),
		Contact:        normalized,
		Purok:          strings.TrimSpace(p.Purok),
		Barangay:       strings.TrimSpace(p.Barangay),
		City:           strings.TrimSpace(p.City),
		Province:       strings.TrimSpace(p.Province),
		PostalCode:     strings.TrimSpace(p.PostalCode),
		PlaceOfBirth:   strings.TrimSpace(p.PlaceOfBirth),
		PasswordDigest: password.Digest(p.Password),
		Photo:          p.Photo,
		Role:           role,
		Status:         models.StatusPending,
		CreatedAt:      requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	s.notifyStaff(ctx, "New User Registration",
		account.FullName()+" registered.", "registration")

	return account, nil
}

// LoginResult is what a successful login returns: the profile, an access
// token, and the advisory offline-sync flag the mobile client reads.
type LoginResult struct {
	Account     *models.Account
	AccessToken string
	CanOffline  bool
}

// Login authenticates by contact and password. Residents must be Approved;
// staff roles bypass the approval gate.
func (s *Service) Login(ctx context.Context, rawContact, plainPassword string) (*LoginResult, error) {
	normalized, err := contact.Normalize(rawContact, contact.Strict)
	if err != nil {
		return nil, err
	}

	account, err := s.store.FindByContact(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !password.Verify(plainPassword, account.PasswordDigest) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect password")
	}
	if account.Role == models.RoleResident && account.Status != models.StatusApproved {
		return nil, dErrors.Newf(dErrors.CodeForbidden,
			"Resident account not approved. Current status: %s", account.Status)
	}

	result := &LoginResult{Account: account, CanOffline: true}
	if s.tokens != nil {
		signed, err := s.tokens.Issue(account.ID, string(account.Role), accessTokenTTL)
		if err != nil {
			return nil, err
		}
		result.AccessToken = signed
	}
	return result, nil
}

// VerifyStatus reports the lifecycle status and role for a contact number.
func (s *Service) VerifyStatus(ctx context.Context, rawContact string) (*models.Account, error) {
	normalized, err := contact.Normalize(rawContact, contact.Strict)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid contact number")
	}
	return s.store.FindByContact(ctx, normalized)
}

func (s *Service) List(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.store.FindByID(ctx, id)
}

// Delete hard-deletes an account and everything it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	if s.requests != nil {
		if err := s.requests.DeleteByOwner(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user requests")
		}
	}
	if s.notifications != nil {
		if err := s.notifications.DeleteByOwner(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user notifications")
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	return nil
}

// requireStaff loads the acting account and checks it may perform staff
// actions.
func (s *Service) requireStaff(ctx context.Context, actorID uuid.UUID) (*models.Account, error) {
	actor, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "Invalid staff user ID.")
		}
		return nil, err
	}
	if !actor.Role.IsStaff() {
		return nil, dErrors.New(dErrors.CodeForbidden, "Not authorized")
	}
	return actor, nil
}

func (s *Service) notifyStaff(ctx context.Context, title, message, notifType string) {
	staff, err := s.store.ListStaff(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list staff for notification",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	for _, member := range staff {
		if _, err := s.notifier.Emit(ctx, notifservice.EmitParams{
			AccountID: member.ID,
			Title:     title,
			Message:   message,
			Type:      notifType,
		}); err != nil {
			s.logger.ErrorContext(ctx, "failed to notify staff member",
				"request_id", requestcontext.RequestID(ctx),
				"staff_id", member.ID,
				"error", err,
			)
		}
	}
}
