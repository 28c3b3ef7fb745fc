// Package service implements the notification emitter: persist a
// notification row, then conditionally page the resident's phone. The row
// write is load-bearing; the SMS is not.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"brgyconnect/internal/contact"
	"brgyconnect/internal/notification/models"
	"brgyconnect/internal/platform/metrics"
	"brgyconnect/internal/sms"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/requestcontext"
)

// Store is the persistence surface the emitter needs.
type Store interface {
	Save(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, accountID *uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, accountID uuid.UUID) error
}

// Statuses that page the resident's phone. Everything else stays in-app so
// residents are not spammed on every minor transition.
var smsEligibleStatuses = map[string]bool{
	"For Pickup": true,
	"Completed":  true,
}

type Service struct {
	store   Store
	gateway sms.Gateway
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, gateway sms.Gateway, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		gateway: gateway,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// EmitParams describes one notification and its optional SMS side channel.
type EmitParams struct {
	AccountID uuid.UUID
	Title     string
	Message   string
	Type      string
	// NotifySMS requests an SMS; it only fires when Phone is set and
	// GateStatus is an SMS-eligible request status.
	NotifySMS  bool
	Phone      string
	GateStatus string
}

// Emit persists the notification row and then attempts the SMS. The row
// write failing fails the operation; the SMS failing is logged and
// swallowed, per the gateway's best-effort contract.
func (s *Service) Emit(ctx context.Context, p EmitParams) (*models.Notification, error) {
	accountID := p.AccountID
	n := &models.Notification{
		ID:        uuid.New(),
		AccountID: &accountID,
		Title:     strings.TrimSpace(p.Title),
		Message:   strings.TrimSpace(p.Message),
		Type:      strings.TrimSpace(p.Type),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notification")
	}
	s.metrics.IncNotificationsCreated()

	if p.NotifySMS && strings.TrimSpace(p.Phone) != "" && smsEligibleStatuses[p.GateStatus] {
		s.sendSMS(ctx, p.Phone, n.Message)
	}
	return n, nil
}

// SendDirect sends an SMS outside the status gate. Account-lifecycle
// confirmations (registration decisions, contact changes, password resets)
// always page the phone. Still best-effort.
func (s *Service) SendDirect(ctx context.Context, phone, message string) {
	if strings.TrimSpace(phone) == "" {
		return
	}
	s.sendSMS(ctx, phone, message)
}

func (s *Service) sendSMS(ctx context.Context, phone, message string) {
	if s.gateway == nil {
		return
	}
	number, _ := contact.Normalize(phone, contact.Lenient)
	result, err := s.gateway.Send(ctx, number, message)
	if err != nil {
		s.metrics.IncSMSFailed()
		s.logger.WarnContext(ctx, "sms send failed",
			"request_id", requestcontext.RequestID(ctx),
			"number", number,
			"error", err.Error(),
		)
		return
	}
	s.metrics.IncSMSSent()
	s.logger.InfoContext(ctx, "sms sent",
		"request_id", requestcontext.RequestID(ctx),
		"number", number,
		"provider_result", result,
	)
}

// List returns notifications scoped by the caller's role: residents see
// their own rows, staff see staff-facing items.
func (s *Service) List(ctx context.Context, role string, accountID *uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	filter := models.Filter{UnreadOnly: unreadOnly}
	switch strings.ToLower(role) {
	case "":
		// Unscoped listing kept for admin tooling.
	case "resident", "user":
		if accountID == nil {
			return nil, dErrors.New(dErrors.CodeValidation, "user_id is required for residents")
		}
		filter.AccountID = accountID
	case "secretary", "captain":
		filter.Type = "staff_action"
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid role")
	}

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return rows, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.store.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, accountID *uuid.UUID) (int, error) {
	count, err := s.store.MarkAllRead(ctx, accountID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update notifications")
	}
	return count, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
