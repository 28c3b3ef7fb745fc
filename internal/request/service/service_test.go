package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	accountmodels "brgyconnect/internal/account/models"
	accountstore "brgyconnect/internal/account/store"
	notifmodels "brgyconnect/internal/notification/models"
	notifservice "brgyconnect/internal/notification/service"
	notifstore "brgyconnect/internal/notification/store"
	"brgyconnect/internal/request/models"
	"brgyconnect/internal/request/store"
	"brgyconnect/internal/sms/mocks"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/requestcontext"
)

type RequestServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	requests  *store.Memory
	accounts  *accountstore.Memory
	notifRows *notifstore.Memory
	gateway   *mocks.MockGateway
	service   *Service

	owner *accountmodels.Account
	staff *accountmodels.Account
}

func TestRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) SetupTest() {
	s.reset()
}

func (s *RequestServiceSuite) reset() {
	s.ctrl = gomock.NewController(s.T())
	s.requests = store.NewMemory()
	s.accounts = accountstore.NewMemory()
	s.notifRows = notifstore.NewMemory()
	s.gateway = mocks.NewMockGateway(s.ctrl)
	notifier := notifservice.New(s.notifRows, s.gateway)
	s.service = New(s.requests, s.accounts, notifier)

	s.owner = s.seedAccount("Maria", "Santos", "09171234567", accountmodels.RoleResident, accountmodels.StatusApproved)
	s.staff = s.seedAccount("System", "Secretary", "09180000001", accountmodels.RoleSecretary, accountmodels.StatusApproved)
}

func (s *RequestServiceSuite) seedAccount(first, last, contact string, role accountmodels.Role, status accountmodels.Status) *accountmodels.Account {
	account := &accountmodels.Account{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
		Contact:   contact,
		Role:      role,
		Status:    status,
	}
	s.Require().NoError(s.accounts.Save(context.Background(), account))
	return account
}

func (s *RequestServiceSuite) create() *models.Request {
	req, err := s.service.Create(context.Background(), CreateParams{
		DocumentType: "Barangay Clearance",
		Purpose:      "Employment",
		Copies:       2,
		Contact:      "+639171234567",
	})
	s.Require().NoError(err)
	return req
}

func (s *RequestServiceSuite) notificationsFor(accountID uuid.UUID) []*notifmodels.Notification {
	rows, err := s.notifRows.List(context.Background(), notifmodels.Filter{AccountID: &accountID})
	s.Require().NoError(err)
	return rows
}

func (s *RequestServiceSuite) TestCreate() {
	s.Run("files a pending request for an approved account", func() {
		s.reset()
		req := s.create()

		s.Equal(models.StatusPending, req.Status)
		s.Equal("Review", req.Action)
		s.Equal("09171234567", req.Contact)
		s.Equal(s.owner.ID, req.OwnerID)

		ownerRows := s.notificationsFor(s.owner.ID)
		s.Require().Len(ownerRows, 1)
		s.Equal("Document Request Submitted", ownerRows[0].Title)

		staffRows := s.notificationsFor(s.staff.ID)
		s.Require().Len(staffRows, 1)
		s.Equal("New Document Request Received", staffRows[0].Title)
		s.Contains(staffRows[0].Message, "Maria Santos")
	})

	s.Run("unknown contact is rejected", func() {
		s.reset()
		_, err := s.service.Create(context.Background(), CreateParams{
			DocumentType: "Barangay Clearance",
			Contact:      "09170000000",
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "User with contact '09170000000' not found or not approved.")
	})

	s.Run("unapproved account is rejected", func() {
		s.reset()
		s.seedAccount("Juan", "Cruz", "09175555555", accountmodels.RoleResident, accountmodels.StatusPending)
		_, err := s.service.Create(context.Background(), CreateParams{
			DocumentType: "Barangay Clearance",
			Contact:      "09175555555",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty type and copies get defaults", func() {
		s.reset()
		req, err := s.service.Create(context.Background(), CreateParams{Contact: "09171234567"})
		s.Require().NoError(err)
		s.Equal("Unknown", req.DocumentType)
		s.Equal(1, req.Copies)
	})
}

func (s *RequestServiceSuite) TestTransition() {
	transition := func(id uuid.UUID, target models.Status) (*models.Request, error) {
		return s.service.Transition(context.Background(), TransitionParams{
			RequestID:   id,
			Target:      target,
			PerformedBy: s.staff.ID,
		})
	}

	s.Run("actor must be staff", func() {
		s.reset()
		req := s.create()
		_, err := s.service.Transition(context.Background(), TransitionParams{
			RequestID:   req.ID,
			Target:      models.StatusApproved,
			PerformedBy: s.owner.ID,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = s.service.Transition(context.Background(), TransitionParams{
			RequestID:   req.ID,
			Target:      models.StatusApproved,
			PerformedBy: uuid.New(),
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "Invalid staff user ID.")
	})

	s.Run("returned defaults the correction note", func() {
		s.reset()
		req := s.create()
		updated, err := transition(req.ID, models.StatusReturned)
		s.Require().NoError(err)
		s.Equal("Request returned for correction", updated.Notes)
		s.Equal("Update Request", updated.Action)
	})

	s.Run("rejected defaults the note", func() {
		s.reset()
		req := s.create()
		updated, err := transition(req.ID, models.StatusRejected)
		s.Require().NoError(err)
		s.Equal("Request rejected", updated.Notes)
		s.Equal("Reject", updated.Action)
	})

	s.Run("for pickup stamps the pickup date and sends SMS", func() {
		s.reset()
		req := s.create()
		s.gateway.EXPECT().
			Send(gomock.Any(), "09171234567", gomock.Any()).
			Return(map[string]any{"status": "queued"}, nil)

		updated, err := transition(req.ID, models.StatusForPickup)
		s.Require().NoError(err)
		s.Equal(models.StatusForPickup, updated.Status)
		s.Equal("Ready for Pickup", updated.Action)
		s.Require().NotNil(updated.PickupDate)
	})

	s.Run("approved clears notes and does not SMS", func() {
		s.reset()
		req := s.create()
		_, err := transition(req.ID, models.StatusReturned)
		s.Require().NoError(err)

		updated, err := transition(req.ID, models.StatusApproved)
		s.Require().NoError(err)
		s.Empty(updated.Notes)
		s.Equal("Review", updated.Action)
	})

	s.Run("pending only from returned", func() {
		s.reset()
		req := s.create()
		_, err := transition(req.ID, models.StatusApproved)
		s.Require().NoError(err)

		_, err = transition(req.ID, models.StatusPending)
		s.Require().Error(err)
		s.Contains(err.Error(), "Only Returned requests can be resubmitted.")

		_, err = transition(req.ID, models.StatusReturned)
		s.Require().NoError(err)
		updated, err := transition(req.ID, models.StatusPending)
		s.Require().NoError(err)
		s.Equal("Resubmitted", updated.Action)
	})

	s.Run("unknown target is invalid", func() {
		s.reset()
		req := s.create()
		_, err := transition(req.ID, models.Status("Archived"))
		s.Require().Error(err)
		s.Contains(err.Error(), "Invalid status: Archived")
	})

	s.Run("owner and staff are notified", func() {
		s.reset()
		req := s.create()
		_, err := transition(req.ID, models.StatusReturned)
		s.Require().NoError(err)

		ownerTitles := []string{}
		for _, n := range s.notificationsFor(s.owner.ID) {
			ownerTitles = append(ownerTitles, n.Title)
		}
		s.Contains(ownerTitles, "Request Returned")

		staffTitles := []string{}
		for _, n := range s.notificationsFor(s.staff.ID) {
			staffTitles = append(staffTitles, n.Title)
		}
		s.Contains(staffTitles, "Request Returned Updated")
	})
}

func (s *RequestServiceSuite) TestResubmit() {
	s.Run("only returned requests can be amended", func() {
		s.reset()
		req := s.create()
		_, err := s.service.Resubmit(context.Background(), req.ID, models.UpdatePatch{})
		s.Require().Error(err)
		s.Contains(err.Error(), "Only Returned requests can be updated by user.")
	})

	s.Run("patch applies and goes back to pending", func() {
		s.reset()
		req := s.create()
		_, err := s.service.Transition(context.Background(), TransitionParams{
			RequestID: req.ID, Target: models.StatusReturned, PerformedBy: s.staff.ID,
		})
		s.Require().NoError(err)

		purpose := "  Scholarship  "
		copies := 3
		updated, err := s.service.Resubmit(context.Background(), req.ID, models.UpdatePatch{
			Purpose: &purpose,
			Copies:  &copies,
		})
		s.Require().NoError(err)
		s.Equal(models.StatusPending, updated.Status)
		s.Equal("Resubmitted", updated.Action)
		s.Equal("Scholarship", updated.Purpose)
		s.Equal(3, updated.Copies)
		// Untouched fields survive.
		s.Equal("Barangay Clearance", updated.DocumentType)
	})
}

func (s *RequestServiceSuite) TestSoftDelete() {
	s.Run("cancels and hides the request", func() {
		s.reset()
		req := s.create()
		s.Require().NoError(s.service.SoftDelete(context.Background(), req.ID))

		_, err := s.requests.FindByID(context.Background(), req.ID, false)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		stored, err := s.requests.FindByID(context.Background(), req.ID, true)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, stored.Status)
		s.True(stored.IsDeleted)
		s.NotNil(stored.DeletedAt)

		titles := []string{}
		for _, n := range s.notificationsFor(s.owner.ID) {
			titles = append(titles, n.Title)
		}
		s.Contains(titles, "Request Cancelled")
	})

	s.Run("double delete is rejected", func() {
		s.reset()
		req := s.create()
		s.Require().NoError(s.service.SoftDelete(context.Background(), req.ID))
		err := s.service.SoftDelete(context.Background(), req.ID)
		s.Require().Error(err)
		s.Contains(err.Error(), "Request already deleted.")
	})
}

func (s *RequestServiceSuite) TestExpireStale() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	createAgedRequest := func(age time.Duration, status models.Status) *models.Request {
		req := s.create()
		stored, err := s.requests.FindByID(ctx, req.ID, false)
		s.Require().NoError(err)
		stored.CreatedAt = now.Add(-age)
		stored.Status = status
		s.Require().NoError(s.requests.Save(ctx, stored))
		return stored
	}

	s.Run("expires only stale unfinished requests", func() {
		s.reset()
		stale := createAgedRequest(181*24*time.Hour, models.StatusPending)
		fresh := createAgedRequest(10*24*time.Hour, models.StatusPending)
		done := createAgedRequest(181*24*time.Hour, models.StatusCompleted)

		count, err := s.service.ExpireStale(ctx)
		s.Require().NoError(err)
		s.Equal(1, count)

		expired, err := s.requests.FindByID(ctx, stale.ID, true)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, expired.Status)
		s.True(expired.IsDeleted)
		s.Equal("Automatically expired after 6 months", expired.Notes)

		kept, err := s.requests.FindByID(ctx, fresh.ID, false)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, kept.Status)

		completed, err := s.requests.FindByID(ctx, done.ID, false)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, completed.Status)
		s.False(completed.IsDeleted)

		titles := []string{}
		for _, n := range s.notificationsFor(s.owner.ID) {
			titles = append(titles, n.Title)
		}
		s.Contains(titles, "Request Expired")
	})

	s.Run("sweep is idempotent once everything expired", func() {
		s.reset()
		createAgedRequest(200*24*time.Hour, models.StatusApproved)

		count, err := s.service.ExpireStale(ctx)
		s.Require().NoError(err)
		s.Equal(1, count)

		count, err = s.service.ExpireStale(ctx)
		s.Require().NoError(err)
		s.Zero(count)
	})
}

func (s *RequestServiceSuite) TestList() {
	s.reset()
	first := s.create()
	second := s.create()
	_, err := s.service.Transition(context.Background(), TransitionParams{
		RequestID: second.ID, Target: models.StatusApproved, PerformedBy: s.staff.ID,
	})
	s.Require().NoError(err)
	s.Require().NoError(s.service.SoftDelete(context.Background(), first.ID))

	s.Run("soft-deleted rows are hidden by default", func() {
		rows, err := s.service.List(context.Background(), models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(second.ID, rows[0].ID)
	})

	s.Run("include_deleted shows them", func() {
		rows, err := s.service.List(context.Background(), models.Filter{IncludeDeleted: true})
		s.Require().NoError(err)
		s.Len(rows, 2)
	})

	s.Run("status filter is case-insensitive", func() {
		rows, err := s.service.List(context.Background(), models.Filter{Status: models.Status("approved")})
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal(second.ID, rows[0].ID)
	})

	s.Run("contact filter normalizes leniently", func() {
		rows, err := s.service.List(context.Background(), models.Filter{Contact: "+639171234567"})
		s.Require().NoError(err)
		s.Len(rows, 1)
	})
}
