//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"

	"brgyconnect/internal/account/models"
	"brgyconnect/internal/account/store"
	notifmodels "brgyconnect/internal/notification/models"
	notifstore "brgyconnect/internal/notification/store"
	requestmodels "brgyconnect/internal/request/models"
	requeststore "brgyconnect/internal/request/store"
	dErrors "brgyconnect/pkg/domain-errors"
	"brgyconnect/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sqlx.DB
	store *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.db = containers.NewPostgresDB(s.T())
	s.store = store.NewPostgres(s.db)
}

func (s *PostgresStoreSuite) SetupTest() {
	containers.TruncateTables(s.T(), s.db, "notifications", "document_requests", "accounts")
}

func newTestAccount(contact string) *models.Account {
	return &models.Account{
		ID:             uuid.New(),
		FirstName:      "Maria",
		LastName:       "Santos",
		DOB:            time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:         "Female",
		CivilStatus:    "Single",
		Contact:        contact,
		Purok:          "Purok 1",
		Barangay:       "Tilhaong",
		City:           "Ronda",
		Province:       "Cebu",
		PostalCode:     "6034",
		PasswordDigest: "digest",
		Photo:          "photo.png",
		Role:           models.RoleResident,
		Status:         models.StatusPending,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	account := newTestAccount("09171234567")
	s.Require().NoError(s.store.Save(ctx, account))

	byID, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(account.Contact, byID.Contact)
	s.Equal(models.StatusPending, byID.Status)

	byContact, err := s.store.FindByContact(ctx, "09171234567")
	s.Require().NoError(err)
	s.Equal(account.ID, byContact.ID)

	byName, err := s.store.FindByName(ctx, "  maria ", "SANTOS")
	s.Require().NoError(err)
	s.Equal(account.ID, byName.ID)

	_, err = s.store.FindByContact(ctx, "09170000000")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestUpsertUpdatesInPlace() {
	ctx := context.Background()
	account := newTestAccount("09171234567")
	s.Require().NoError(s.store.Save(ctx, account))

	account.Status = models.StatusApproved
	account.City = "NewCity"
	s.Require().NoError(s.store.Save(ctx, account))

	stored, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, stored.Status)
	s.Equal("NewCity", stored.City)

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *PostgresStoreSuite) TestDuplicateContactConflict() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, newTestAccount("09171234567")))

	dup := newTestAccount("09171234567")
	dup.FirstName = "Juan"
	err := s.store.Save(ctx, dup)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PostgresStoreSuite) TestPendingUpdatesRoundTrip() {
	ctx := context.Background()
	account := newTestAccount("09171234567")
	city := "NewCity"
	account.PendingUpdates = &models.ProfileUpdate{City: &city}
	s.Require().NoError(s.store.Save(ctx, account))

	stored, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.PendingUpdates)
	s.Require().NotNil(stored.PendingUpdates.City)
	s.Equal("NewCity", *stored.PendingUpdates.City)

	stored.PendingUpdates = nil
	s.Require().NoError(s.store.Save(ctx, stored))
	cleared, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Nil(cleared.PendingUpdates)
}

func (s *PostgresStoreSuite) TestListStaff() {
	ctx := context.Background()
	resident := newTestAccount("09171234567")
	s.Require().NoError(s.store.Save(ctx, resident))

	secretary := newTestAccount("09180000001")
	secretary.FirstName = "System"
	secretary.LastName = "Secretary"
	secretary.Role = models.RoleSecretary
	s.Require().NoError(s.store.Save(ctx, secretary))

	staff, err := s.store.ListStaff(ctx)
	s.Require().NoError(err)
	s.Require().Len(staff, 1)
	s.Equal(secretary.ID, staff[0].ID)
}

// TestDeleteCascades verifies the FK cascades: deleting an account drops
// its document requests and notifications with it.
func (s *PostgresStoreSuite) TestDeleteCascades() {
	ctx := context.Background()
	account := newTestAccount("09171234567")
	s.Require().NoError(s.store.Save(ctx, account))

	requests := requeststore.NewPostgres(s.db)
	now := time.Now().UTC()
	s.Require().NoError(requests.Save(ctx, &requestmodels.Request{
		ID:           uuid.New(),
		OwnerID:      account.ID,
		DocumentType: "Barangay Clearance",
		Copies:       1,
		Contact:      account.Contact,
		Status:       requestmodels.StatusPending,
		Action:       "Review",
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	notifications := notifstore.NewPostgres(s.db)
	s.Require().NoError(notifications.Save(ctx, &notifmodels.Notification{
		ID:        uuid.New(),
		AccountID: &account.ID,
		Title:     "t",
		Message:   "m",
		Type:      "user_request",
		CreatedAt: now,
	}))

	s.Require().NoError(s.store.Delete(ctx, account.ID))

	var requestCount, notifCount int
	s.Require().NoError(s.db.Get(&requestCount, `SELECT count(*) FROM document_requests`))
	s.Require().NoError(s.db.Get(&notifCount, `SELECT count(*) FROM notifications`))
	s.Zero(requestCount)
	s.Zero(notifCount)

	err := s.store.Delete(ctx, account.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
