// Package seed creates the built-in staff accounts on startup.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"brgyconnect/internal/account/models"
	"brgyconnect/internal/contact"
	"brgyconnect/internal/password"
)

// Store is the slice of the account store the seeder writes through.
type Store interface {
	Save(ctx context.Context, a *models.Account) error
	ListStaff(ctx context.Context) ([]*models.Account, error)
}

type staffSeed struct {
	lastName string
	contact  string
	password string
	role     models.Role
}

// Contacts are stored normalized so the login lookup matches them.
var defaults = []staffSeed{
	{lastName: "Secretary", contact: "+639123456789", password: "secret123", role: models.RoleSecretary},
	{lastName: "Captain", contact: "+639987654321", password: "captain123", role: models.RoleCaptain},
}

// Staff creates one secretary and one captain account unless an account
// with that role already exists. Safe to run on every startup.
func Staff(ctx context.Context, store Store, logger *slog.Logger) error {
	existing, err := store.ListStaff(ctx)
	if err != nil {
		return fmt.Errorf("list staff: %w", err)
	}
	present := map[models.Role]bool{}
	for _, a := range existing {
		present[a.Role] = true
	}

	for _, seed := range defaults {
		if present[seed.role] {
			continue
		}
		normalized, err := contact.Normalize(seed.contact, contact.Strict)
		if err != nil {
			return fmt.Errorf("normalize seed contact: %w", err)
		}
		account := &models.Account{
			ID:             uuid.New(),
			FirstName:      "System",
			LastName:       seed.lastName,
			DOB:            time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:         "N/A",
			CivilStatus:    "N/A",
			Contact:        normalized,
			Purok:          "N/A",
			Barangay:       "DefaultBarangay",
			City:           "DefaultCity",
			Province:       "DefaultProvince",
			PostalCode:     "0000",
			PasswordDigest: password.Digest(seed.password),
			Photo:          "default_photo.png",
			Role:           seed.role,
			Status:         models.StatusPending,
			CreatedAt:      time.Now().UTC(),
		}
		if err := store.Save(ctx, account); err != nil {
			return fmt.Errorf("seed %s account: %w", seed.role, err)
		}
		logger.InfoContext(ctx, "seeded staff account",
			"role", seed.role,
			"contact", normalized,
		)
	}
	return nil
}
