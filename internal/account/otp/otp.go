// Package otp stores in-flight one-time codes. A code and its issuance time
// live and die as one record, which makes the "cleared together" invariant
// structural instead of a convention over two columns.
package otp

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two OTP flows an account can have in flight.
type Kind string

const (
	KindContactChange Kind = "contact_change"
	KindPasswordReset Kind = "password_reset"
)

// Record is one issued code.
type Record struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Window is how long a code stays valid. Verification checks IssuedAt
// against this exactly; store TTLs only garbage-collect.
const Window = 5 * time.Minute

// Store persists at most one record per (account, kind).
type Store interface {
	Put(ctx context.Context, accountID uuid.UUID, kind Kind, rec Record) error
	// Get returns nil when no record exists (never issued, cleared, or
	// expired out of the backing store).
	Get(ctx context.Context, accountID uuid.UUID, kind Kind) (*Record, error)
	Clear(ctx context.Context, accountID uuid.UUID, kind Kind) error
}

// GenerateCode draws a uniform 6-digit code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
