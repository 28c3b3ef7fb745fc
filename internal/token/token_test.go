package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	dErrors "brgyconnect/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key")
	accountID := uuid.New()

	signed, err := svc.Issue(accountID, "secretary", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, accountID.String(), claims.AccountID)
	require.Equal(t, "secretary", claims.Role)
	require.Equal(t, "brgyconnect", claims.Issuer)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	signed, err := NewService("key-one").Issue(uuid.New(), "resident", time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two").Validate(signed)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key")
	signed, err := svc.Issue(uuid.New(), "resident", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewService("test-signing-key").Validate("not-a-token")
	require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
