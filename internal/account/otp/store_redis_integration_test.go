//go:build integration

package otp_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"brgyconnect/internal/account/otp"
	"brgyconnect/pkg/testutil/containers"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client := containers.NewRedisClient(t)
	store := otp.NewRedisStore(client)
	ctx := context.Background()

	accountID := uuid.New()
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := otp.Record{Code: "123456", IssuedAt: issued}

	// Absent key reads as nil, not an error.
	got, err := store.Get(ctx, accountID, otp.KindContactChange)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, store.Put(ctx, accountID, otp.KindContactChange, rec))

	got, err = store.Get(ctx, accountID, otp.KindContactChange)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "123456", got.Code)
	require.True(t, got.IssuedAt.Equal(issued))

	// Kinds are isolated per key.
	got, err = store.Get(ctx, accountID, otp.KindPasswordReset)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, store.Clear(ctx, accountID, otp.KindContactChange))
	got, err = store.Get(ctx, accountID, otp.KindContactChange)
	require.NoError(t, err)
	require.Nil(t, got)

	// Clearing an absent record is a no-op.
	require.NoError(t, store.Clear(ctx, accountID, otp.KindContactChange))
}

func TestRedisStoreSetsTTL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client := containers.NewRedisClient(t)
	store := otp.NewRedisStore(client)
	ctx := context.Background()

	accountID := uuid.New()
	require.NoError(t, store.Put(ctx, accountID, otp.KindPasswordReset, otp.Record{
		Code:     "654321",
		IssuedAt: time.Now().UTC(),
	}))

	ttl := client.TTL(ctx, "otp:password_reset:"+accountID.String()).Val()
	require.Greater(t, ttl, otp.Window)
	require.LessOrEqual(t, ttl, otp.Window+time.Minute)
}
