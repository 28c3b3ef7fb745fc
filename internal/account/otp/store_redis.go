package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:"

// RedisStore keeps OTP records in Redis with a TTL slightly past the
// verification window. The TTL is garbage collection only; the exact
// expiry decision always comes from the stored IssuedAt.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(accountID uuid.UUID, kind Kind) string {
	return redisKeyPrefix + string(kind) + ":" + accountID.String()
}

func (s *RedisStore) Put(ctx context.Context, accountID uuid.UUID, kind Kind, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	// One minute of slack so a request that lands exactly at the window
	// boundary still reads the record and reports "expired" rather than
	// "invalid".
	if err := s.client.Set(ctx, key(accountID, kind), raw, Window+time.Minute).Err(); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, accountID uuid.UUID, kind Kind) (*Record, error) {
	raw, err := s.client.Get(ctx, key(accountID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read otp record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Clear(ctx context.Context, accountID uuid.UUID, kind Kind) error {
	if err := s.client.Del(ctx, key(accountID, kind)).Err(); err != nil {
		return fmt.Errorf("clear otp record: %w", err)
	}
	return nil
}
