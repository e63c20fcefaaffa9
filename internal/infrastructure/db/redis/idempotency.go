package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	pendingMarker  = "pending"
)

// IdempotencyStore remembers which purchase answered an Idempotency-Key.
// Key format: storefront:idempotency:<owner>:<key>, holding "pending" until
// the order is stored and the purchase ID afterwards.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis
// client. A zero ttl falls back to 24 hours.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = idempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim reserves the key with SETNX. A lost race reads the current value.
func (s *IdempotencyStore) Claim(ctx context.Context, owner, key string) (bool, string, error) {
	k := idempotencyKey(owner, key)
	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return true, "", nil
	}

	v, err := s.client.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// Released between SETNX and GET; the caller retries as in flight.
		return false, "", nil
	case err != nil:
		return false, "", fmt.Errorf("idempotency lookup: %w", err)
	case v == pendingMarker:
		return false, "", nil
	default:
		return false, v, nil
	}
}

// Complete overwrites the pending marker with the purchase ID.
func (s *IdempotencyStore) Complete(ctx context.Context, owner, key, purchaseID string) error {
	if err := s.client.Set(ctx, idempotencyKey(owner, key), purchaseID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release deletes the claim.
func (s *IdempotencyStore) Release(ctx context.Context, owner, key string) error {
	if err := s.client.Del(ctx, idempotencyKey(owner, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(owner, key string) string {
	return keyPrefix + "idempotency:" + owner + ":" + key
}
