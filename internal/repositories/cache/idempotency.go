package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "idempotency:transfer:"
	inFlightMarker    = "__in_flight__"
)

// IdempotencyStore deduplicates transfer requests by caller-supplied
// key. Begin claims the key before execution; Complete stores the
// final result so client retries replay it instead of executing again.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Begin atomically claims the key. It returns the stored result when a
// prior request already completed, inFlight=true when one is still
// executing, and claimed=true when this caller owns the key.
func (s *IdempotencyStore) Begin(ctx context.Context, key string, result interface{}) (claimed bool, inFlight bool, err error) {
	ok, err := s.client.SetNX(ctx, idempotencyPrefix+key, inFlightMarker, s.ttl).Result()
	if err != nil {
		return false, false, err
	}
	if ok {
		return true, false, nil
	}

	val, err := s.client.Get(ctx, idempotencyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Claim expired between SetNX and Get; treat as in flight
			// and let the caller retry.
			return false, true, nil
		}
		return false, false, err
	}
	if val == inFlightMarker {
		return false, true, nil
	}
	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, false, err
	}
	return false, false, nil
}

// Complete stores the final result under the key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, result interface{}) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyPrefix+key, data, s.ttl).Err()
}

// Release drops an in-flight claim after a validation failure so the
// client may retry with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyPrefix+key).Err()
}
