package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	captchaPrefix        = "captcha:"
	failedAttemptsPrefix = "login:failed:"

	captchaTTL        = 5 * time.Minute
	failedAttemptsTTL = 15 * time.Minute
)

// CaptchaStore keeps captcha answers and per-email failed login
// counters with TTL eviction. Redis TTLs replace the scheduled cleanup
// a process-local map would need.
type CaptchaStore struct {
	client *redis.Client
}

func NewCaptchaStore(client *redis.Client) *CaptchaStore {
	return &CaptchaStore{client: client}
}

func (s *CaptchaStore) SaveAnswer(ctx context.Context, captchaID string, answer int) error {
	return s.client.Set(ctx, captchaPrefix+captchaID, answer, captchaTTL).Err()
}

// TakeAnswer returns the stored answer and deletes it, so each captcha
// can be used at most once. found is false for unknown or expired ids.
func (s *CaptchaStore) TakeAnswer(ctx context.Context, captchaID string) (answer int, found bool, err error) {
	val, err := s.client.GetDel(ctx, captchaPrefix+captchaID).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return val, true, nil
}

func failedKey(email string) string {
	return failedAttemptsPrefix + strings.ToLower(email)
}

func (s *CaptchaStore) RecordFailedAttempt(ctx context.Context, email string) error {
	key := failedKey(email)
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, failedAttemptsTTL)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (s *CaptchaStore) FailedAttempts(ctx context.Context, email string) (int, error) {
	val, err := s.client.Get(ctx, failedKey(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return val, nil
}

func (s *CaptchaStore) ClearFailedAttempts(ctx context.Context, email string) error {
	return s.client.Del(ctx, failedKey(email)).Err()
}
