package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrAttemptBusy is returned when another request is driving the same
// booking attempt.
var ErrAttemptBusy = errors.New("booking attempt is being processed")

// AttemptLocker serialises work on a single booking attempt across
// instances.
type AttemptLocker interface {
	WithAttemptLock(ctx context.Context, attemptID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisAttemptLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptLocker(client *redis.Client, ttl time.Duration) AttemptLocker {
	return &redisAttemptLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisAttemptLocker) WithAttemptLock(ctx context.Context, attemptID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:attempt:%s", attemptID.String())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire attempt lock: %w", err)
	}
	if !ok {
		return ErrAttemptBusy
	}

	defer func() {
		// ctx may already be cancelled; the release must still run
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisAttemptLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release attempt lock: %w", err)
	}
	return nil
}
