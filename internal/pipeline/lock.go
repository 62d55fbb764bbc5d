package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
)

// RedisLocker makes the single-run guard hold across processes.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redislock.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAlreadyProcessing
	}
	if err != nil {
		return nil, err
	}
	return lock, nil
}
