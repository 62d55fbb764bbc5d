package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	latestKey  = "shift-summary:latest"
	DefaultTTL = 36 * time.Hour
)

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func (c *RedisSummaryCache) GetLatest(ctx context.Context) (*Entry, bool, error) {
	val, err := c.client.Get(ctx, latestKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, false, err
	}
	if e.Summary == nil {
		return nil, false, nil
	}
	return &e, true, nil
}

// SetLatest replaces the cached entry unless the cached one belongs to a
// later shift, so reprocessing an old date leaves the latest in place.
func (c *RedisSummaryCache) SetLatest(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Summary == nil {
		return nil
	}
	current, ok, err := c.GetLatest(ctx)
	if err != nil {
		return err
	}
	if ok && current.Summary.ShiftDate > entry.Summary.ShiftDate {
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, latestKey, payload, c.ttl).Err()
}
