package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "articles:seen:"

	// DefaultTTL outlives the longest ingestion window.
	DefaultTTL = 8 * 24 * time.Hour
)

// SeenURLs records URLs of stored articles in Redis so repeated runs can
// skip them without a database round trip.
type SeenURLs struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server at addr.
func New(addr string, ttl time.Duration) *SeenURLs {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *SeenURLs {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SeenURLs{client: client, ttl: ttl}
}

// Ping checks the connection.
func (c *SeenURLs) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *SeenURLs) Close() error {
	return c.client.Close()
}

// Seen reports whether url was recorded.
func (c *SeenURLs) Seen(ctx context.Context, url string) (bool, error) {
	_, err := c.client.Get(ctx, keyPrefix+url).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get seen url: %w", err)
	}
	return true, nil
}

// MarkSeen records urls in a single pipeline.
func (c *SeenURLs) MarkSeen(ctx context.Context, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, u := range urls {
		pipe.Set(ctx, keyPrefix+u, 1, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark %d urls seen: %w", len(urls), err)
	}
	return nil
}
