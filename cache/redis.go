/* redis.go
 * Contains the Redis cache for rendered brackets. A Cache without a client is a no-op so the bot and web server
 * run without Redis.
 * Authors: Zachary Bower
 */

package cache

import (
	"context"
	"errors"
	"fmt"
	"llaves-bot/api/shared"
	"time"

	"github.com/redis/go-redis/v9"
)

const bracketPrefix = "bracket:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server at url. An empty url returns a disabled cache.
// Preconditions: Receives a redis:// or rediss:// url and the lifetime of cached entries
// Postconditions: Returns the cache, or an error if the url is invalid or the server does not answer
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	if url == "" {
		return &Cache{}, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// Enabled reports whether the cache has a Redis client behind it
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func bracketKey(cycle shared.Cycle) string {
	return bracketPrefix + string(cycle)
}

// GetBracket returns the cached body of a cycle's bracket and whether it was found
func (c *Cache) GetBracket(ctx context.Context, cycle shared.Cycle) ([]byte, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, bracketKey(cycle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// SetBracket caches the body of a cycle's bracket
func (c *Cache) SetBracket(ctx context.Context, cycle shared.Cycle, body []byte) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Set(ctx, bracketKey(cycle), body, c.ttl).Err()
}

// InvalidateBracket drops the cached bracket of a cycle
func (c *Cache) InvalidateBracket(ctx context.Context, cycle shared.Cycle) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, bracketKey(cycle)).Err()
}

// InvalidateAll drops every cached bracket
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, bracketPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}

// Close releases the Redis connection
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
