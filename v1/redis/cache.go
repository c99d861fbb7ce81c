package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lifecoach/std/v1/database"
)

// Key returns the namespaced key stored for key.
func (c *Client) Key(key string) string {
	return c.cfg.KeyPrefix + key
}

// Load returns the cached value of key. A missing or expired key is a miss,
// not an error.
func (c *Client) Load(ctx context.Context, key string) (value []byte, found bool, err error) {
	if c.closed.Load() {
		return nil, false, database.ErrClientClosed
	}
	start := time.Now()
	defer func() {
		c.observe(ctx, "get", start, err, int64(len(value)), map[string]interface{}{"hit": found})
	}()

	value, err = c.rdb.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// Store caches value under key for the configured TTL.
func (c *Client) Store(ctx context.Context, key string, value []byte) (err error) {
	if c.closed.Load() {
		return database.ErrClientClosed
	}
	start := time.Now()
	defer func() {
		c.observe(ctx, "set", start, err, int64(len(value)), map[string]interface{}{"ttl": c.cfg.TTL.String()})
	}()

	if err = c.rdb.Set(ctx, c.Key(key), value, c.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Forget drops key. Dropping a missing key is not an error.
func (c *Client) Forget(ctx context.Context, key string) (err error) {
	if c.closed.Load() {
		return database.ErrClientClosed
	}
	start := time.Now()
	var removed int64
	defer func() {
		c.observe(ctx, "del", start, err, removed, nil)
	}()

	removed, err = c.rdb.Del(ctx, c.Key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// observe reports the key namespace only. Keys can be session tokens.
func (c *Client) observe(ctx context.Context, op string, start time.Time, err error, size int64, metadata map[string]interface{}) {
	database.Observe(ctx, c.observer, Component, op, c.cfg.KeyPrefix+"*", start, err, size, metadata)
}
