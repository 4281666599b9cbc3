// Package redisstore wraps the Redis operations used to share slider snapshots.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	maintnotifications "github.com/redis/go-redis/v9/maintnotifications"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
)

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.WriteTimeout = d }
}

type Client struct {
	rdb *redis.Client
}

// New connects and pings addr.
func New(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     8,
		MinIdleConns: 1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	observability.ObserveRedisOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Get returns the value at key; ok is false when the key is missing.
func (c *Client) Get(ctx context.Context, key string) (val []byte, ok bool, err error) {
	start := time.Now()
	val, err = c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveRedisOp("get", nil, time.Since(start).Seconds())
		return nil, false, nil
	}
	observability.ObserveRedisOp("get", err, time.Since(start).Seconds())
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %q: %w", key, err)
	}
	return val, true, nil
}

// SetAndPublish stores val under key and announces it on channel in one
// MULTI/EXEC round trip. ttl <= 0 keeps the key without expiry.
func (c *Client) SetAndPublish(ctx context.Context, key, channel string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	start := time.Now()
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, val, ttl)
		if channel != "" {
			p.Publish(ctx, channel, val)
		}
		return nil
	})
	observability.ObserveRedisOp("set_publish", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("redis SET+PUBLISH %q: %w", key, err)
	}
	return nil
}

// Subscribe returns a subscription to channel; callers close it.
func (c *Client) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channel)
}

func (c *Client) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
