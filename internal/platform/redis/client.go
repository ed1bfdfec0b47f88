// Package redis connects to the Redis instance renderer notifications are
// published through. Viewers subscribe to one channel per session; this
// package only owns the connection, the channel naming lives with the
// renderer.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mapview/internal/platform/config"
)

// Client is the pub/sub connection handed to the renderer. It satisfies the
// renderer's Publisher and adds a health probe for /health.
type Client struct {
	*redis.Client
}

// New dials Redis with the pool and timeout settings from cfg and pings it
// once. It returns a nil client and no error when cfg.URL is empty, in which
// case notifications stay in-process.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health pings the server. A failure degrades /health but never stops
// transitions, since renderer delivery is fire-and-forget.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health: %w", err)
	}
	return nil
}
