package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"visitgate/internal/platform/config"
)

// defaultPingTimeout bounds the startup ping when no dial timeout is set.
const defaultPingTimeout = 3 * time.Second

// Client is the shared facility-configuration connection. It embeds the
// go-redis client so stores take *Client.Client directly.
type Client struct {
	*redis.Client
}

// New connects to cfg.URL and pings it once. An empty URL means Redis is not
// configured and yields a nil client.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	c := &Client{Client: redis.NewClient(opts)}

	pingTimeout := opts.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Health(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Health pings Redis; it backs the ops router's readiness check.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unhealthy: %w", err)
	}
	return nil
}
