package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session secrets live as long as the session row; 30 days matches the
// auth collaborator's session lifetime.
const sessionSecretTTL = 30 * 24 * time.Hour

type Client struct {
	cli *redis.Client
}

// New connects and pings the Redis given by redisURL
// (redis://host:port/db).
func New(ctx context.Context, redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error { return c.cli.Close() }

func secretKey(sessionID string) string { return "session:secret:" + sessionID }

func (c *Client) SetSessionSecret(ctx context.Context, sessionID, secret string) error {
	return c.cli.Set(ctx, secretKey(sessionID), secret, sessionSecretTTL).Err()
}

// GetSessionSecret returns "" (no error) when the secret is missing or
// expired; the middleware treats that as unauthorized.
func (c *Client) GetSessionSecret(ctx context.Context, sessionID string) (string, error) {
	v, err := c.cli.Get(ctx, secretKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (c *Client) DeleteSessionSecret(ctx context.Context, sessionID string) error {
	return c.cli.Del(ctx, secretKey(sessionID)).Err()
}
