package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

const revokedKeyPrefix = "revoked:"

// Revoke records a token jti until its natural expiry. Keys expire with the
// token, so the set never needs sweeping.
func (c *Client) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired; nothing to remember
		return nil
	}

	return c.redisdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a jti has been revoked by logout.
func (c *Client) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.redisdb.Exists(ctx, revokedKeyPrefix+jti).Result()

	if err != nil {
		return false, err
	}

	return n > 0, nil
}
