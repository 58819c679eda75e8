package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for the refresh pipeline. Multiple engine
// instances pointed at the same backend share one refresh queue, so a settled
// move on any of them gets reconfirmed exactly once.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

const refreshQueueKey = "relocator:refresh_queue"

func lockKey(site string) string {
	return fmt.Sprintf("relocator:refreshing:%s", site)
}

// PushRefresh queues a site for refetch at the given due time. Re-pushing a
// site already queued keeps the earlier due time.
func (c *Client) PushRefresh(ctx context.Context, site string, due time.Time) error {
	z := redis.Z{Score: float64(due.Unix()), Member: site}
	if err := c.rdb.ZAddLT(ctx, refreshQueueKey, z).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

// PopDue removes and returns all sites whose refresh is due at or before now.
func (c *Client) PopDue(ctx context.Context, now time.Time) ([]string, error) {
	max := fmt.Sprintf("%d", now.Unix())
	sites, err := c.rdb.ZRangeByScore(ctx, refreshQueueKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore failed: %w", err)
	}
	if len(sites) == 0 {
		return nil, nil
	}

	members := make([]interface{}, len(sites))
	for i, s := range sites {
		members[i] = s
	}
	if err := c.rdb.ZRem(ctx, refreshQueueKey, members...).Err(); err != nil {
		return nil, fmt.Errorf("zrem failed: %w", err)
	}
	return sites, nil
}

// Remove drops a queued refresh for a site, used when a forced resync makes
// the scheduled one redundant.
func (c *Client) Remove(ctx context.Context, site string) error {
	return c.rdb.ZRem(ctx, refreshQueueKey, site).Err()
}

// AcquireLock attempts to acquire the refresh lock for a site, so only one
// engine instance refetches it.
func (c *Client) AcquireLock(ctx context.Context, site string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, lockKey(site), "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// ReleaseLock releases the refresh lock for a site.
func (c *Client) ReleaseLock(ctx context.Context, site string) error {
	return c.rdb.Del(ctx, lockKey(site)).Err()
}
