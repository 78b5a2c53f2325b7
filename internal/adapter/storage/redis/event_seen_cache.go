package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventSeenCache implements ports.EventSeenCache using Redis SET NX.
// It is a lossy fast path over the webhook_events table: a hit means the
// event id was definitely processed, a miss means nothing.
type EventSeenCache struct {
	client *goredis.Client
	prefix string
}

// NewEventSeenCache creates a new Redis-backed webhook dedup cache.
func NewEventSeenCache(client *goredis.Client) *EventSeenCache {
	return &EventSeenCache{
		client: client,
		prefix: "webhook:seen:",
	}
}

// Seen reports whether the event id has a cache entry.
func (c *EventSeenCache) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis event seen check: %w", err)
	}
	return n == 1, nil
}

// MarkSeen records the event id with a TTL. NX keeps the first write's
// expiry when concurrent deliveries race.
func (c *EventSeenCache) MarkSeen(ctx context.Context, eventID string, ttl time.Duration) error {
	err := c.client.SetArgs(ctx, c.prefix+eventID, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Err()
	if err != nil && err != goredis.Nil {
		return fmt.Errorf("redis event mark seen: %w", err)
	}
	return nil
}
