// Package repair heals dangling contact references on tasks: the render
// layer reports ids that failed to resolve, reports are deduplicated and
// queued, and a worker applies the corrective patch.
package repair

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records recently reported repairs in redis so rapid re-renders
// of the same stale reference never enqueue redundant corrective writes.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduper creates a deduper using the provided redis client and TTL.
func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{client: client, ttl: ttl}
}

func (d *Deduper) key(userID, taskID, contactID string) string {
	return fmt.Sprintf("repair:%s:%s:%s", userID, taskID, contactID)
}

// Add records one (task, contact) repair and returns true when it was
// newly recorded within the TTL window.
func (d *Deduper) Add(ctx context.Context, userID, taskID, contactID string) (bool, error) {
	return d.client.SetNX(ctx, d.key(userID, taskID, contactID), 1, d.ttl).Result()
}
