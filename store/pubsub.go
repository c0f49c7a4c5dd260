package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Bus carries change notifications between writers and subscribers through
// redis pub/sub. Notifications are content-free: subscribers refetch the
// full snapshot on every message, so coalescing is harmless.
type Bus struct {
	rc *redis.Client
}

// NewBus creates a Bus on the given redis client.
func NewBus(rc *redis.Client) *Bus {
	return &Bus{rc: rc}
}

func channelName(userID, collection string) string {
	return "updates:" + userID + ":" + collection
}

// Notify publishes a change notification for one user's collection.
// Publish failures are logged, not returned: the write already succeeded
// and subscribers recover on the next notification.
func (b *Bus) Notify(ctx context.Context, userID, collection string) {
	if err := b.rc.Publish(ctx, channelName(userID, collection), "1").Err(); err != nil {
		log.WithError(err).WithFields(log.Fields{"user": userID, "collection": collection}).Error("publish update")
	}
}

// Listen subscribes to one user's collection channel. The returned channel
// receives a coalesced signal per notification and is closed when the
// context ends or the returned stop function runs.
func (b *Bus) Listen(ctx context.Context, userID, collection string) (<-chan struct{}, func()) {
	sub := b.rc.Subscribe(ctx, channelName(userID, collection))
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, func() { _ = sub.Close() }
}
