package live

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskboard/notify"
	"taskboard/store"
)

// Handle is a detachable live subscription.
type Handle interface {
	Stop()
}

// Source produces live subscriptions; satisfied by an adapter over
// store.Gateway.
type Source interface {
	Subscribe(ctx context.Context, path string, h store.Handler) (Handle, error)
}

// Key names one subscription slot: a collection plus what the subscription
// feeds (board cards, a details overlay, a selector list).
type Key struct {
	Collection string
	Purpose    string
}

type attachment struct {
	path    string
	handler store.Handler
	sub     Handle
}

// Coordinator brackets every store mutation with detach and reattach of the
// subscriptions rendering the affected collection, so the view never
// observes a transient intermediate state and a slot never holds two live
// subscriptions at once.
type Coordinator struct {
	source  Source
	notices *notify.Center

	mu   sync.Mutex
	subs map[Key]*attachment
}

// NewCoordinator creates a coordinator over the given subscription source.
// Mutation failures surface as error notices on center.
func NewCoordinator(source Source, center *notify.Center) *Coordinator {
	return &Coordinator{source: source, notices: center, subs: map[Key]*attachment{}}
}

// Attach subscribes handler to path under key, replacing and stopping any
// previous subscription held by that key.
func (c *Coordinator) Attach(ctx context.Context, key Key, path string, handler store.Handler) error {
	c.mu.Lock()
	prev := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if prev != nil && prev.sub != nil {
		prev.sub.Stop()
	}

	sub, err := c.source.Subscribe(ctx, path, handler)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.subs[key] = &attachment{path: path, handler: handler, sub: sub}
	c.mu.Unlock()
	return nil
}

// Detach stops the subscription held by key. No-op when nothing is attached.
func (c *Coordinator) Detach(key Key) {
	c.mu.Lock()
	att := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if att != nil && att.sub != nil {
		att.sub.Stop()
	}
}

// DetachAll stops every held subscription; used on screen unmount.
func (c *Coordinator) DetachAll() {
	c.mu.Lock()
	subs := c.subs
	c.subs = map[Key]*attachment{}
	c.mu.Unlock()
	for _, att := range subs {
		if att.sub != nil {
			att.sub.Stop()
		}
	}
}

// WithExclusiveWrite runs op inside the detach-mutate-reattach bracket for
// key. The subscription is reattached whether op succeeds or fails, so the
// view cannot go permanently stale; reattaching fires the handler with a
// fresh snapshot. op errors are converted to an error notice and returned.
func (c *Coordinator) WithExclusiveWrite(ctx context.Context, key Key, op func(ctx context.Context) error) error {
	c.mu.Lock()
	att := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if att != nil && att.sub != nil {
		att.sub.Stop()
	}

	opErr := op(ctx)

	if att != nil {
		sub, err := c.source.Subscribe(ctx, att.path, att.handler)
		if err != nil {
			// The view for this slot stays frozen until the next Attach.
			log.WithError(err).WithField("path", att.path).Error("reattach subscription")
			if c.notices != nil {
				c.notices.Error("Live updates interrupted.")
			}
		} else {
			c.mu.Lock()
			c.subs[key] = &attachment{path: att.path, handler: att.handler, sub: sub}
			c.mu.Unlock()
		}
	}

	if opErr != nil && c.notices != nil {
		c.notices.Error("Something went wrong. Please try again.")
	}
	return opErr
}
