// Package live holds the pieces that keep local view state consistent with
// the push-based store: a per-collection cache replaced wholesale on every
// snapshot, a coordinator enforcing the detach-write-reattach bracket
// around mutations, and ephemeral selection state.
package live

import (
	"encoding/json"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskboard/store"
)

// Collection mirrors one remote collection. Every snapshot replaces the
// whole cache; there is no incremental merge. Listeners are notified
// exactly once per snapshot arrival.
type Collection[T any] struct {
	decode func(id string, raw json.RawMessage) (T, error)
	less   func(a, b T) bool

	mu        sync.Mutex
	items     []T
	byID      map[string]T
	listeners []func()
}

// NewCollection creates a cache. decode turns one raw entity into a record;
// less is the display comparator applied after every replacement.
func NewCollection[T any](decode func(id string, raw json.RawMessage) (T, error), less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{
		decode: decode,
		less:   less,
		byID:   map[string]T{},
	}
}

// OnSnapshot replaces the cache with the pushed value. Entities that fail
// to decode are dropped from the view, not fatal: the next good snapshot
// restores them.
func (c *Collection[T]) OnSnapshot(snap store.Snapshot) {
	items := make([]T, 0, len(snap))
	byID := make(map[string]T, len(snap))
	for id, raw := range snap {
		rec, err := c.decode(id, raw)
		if err != nil {
			log.WithError(err).WithField("id", id).Error("decode snapshot entity")
			continue
		}
		items = append(items, rec)
		byID[id] = rec
	}
	sort.SliceStable(items, func(i, j int) bool { return c.less(items[i], items[j]) })

	c.mu.Lock()
	c.items = items
	c.byID = byID
	listeners := append([]func(){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Items returns the cached records in display order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T{}, c.items...)
}

// Get looks up one record by id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.byID[id]
	return rec, ok
}

// Len reports the number of cached records.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// OnChange registers fn to run after every snapshot replacement.
func (c *Collection[T]) OnChange(fn func()) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}
