package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Snapshot is the full value of a collection at one point in time, keyed by
// entity id. A nil or empty snapshot means the collection is empty.
type Snapshot map[string]json.RawMessage

// Handler receives snapshots. It is invoked once immediately on subscribe
// and again after every change notification for the subscribed path.
type Handler func(Snapshot)

// ErrNotFound is returned when a path addresses an entity that does not exist.
var ErrNotFound = errors.New("store: not found")

// Backend is the entity-level persistence a Gateway runs over.
type Backend interface {
	List(ctx context.Context, userID, collection string) (Snapshot, error)
	Get(ctx context.Context, userID, collection, id string) (json.RawMessage, error)
	Put(ctx context.Context, userID, collection, id string, doc json.RawMessage) error
	Merge(ctx context.Context, userID, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, userID, collection, id string) error
}

// Gateway exposes one user's partition of the store as a hierarchical
// path-addressed key-value store with push subscriptions. Paths are either
// a collection ("tasks") or an entity ("tasks/{id}").
type Gateway struct {
	backend Backend
	bus     *Bus
	user    string
}

// ForUser creates a Gateway scoped to the given user's partition.
func ForUser(backend Backend, bus *Bus, userID string) *Gateway {
	return &Gateway{backend: backend, bus: bus, user: userID}
}

// User returns the partition this gateway is scoped to.
func (g *Gateway) User() string { return g.user }

func splitPath(path string) (collection, id string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], "", nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("store: invalid path %q", path)
}

func (g *Gateway) snapshotAt(ctx context.Context, collection, id string) (Snapshot, error) {
	if id == "" {
		return g.backend.List(ctx, g.user, collection)
	}
	doc, err := g.backend.Get(ctx, g.user, collection, id)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	return Snapshot{id: doc}, nil
}

// GetOnce returns the current snapshot at path without subscribing.
func (g *Gateway) GetOnce(ctx context.Context, path string) (Snapshot, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	return g.snapshotAt(ctx, collection, id)
}

// Write replaces the entire entity at path.
func (g *Gateway) Write(ctx context.Context, path string, value any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("store: write needs an entity path, got %q", path)
	}
	doc, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := g.backend.Put(ctx, g.user, collection, id, doc); err != nil {
		return err
	}
	g.bus.Notify(ctx, g.user, collection)
	return nil
}

// Patch merges the named fields into the entity at path without touching
// its sibling fields.
func (g *Gateway) Patch(ctx context.Context, path string, fields map[string]any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("store: patch needs an entity path, got %q", path)
	}
	if err := g.backend.Merge(ctx, g.user, collection, id, fields); err != nil {
		return err
	}
	g.bus.Notify(ctx, g.user, collection)
	return nil
}

// Append stores value under a freshly generated id in the collection at
// path and returns the id.
func (g *Gateway) Append(ctx context.Context, path string, value any) (string, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return "", err
	}
	if id != "" {
		return "", fmt.Errorf("store: append needs a collection path, got %q", path)
	}
	doc, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	newID := uuid.NewString()
	if err := g.backend.Put(ctx, g.user, collection, newID, doc); err != nil {
		return "", err
	}
	g.bus.Notify(ctx, g.user, collection)
	return newID, nil
}

// Delete removes the entity at path. Deleting an already absent entity is
// not an error.
func (g *Gateway) Delete(ctx context.Context, path string) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("store: delete needs an entity path, got %q", path)
	}
	if err := g.backend.Delete(ctx, g.user, collection, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	g.bus.Notify(ctx, g.user, collection)
	return nil
}

// Subscription is a live handle returned by Subscribe. Stop is idempotent;
// a notification already in flight when Stop is called may still be
// delivered.
type Subscription struct {
	once sync.Once
	stop func()
}

// Stop detaches the subscription.
func (s *Subscription) Stop() {
	s.once.Do(s.stop)
}

// Subscribe registers h for the path. It fires h synchronously with the
// current snapshot before returning, then refetches and fires again after
// every change notification for the path's collection.
func (g *Gateway) Subscribe(ctx context.Context, path string, h Handler) (*Subscription, error) {
	collection, id, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	snap, err := g.snapshotAt(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	h(snap)

	loopCtx, cancel := context.WithCancel(context.Background())
	updates, closeListen := g.bus.Listen(loopCtx, g.user, collection)
	go func() {
		for range updates {
			snap, err := g.snapshotAt(loopCtx, collection, id)
			if err != nil {
				if loopCtx.Err() == nil {
					log.WithError(err).WithFields(log.Fields{"user": g.user, "path": path}).Error("refetch snapshot")
				}
				continue
			}
			h(snap)
		}
	}()
	return &Subscription{stop: func() {
		cancel()
		closeListen()
	}}, nil
}
