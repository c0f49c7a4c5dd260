package board

import (
	"context"
	"sync"

	"taskboard/auth"
	"taskboard/repair"
	"taskboard/store"
)

// Hub hands out one mounted Session per user, refcounted so the session
// and its subscriptions live exactly as long as something uses them.
type Hub struct {
	backend    store.Backend
	bus        *store.Bus
	reconciler *repair.Reconciler

	mu       sync.Mutex
	sessions map[string]*hubEntry
}

type hubEntry struct {
	sess *Session
	refs int
}

// NewHub creates a Hub over the given storage. reconciler may be nil.
func NewHub(backend store.Backend, bus *store.Bus, reconciler *repair.Reconciler) *Hub {
	return &Hub{backend: backend, bus: bus, reconciler: reconciler, sessions: map[string]*hubEntry{}}
}

// Acquire returns the user's session, mounting a new one on first use.
// Every Acquire must be paired with a Release.
func (h *Hub) Acquire(ctx context.Context, user auth.User) (*Session, error) {
	h.mu.Lock()
	if entry, ok := h.sessions[user.ID]; ok {
		entry.refs++
		h.mu.Unlock()
		return entry.sess, nil
	}
	h.mu.Unlock()

	gw := store.ForUser(h.backend, h.bus, user.ID)
	sess := NewSession(user, gw, h.reconciler)
	if err := sess.Mount(ctx); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if entry, ok := h.sessions[user.ID]; ok {
		// Lost the race against a concurrent first Acquire.
		sess.Unmount()
		entry.refs++
		return entry.sess, nil
	}
	h.sessions[user.ID] = &hubEntry{sess: sess, refs: 1}
	return sess, nil
}

// Release drops one reference; the session unmounts when the last holder
// releases it.
func (h *Hub) Release(userID string) {
	h.mu.Lock()
	entry, ok := h.sessions[userID]
	if ok {
		entry.refs--
		if entry.refs <= 0 {
			delete(h.sessions, userID)
		} else {
			entry = nil
		}
	}
	h.mu.Unlock()
	if ok && entry != nil {
		entry.sess.Unmount()
	}
}
