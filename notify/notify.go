// Package notify is the transient confirmation/error window: notices are
// pushed, shown to every listener and auto-dismissed after a fixed delay.
package notify

import (
	"sync"
	"time"
)

const (
	KindSuccess = "success"
	KindError   = "error"
)

// DefaultTTL matches the 2 second auto-dismiss of the confirmation window.
const DefaultTTL = 2 * time.Second

// Notice is one transient message.
type Notice struct {
	ID      int    `json:"id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Center fans notices out to listeners and expires them. Nothing here is
// fatal; every error path in the system ends as a Notice.
type Center struct {
	ttl time.Duration

	mu        sync.Mutex
	nextID    int
	active    []Notice
	listeners []func([]Notice)
}

// NewCenter creates a Center with the given auto-dismiss delay; ttl <= 0
// falls back to DefaultTTL.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl}
}

// Success pushes a success notice.
func (c *Center) Success(message string) { c.push(KindSuccess, message) }

// Error pushes an error notice.
func (c *Center) Error(message string) { c.push(KindError, message) }

func (c *Center) push(kind, message string) {
	c.mu.Lock()
	c.nextID++
	n := Notice{ID: c.nextID, Kind: kind, Message: message}
	c.active = append(c.active, n)
	c.mu.Unlock()
	c.broadcast()

	time.AfterFunc(c.ttl, func() { c.dismiss(n.ID) })
}

func (c *Center) dismiss(id int) {
	c.mu.Lock()
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	c.broadcast()
}

func (c *Center) broadcast() {
	c.mu.Lock()
	active := append([]Notice{}, c.active...)
	listeners := append([]func([]Notice){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(active)
	}
}

// Active returns the currently visible notices.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice{}, c.active...)
}

// OnChange registers fn to receive the visible notices after every push
// and dismissal.
func (c *Center) OnChange(fn func([]Notice)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}
