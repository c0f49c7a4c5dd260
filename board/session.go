// Package board holds the per-user screen view-models. A Session owns the
// live collection caches, the mutation coordinator, the form selection and
// the notification center for one signed-in user; it is constructed when
// the user's first stream connects and disposed when the last one goes.
package board

import (
	"context"
	"encoding/json"
	"time"

	"taskboard/auth"
	"taskboard/domain"
	"taskboard/live"
	"taskboard/notify"
	"taskboard/repair"
	"taskboard/store"
)

var (
	tasksKey    = live.Key{Collection: "tasks", Purpose: "board"}
	contactsKey = live.Key{Collection: "contacts", Purpose: "list"}
)

// Session is the live view-model state for one user.
type Session struct {
	user       auth.User
	gw         *store.Gateway
	coord      *live.Coordinator
	tasks      *live.Collection[domain.Task]
	contacts   *live.Collection[domain.Contact]
	selection  *live.Selection
	notices    *notify.Center
	reconciler *repair.Reconciler
	updates    *broker
	now        func() time.Time
}

type gatewaySource struct {
	gw *store.Gateway
}

func (s gatewaySource) Subscribe(ctx context.Context, path string, h store.Handler) (live.Handle, error) {
	return s.gw.Subscribe(ctx, path, h)
}

// NewSession wires the view-model for user. reconciler may be nil, which
// disables reference healing.
func NewSession(user auth.User, gw *store.Gateway, reconciler *repair.Reconciler) *Session {
	notices := notify.NewCenter(notify.DefaultTTL)
	s := &Session{
		user:       user,
		gw:         gw,
		coord:      live.NewCoordinator(gatewaySource{gw: gw}, notices),
		tasks:      live.NewCollection(decodeTask, taskLess),
		contacts:   live.NewCollection(decodeContact, contactLess),
		selection:  live.NewSelection(),
		notices:    notices,
		reconciler: reconciler,
		updates:    newBroker(),
		now:        time.Now,
	}
	s.tasks.OnChange(s.updates.notify)
	s.contacts.OnChange(s.updates.notify)
	s.selection.OnChange(s.updates.notify)
	s.notices.OnChange(func([]notify.Notice) { s.updates.notify() })
	return s
}

func decodeTask(id string, raw json.RawMessage) (domain.Task, error) {
	var t domain.Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.Task{}, err
	}
	t.ID = id
	return t, nil
}

// Tasks sort into status buckets, then by creation order within a bucket.
func taskLess(a, b domain.Task) bool {
	ra, rb := domain.StatusRank(a.Status), domain.StatusRank(b.Status)
	if ra != rb {
		return ra < rb
	}
	if a.Created != b.Created {
		return a.Created < b.Created
	}
	return a.ID < b.ID
}

func decodeContact(id string, raw json.RawMessage) (domain.Contact, error) {
	var c domain.Contact
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.Contact{}, err
	}
	c.ID = id
	return c, nil
}

func contactLess(a, b domain.Contact) bool {
	return domain.NameLess(a.Name, b.Name)
}

// Mount attaches the live subscriptions feeding the caches. The handlers
// fire immediately, so the caches are warm when Mount returns.
func (s *Session) Mount(ctx context.Context) error {
	if err := s.coord.Attach(ctx, tasksKey, "tasks", s.tasks.OnSnapshot); err != nil {
		return err
	}
	if err := s.coord.Attach(ctx, contactsKey, "contacts", s.contacts.OnSnapshot); err != nil {
		s.coord.DetachAll()
		return err
	}
	return nil
}

// Unmount detaches every live subscription.
func (s *Session) Unmount() {
	s.coord.DetachAll()
}

// Selection returns the task form's assignment selection.
func (s *Session) Selection() *live.Selection { return s.selection }

// Notices returns the session's notification center.
func (s *Session) Notices() *notify.Center { return s.notices }

// User returns the session's identity.
func (s *Session) User() auth.User { return s.user }

// SubscribeUpdates returns a coalesced signal channel that fires after
// every cache replacement, selection change or notice transition. Pair
// with UnsubscribeUpdates when the consumer goes away.
func (s *Session) SubscribeUpdates() chan struct{} {
	return s.updates.subscribe()
}

// UnsubscribeUpdates detaches a channel returned by SubscribeUpdates.
func (s *Session) UnsubscribeUpdates(ch chan struct{}) {
	s.updates.unsubscribe(ch)
}
