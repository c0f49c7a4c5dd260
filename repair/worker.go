package repair

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/domain"
	"taskboard/store"
)

// Worker drains the repair queue and applies corrective patches. Every step
// is idempotent: a task or contact deleted in the meantime makes the job a
// no-op.
type Worker struct {
	queue   Queue
	backend store.Backend
	bus     *store.Bus
	idle    time.Duration
}

// NewWorker creates a worker over the given queue and storage.
func NewWorker(queue Queue, backend store.Backend, bus *store.Bus) *Worker {
	return &Worker{queue: queue, backend: backend, bus: bus, idle: time.Second}
}

// Run processes jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("dequeue repair job")
			sleep(ctx, w.idle)
			continue
		}
		if msg == nil {
			sleep(ctx, w.idle)
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(msg.Text), &job); err != nil {
			log.WithError(err).Error("parse repair job")
		} else if err := w.Apply(ctx, job); err != nil {
			log.WithError(err).WithFields(log.Fields{"user": job.UserID, "task": job.TaskID}).Error("apply repair job")
			// Leave the message for redelivery.
			continue
		}
		if err := w.queue.Delete(ctx, msg); err != nil {
			log.WithError(err).Error("delete repair message")
		}
	}
}

// Apply drops the job's contact ids from the task's assignee list when the
// contact really is gone. Ids that resolve again (contact re-created, or a
// stale report) are kept.
func (w *Worker) Apply(ctx context.Context, job Job) error {
	gw := store.ForUser(w.backend, w.bus, job.UserID)
	snap, err := gw.GetOnce(ctx, "tasks/"+job.TaskID)
	if err != nil {
		return err
	}
	raw, ok := snap[job.TaskID]
	if !ok {
		return nil
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return err
	}

	gone := map[string]bool{}
	for _, id := range job.ContactIDs {
		contact, err := gw.GetOnce(ctx, "contacts/"+id)
		if err != nil {
			return err
		}
		if len(contact) == 0 {
			gone[id] = true
		}
	}
	if len(gone) == 0 {
		return nil
	}

	kept := make([]string, 0, len(task.AssignedTo))
	for _, id := range task.AssignedTo {
		if !gone[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(task.AssignedTo) {
		return nil
	}
	return gw.Patch(ctx, "tasks/"+job.TaskID, map[string]any{"assignedTo": kept})
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
