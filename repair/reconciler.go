package repair

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"
)

// Job is one queued corrective write: drop the listed contact ids from the
// task's assignees.
type Job struct {
	UserID     string   `json:"userId"`
	TaskID     string   `json:"taskId"`
	ContactIDs []string `json:"contactIds"`
}

// Reconciler accepts dangling-reference reports from the render layer.
// Reporting is best effort: a failed dedupe check or enqueue is logged and
// retried naturally on the next render.
type Reconciler struct {
	dedupe *Deduper
	queue  Queue
}

// NewReconciler creates a reconciler over the given dedupe store and queue.
func NewReconciler(dedupe *Deduper, queue Queue) *Reconciler {
	return &Reconciler{dedupe: dedupe, queue: queue}
}

// Report enqueues a repair job for the contact ids on the task that did not
// resolve, skipping ids already reported within the dedupe window.
func (r *Reconciler) Report(ctx context.Context, userID, taskID string, contactIDs []string) {
	if r == nil || len(contactIDs) == 0 {
		return
	}
	fresh := make([]string, 0, len(contactIDs))
	for _, id := range contactIDs {
		added, err := r.dedupe.Add(ctx, userID, taskID, id)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{"user": userID, "task": taskID}).Error("repair dedupe")
			continue
		}
		if added {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return
	}
	payload, err := json.Marshal(Job{UserID: userID, TaskID: taskID, ContactIDs: fresh})
	if err != nil {
		log.WithError(err).Error("marshal repair job")
		return
	}
	if err := r.queue.Enqueue(ctx, string(payload)); err != nil {
		log.WithError(err).WithFields(log.Fields{"user": userID, "task": taskID}).Error("enqueue repair job")
	}
}
