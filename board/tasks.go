package board

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"taskboard/domain"
)

// CreateTask validates the form and appends a new task. Field errors abort
// the submit before any store call; the returned slice is nil when the
// task was created.
func (s *Session) CreateTask(ctx context.Context, form domain.TaskForm) ([]domain.FieldError, error) {
	today := s.now().Format("2006-01-02")
	if errs := domain.CheckTaskForm(form, today); len(errs) > 0 {
		return errs, nil
	}

	assigned := form.AssignedTo
	if assigned == nil {
		assigned = s.selection.IDs()
	}
	task := domain.Task{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
		Category:    form.Category,
		Priority:    form.Priority,
		Subtasks:    withSubtaskIDs(form.Subtasks),
		AssignedTo:  assigned,
		Created:     s.now().UnixMilli(),
	}
	task.ApplyDefaults()
	if !domain.ValidPriority(task.Priority) {
		task.Priority = domain.PriorityMedium
	}

	err := s.coord.WithExclusiveWrite(ctx, tasksKey, func(ctx context.Context) error {
		_, appendErr := s.gw.Append(ctx, "tasks", task)
		return appendErr
	})
	if err != nil {
		return nil, err
	}
	s.selection.Reset()
	s.notices.Success("Task added to board")
	return nil, nil
}

// SaveTask validates the edit form and patches the changed fields of an
// existing task. The id is never part of the patch.
func (s *Session) SaveTask(ctx context.Context, id string, form domain.TaskForm) ([]domain.FieldError, error) {
	today := s.now().Format("2006-01-02")
	if errs := domain.CheckTaskForm(form, today); len(errs) > 0 {
		return errs, nil
	}

	assigned := form.AssignedTo
	if assigned == nil {
		assigned = s.selection.IDs()
	}
	priority := form.Priority
	if !domain.ValidPriority(priority) {
		priority = domain.PriorityMedium
	}
	fields := map[string]any{
		"title":       form.Title,
		"description": form.Description,
		"dueDate":     form.DueDate,
		"category":    form.Category,
		"priority":    priority,
		"subtasks":    withSubtaskIDs(form.Subtasks),
		"assignedTo":  assigned,
	}

	err := s.coord.WithExclusiveWrite(ctx, tasksKey, func(ctx context.Context) error {
		return s.gw.Patch(ctx, "tasks/"+id, fields)
	})
	if err != nil {
		return nil, err
	}
	s.selection.Reset()
	s.notices.Success("Task updated")
	return nil, nil
}

// MoveTask handles a card drop onto another column: a single patch of the
// status field, nothing else touched.
func (s *Session) MoveTask(ctx context.Context, id, status string) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("board: unknown status %q", status)
	}
	return s.coord.WithExclusiveWrite(ctx, tasksKey, func(ctx context.Context) error {
		return s.gw.Patch(ctx, "tasks/"+id, map[string]any{"status": status})
	})
}

// ToggleSubtask flips one checklist entry, addressed by its stable id.
// Read-then-write of the whole subtasks field; last writer wins.
func (s *Session) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	return s.coord.WithExclusiveWrite(ctx, tasksKey, func(ctx context.Context) error {
		snap, err := s.gw.GetOnce(ctx, "tasks/"+taskID)
		if err != nil {
			return err
		}
		raw, ok := snap[taskID]
		if !ok {
			return fmt.Errorf("board: task %s not found", taskID)
		}
		var task domain.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return err
		}
		found := false
		for i := range task.Subtasks {
			if task.Subtasks[i].ID == subtaskID {
				task.Subtasks[i].Checked = !task.Subtasks[i].Checked
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("board: subtask %s not found on task %s", subtaskID, taskID)
		}
		return s.gw.Patch(ctx, "tasks/"+taskID, map[string]any{"subtasks": task.Subtasks})
	})
}

// DeleteTask removes a task. Nothing cascades.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	err := s.coord.WithExclusiveWrite(ctx, tasksKey, func(ctx context.Context) error {
		return s.gw.Delete(ctx, "tasks/"+id)
	})
	if err != nil {
		return err
	}
	s.notices.Success("Task deleted")
	return nil
}

func withSubtaskIDs(subtasks []domain.Subtask) []domain.Subtask {
	out := make([]domain.Subtask, len(subtasks))
	for i, st := range subtasks {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		out[i] = st
	}
	return out
}
