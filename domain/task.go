package domain

import "encoding/json"

// Board columns in display order.
const (
	StatusToDo          = "to-do"
	StatusInProgress    = "in-progress"
	StatusAwaitFeedback = "await-feedback"
	StatusDone          = "done"
)

const (
	PriorityUrgent = "urgent"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	CategoryTechnicalTask = "Technical Task"
	CategoryUserStory     = "User Story"
)

// Task represents a single board card.
type Task struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	DueDate     string    `json:"dueDate"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Subtasks    []Subtask `json:"subtasks,omitempty"`
	AssignedTo  []string  `json:"assignedTo,omitempty"`
	Created     int64     `json:"created"`
}

// Subtask is one checklist entry of a task. Identity is the generated id,
// display order is the position in the parent slice.
type Subtask struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// subtaskWire tolerates legacy records where checked was persisted as the
// strings "true"/"false" instead of a bool.
type subtaskWire struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Checked json.RawMessage `json:"checked"`
}

func (s *Subtask) UnmarshalJSON(data []byte) error {
	var w subtaskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.ID = w.ID
	s.Label = w.Label
	s.Checked = string(w.Checked) == "true" || string(w.Checked) == `"true"`
	return nil
}

// ValidStatus reports whether s names a board column.
func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusAwaitFeedback, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityUrgent, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// StatusRank orders statuses by board column. Unknown statuses sort with
// the to-do column, matching how cards with a broken status are displayed.
func StatusRank(status string) int {
	switch status {
	case StatusInProgress:
		return 1
	case StatusAwaitFeedback:
		return 2
	case StatusDone:
		return 3
	default:
		return 0
	}
}

// ApplyDefaults fills the fields a freshly submitted task may omit.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// DoneSubtasks counts the checked entries.
func (t *Task) DoneSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Checked {
			n++
		}
	}
	return n
}
