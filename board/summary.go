package board

import "taskboard/domain"

// Summary holds the counters and widgets of the summary screen.
type Summary struct {
	ToDo             int    `json:"toDo"`
	Done             int    `json:"done"`
	Urgent           int    `json:"urgent"`
	Total            int    `json:"total"`
	InProgress       int    `json:"inProgress"`
	AwaitingFeedback int    `json:"awaitingFeedback"`
	UpcomingDeadline string `json:"upcomingDeadline,omitempty"`
	Greeting         string `json:"greeting"`
	Name             string `json:"name,omitempty"`
}

// Summarize computes the summary from the cached tasks. The deadline is the
// nearest due date among urgent tasks; greeting follows the hour of day and
// carries the user's name for non-guest accounts.
func (s *Session) Summarize() Summary {
	tasks := s.tasks.Items()
	sum := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusToDo:
			sum.ToDo++
		case domain.StatusInProgress:
			sum.InProgress++
		case domain.StatusAwaitFeedback:
			sum.AwaitingFeedback++
		case domain.StatusDone:
			sum.Done++
		}
		if t.Priority == domain.PriorityUrgent {
			sum.Urgent++
			if t.DueDate != "" && (sum.UpcomingDeadline == "" || t.DueDate < sum.UpcomingDeadline) {
				sum.UpcomingDeadline = t.DueDate
			}
		}
	}

	switch h := s.now().Hour(); {
	case h < 12:
		sum.Greeting = "Good morning"
	case h < 18:
		sum.Greeting = "Good afternoon"
	default:
		sum.Greeting = "Good evening"
	}
	if !s.user.Guest() && s.user.Name != "" {
		sum.Name = s.user.Name
		sum.Greeting += ","
	}
	return sum
}
