package view

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"taskboard/domain"
)

// badgeCap bounds how many initials badges a card or selection preview
// shows before collapsing the rest into a "+N" badge.
const badgeCap = 3

const overflowBadgeColor = "rgb(135, 135, 135)"

// ContactLookup resolves a contact id against the live contacts cache.
type ContactLookup func(id string) (domain.Contact, bool)

// Dangling reports assigned contact ids on a task that no longer resolve.
type Dangling struct {
	TaskID     string
	ContactIDs []string
}

type column struct {
	status      string
	class       string
	placeholder string
}

var columns = []column{
	{domain.StatusToDo, "to-do-tasks", "No tasks To do"},
	{domain.StatusInProgress, "in-progress-tasks", "No tasks In progress"},
	{domain.StatusAwaitFeedback, "await-tasks", "No tasks Await feedback"},
	{domain.StatusDone, "done-tasks", "No tasks Done"},
}

// RenderBoard projects the task list into the four board columns. search
// filters cards by a case-insensitive match on title or description. The
// returned dangling list names every assigned contact id that did not
// resolve; callers feed it to the reconciler.
func RenderBoard(tasks []domain.Task, lookup ContactLookup, search string) (Node, []Dangling) {
	var dangling []Dangling
	board := Node{Tag: "div", Class: "board"}
	search = strings.ToLower(strings.TrimSpace(search))
	for _, col := range columns {
		colNode := Node{Tag: "div", Class: "task-column " + col.class, Attrs: map[string]string{"data-status": col.status}}
		for _, t := range tasks {
			if t.Status != col.status && !(col.status == domain.StatusToDo && !domain.ValidStatus(t.Status)) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(t.Title), search) &&
				!strings.Contains(strings.ToLower(t.Description), search) {
				continue
			}
			card, missing := TaskCard(t, lookup)
			colNode.Children = append(colNode.Children, card)
			if len(missing) > 0 {
				dangling = append(dangling, Dangling{TaskID: t.ID, ContactIDs: missing})
			}
		}
		if len(colNode.Children) == 0 {
			colNode.Children = append(colNode.Children, text("div", "no-tasks-placeholder", col.placeholder))
		}
		board.Children = append(board.Children, colNode)
	}
	return board, dangling
}

// TaskCard renders one draggable card. The second result lists assigned
// contact ids that no longer resolve; they are dropped from the rendered
// badges.
func TaskCard(t domain.Task, lookup ContactLookup) (Node, []string) {
	card := Node{
		Tag:   "div",
		Class: "task-card",
		Attrs: map[string]string{"draggable": "true", "data-task-id": t.ID},
	}
	card.Children = append(card.Children, categoryLabel(t.Category))
	card.Children = append(card.Children, text("div", "task-title", t.Title))
	card.Children = append(card.Children, text("div", "task-desc", t.Description))
	if bar, ok := progressBar(t); ok {
		card.Children = append(card.Children, bar)
	}
	badges, missing := assignedBadges(t.AssignedTo, lookup)
	footer := el("div", "task-footer", badges, priorityIcon(t.Priority))
	card.Children = append(card.Children, footer)
	return card, missing
}

func categoryLabel(category string) Node {
	label := Node{Tag: "div", Class: "task-label"}
	switch category {
	case domain.CategoryTechnicalTask:
		label.Text = domain.CategoryTechnicalTask
		label.Attrs = map[string]string{"style": "background:#00c7a3"}
	case domain.CategoryUserStory:
		label.Text = domain.CategoryUserStory
		label.Attrs = map[string]string{"style": "background:#0038ff"}
	default:
		// Unknown category renders as an empty transparent label, not an error.
		label.Attrs = map[string]string{"style": "background:transparent"}
	}
	return label
}

// ProgressClass buckets a completion percentage into the fixed visual
// weights of the progress bar.
func ProgressClass(percent int) string {
	switch {
	case percent == 100:
		return "progress-100"
	case percent >= 75:
		return "progress-75"
	case percent >= 60:
		return "progress-60"
	case percent >= 50:
		return "progress-50"
	case percent > 0:
		return "progress-25"
	default:
		return "progress-0"
	}
}

// ProgressPercent computes the rounded completion percentage.
func ProgressPercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func progressBar(t domain.Task) (Node, bool) {
	total := len(t.Subtasks)
	if total == 0 {
		return Node{}, false
	}
	done := t.DoneSubtasks()
	percent := ProgressPercent(done, total)
	return el("div", "task-progress",
		Node{Tag: "div", Class: "progress-bar " + ProgressClass(percent)},
		text("div", "task-count", fmt.Sprintf("%d/%d", done, total)),
	), true
}

// assignedBadges resolves and sorts the assigned contacts by name, renders
// at most badgeCap initials badges plus an overflow badge, and reports the
// ids that failed to resolve.
func assignedBadges(assigned []string, lookup ContactLookup) (Node, []string) {
	wrap := Node{Tag: "div", Class: "assigned-initials"}
	if lookup == nil {
		return wrap, nil
	}
	var contacts []domain.Contact
	var missing []string
	for _, id := range assigned {
		c, ok := lookup(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		contacts = append(contacts, c)
	}
	sort.SliceStable(contacts, func(i, j int) bool { return domain.NameLess(contacts[i].Name, contacts[j].Name) })

	for i, c := range contacts {
		if i == badgeCap {
			break
		}
		wrap.Children = append(wrap.Children, Node{
			Tag:   "span",
			Class: "initials-badge",
			Text:  c.Initials,
			Attrs: map[string]string{"style": "background-color:" + c.IconColor},
		})
	}
	if extra := len(contacts) - badgeCap; extra > 0 {
		wrap.Children = append(wrap.Children, Node{
			Tag:   "span",
			Class: "initials-badge initials-extra",
			Text:  fmt.Sprintf("+%d", extra),
			Attrs: map[string]string{"style": "background-color:" + overflowBadgeColor},
		})
	}
	return wrap, missing
}

func priorityIcon(priority string) Node {
	if !domain.ValidPriority(priority) {
		return Node{Tag: "span", Class: "priority-icon"}
	}
	return Node{
		Tag:   "img",
		Class: "priority-icon",
		Attrs: map[string]string{
			"src": "assets/img/" + priority + "-btn-icon.png",
			"alt": strings.ToUpper(priority[:1]) + priority[1:],
		},
	}
}
