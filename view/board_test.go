package view

import (
	"fmt"
	"strings"
	"testing"

	"taskboard/domain"
)

func lookupFrom(contacts ...domain.Contact) ContactLookup {
	byID := map[string]domain.Contact{}
	for _, c := range contacts {
		byID[c.ID] = c
	}
	return func(id string) (domain.Contact, bool) {
		c, ok := byID[id]
		return c, ok
	}
}

func namedContact(id, name string) domain.Contact {
	c := domain.Contact{ID: id, Name: name, Email: strings.ToLower(id) + "@example.com"}
	c.Derive()
	return c
}

func findByClass(n Node, class string) []Node {
	var out []Node
	if strings.Contains(" "+n.Class+" ", " "+class+" ") {
		out = append(out, n)
	}
	for _, child := range n.Children {
		out = append(out, findByClass(child, class)...)
	}
	return out
}

func TestProgressClassBuckets(t *testing.T) {
	cases := []struct {
		percent int
		want    string
	}{
		{100, "progress-100"},
		{99, "progress-75"},
		{75, "progress-75"},
		{74, "progress-60"},
		{60, "progress-60"},
		{59, "progress-50"},
		{50, "progress-50"},
		{49, "progress-25"},
		{1, "progress-25"},
		{0, "progress-0"},
	}
	for _, tc := range cases {
		if got := ProgressClass(tc.percent); got != tc.want {
			t.Errorf("ProgressClass(%d) = %q, want %q", tc.percent, got, tc.want)
		}
	}
}

func TestProgressPercentRounds(t *testing.T) {
	if got := ProgressPercent(1, 3); got != 33 {
		t.Fatalf("1/3 = %d, want 33", got)
	}
	if got := ProgressPercent(2, 3); got != 67 {
		t.Fatalf("2/3 = %d, want 67", got)
	}
	if got := ProgressPercent(0, 0); got != 0 {
		t.Fatalf("0/0 = %d, want 0", got)
	}
}

func TestTaskCardProgressBar(t *testing.T) {
	task := domain.Task{
		ID:     "t1",
		Title:  "Wire the board",
		Status: domain.StatusToDo,
		Subtasks: []domain.Subtask{
			{ID: "s1", Label: "one", Checked: true},
			{ID: "s2", Label: "two", Checked: false},
		},
	}
	card, _ := TaskCard(task, lookupFrom())
	bars := findByClass(card, "progress-bar")
	if len(bars) != 1 {
		t.Fatalf("expected one progress bar, got %d", len(bars))
	}
	if !strings.Contains(bars[0].Class, "progress-50") {
		t.Fatalf("1/2 done bar class %q, want progress-50", bars[0].Class)
	}
	counts := findByClass(card, "task-count")
	if len(counts) != 1 || counts[0].Text != "1/2" {
		t.Fatalf("count label %+v, want 1/2", counts)
	}

	task.Subtasks = nil
	card, _ = TaskCard(task, lookupFrom())
	if len(findByClass(card, "task-progress")) != 0 {
		t.Fatal("progress bar rendered for a task without subtasks")
	}

	task.Subtasks = []domain.Subtask{{ID: "s1", Label: "only", Checked: true}}
	card, _ = TaskCard(task, lookupFrom())
	bars = findByClass(card, "progress-bar")
	if len(bars) != 1 || !strings.Contains(bars[0].Class, "progress-100") {
		t.Fatalf("1/1 done bar %+v, want progress-100", bars)
	}
}

func TestTaskCardCategoryColors(t *testing.T) {
	cases := []struct {
		category string
		style    string
		label    string
	}{
		{domain.CategoryTechnicalTask, "background:#00c7a3", "Technical Task"},
		{domain.CategoryUserStory, "background:#0038ff", "User Story"},
		{"Chore", "background:transparent", ""},
	}
	for _, tc := range cases {
		card, _ := TaskCard(domain.Task{ID: "t", Category: tc.category}, lookupFrom())
		labels := findByClass(card, "task-label")
		if len(labels) != 1 {
			t.Fatalf("%s: expected one label, got %d", tc.category, len(labels))
		}
		if labels[0].Attrs["style"] != tc.style {
			t.Errorf("%s: style %q, want %q", tc.category, labels[0].Attrs["style"], tc.style)
		}
		if labels[0].Text != tc.label {
			t.Errorf("%s: text %q, want %q", tc.category, labels[0].Text, tc.label)
		}
	}
}

func TestTaskCardBadgeOverflow(t *testing.T) {
	var contacts []domain.Contact
	var ids []string
	for i := 0; i < 5; i++ {
		c := namedContact(fmt.Sprintf("c%d", i), fmt.Sprintf("Contact %c Person", 'A'+i))
		contacts = append(contacts, c)
		ids = append(ids, c.ID)
	}
	card, missing := TaskCard(domain.Task{ID: "t1", AssignedTo: ids}, lookupFrom(contacts...))
	if len(missing) != 0 {
		t.Fatalf("unexpected missing ids %v", missing)
	}
	badges := findByClass(card, "initials-badge")
	if len(badges) != 4 {
		t.Fatalf("expected 3 initials badges plus overflow, got %d", len(badges))
	}
	last := badges[3]
	if last.Text != "+2" {
		t.Fatalf("overflow badge text %q, want +2", last.Text)
	}
	if last.Attrs["style"] != "background-color:"+overflowBadgeColor {
		t.Fatalf("overflow badge style %q", last.Attrs["style"])
	}
}

func TestTaskCardBadgesSortedByName(t *testing.T) {
	anna := namedContact("c2", "Anna Young")
	zoe := namedContact("c1", "Zoe Abbott")
	card, _ := TaskCard(domain.Task{ID: "t1", AssignedTo: []string{"c1", "c2"}}, lookupFrom(anna, zoe))
	badges := findByClass(card, "initials-badge")
	if len(badges) != 2 {
		t.Fatalf("expected 2 badges, got %d", len(badges))
	}
	if badges[0].Text != "AY" || badges[1].Text != "ZA" {
		t.Fatalf("badge order %q, %q; want AY, ZA", badges[0].Text, badges[1].Text)
	}
}

func TestRenderBoardColumnsAndPlaceholders(t *testing.T) {
	tasks := []domain.Task{
		{ID: "t1", Title: "First", Status: domain.StatusToDo},
		{ID: "t2", Title: "Second", Status: domain.StatusDone},
		{ID: "t3", Title: "Odd", Status: "archived"},
	}
	board, _ := RenderBoard(tasks, lookupFrom(), "")
	if len(board.Children) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(board.Children))
	}

	todo := board.Children[0]
	if got := len(findByClass(todo, "task-card")); got != 2 {
		t.Fatalf("to-do column has %d cards, want 2 (own plus unknown status)", got)
	}
	for _, col := range board.Children[1:3] {
		ph := findByClass(col, "no-tasks-placeholder")
		if len(ph) != 1 {
			t.Fatalf("empty column %q missing placeholder", col.Class)
		}
	}
	if ph := findByClass(board.Children[1], "no-tasks-placeholder"); ph[0].Text != "No tasks In progress" {
		t.Fatalf("placeholder text %q", ph[0].Text)
	}
}

func TestRenderBoardSearchFiltersTitleAndDescription(t *testing.T) {
	tasks := []domain.Task{
		{ID: "t1", Title: "Design login page", Status: domain.StatusToDo},
		{ID: "t2", Title: "Backend", Description: "implement LOGIN route", Status: domain.StatusToDo},
		{ID: "t3", Title: "Unrelated", Status: domain.StatusToDo},
	}
	board, _ := RenderBoard(tasks, lookupFrom(), "login")
	if got := len(findByClass(board, "task-card")); got != 2 {
		t.Fatalf("search matched %d cards, want 2", got)
	}
}

func TestRenderBoardReportsDanglingAssignees(t *testing.T) {
	kept := namedContact("c1", "Kept Contact")
	tasks := []domain.Task{
		{ID: "t1", Title: "Orphaned", Status: domain.StatusToDo, AssignedTo: []string{"c1", "gone-1", "gone-2"}},
	}
	board, dangling := RenderBoard(tasks, lookupFrom(kept), "")
	if len(dangling) != 1 {
		t.Fatalf("dangling reports %+v, want one", dangling)
	}
	d := dangling[0]
	if d.TaskID != "t1" || len(d.ContactIDs) != 2 {
		t.Fatalf("dangling %+v", d)
	}
	badges := findByClass(board, "initials-badge")
	if len(badges) != 1 || badges[0].Text != kept.Initials {
		t.Fatalf("expected only the resolvable badge, got %+v", badges)
	}
}
