package domain

import (
	"encoding/json"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	task := Task{Title: "Write release notes"}
	task.ApplyDefaults()
	if task.Status != StatusToDo {
		t.Fatalf("expected default status %q, got %q", StatusToDo, task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("expected default priority %q, got %q", PriorityMedium, task.Priority)
	}

	task = Task{Status: StatusDone, Priority: PriorityLow}
	task.ApplyDefaults()
	if task.Status != StatusDone || task.Priority != PriorityLow {
		t.Fatalf("defaults overwrote explicit values: %+v", task)
	}
}

func TestSubtaskDecodeToleratesStringBool(t *testing.T) {
	raw := `[
		{"id":"a","label":"one","checked":true},
		{"id":"b","label":"two","checked":"true"},
		{"id":"c","label":"three","checked":false},
		{"id":"d","label":"four","checked":"false"},
		{"id":"e","label":"five"}
	]`
	var subs []Subtask
	if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []bool{true, true, false, false, false}
	for i, st := range subs {
		if st.Checked != want[i] {
			t.Errorf("subtask %s: checked = %v, want %v", st.ID, st.Checked, want[i])
		}
	}
}

func TestDoneSubtasks(t *testing.T) {
	task := Task{Subtasks: []Subtask{{Checked: true}, {Checked: false}, {Checked: true}}}
	if got := task.DoneSubtasks(); got != 2 {
		t.Fatalf("DoneSubtasks = %d, want 2", got)
	}
}

func TestStatusRankOrdersColumns(t *testing.T) {
	ordered := []string{StatusToDo, StatusInProgress, StatusAwaitFeedback, StatusDone}
	for i := 1; i < len(ordered); i++ {
		if StatusRank(ordered[i-1]) >= StatusRank(ordered[i]) {
			t.Fatalf("expected %s to rank before %s", ordered[i-1], ordered[i])
		}
	}
	if StatusRank("garbage") != StatusRank(StatusToDo) {
		t.Fatal("unknown status should rank with the to-do column")
	}
}
