package domain

import "testing"

func TestStatusFromVerify(t *testing.T) {
	if got := StatusFromVerify(true); got != TaskItemStatusSuccess {
		t.Errorf("expected success, got %s", got)
	}
	if got := StatusFromVerify(false); got != TaskItemStatusError {
		t.Errorf("expected error, got %s", got)
	}
}

func TestTaskItemStatus_IsTerminal(t *testing.T) {
	if TaskItemStatusPending.IsTerminal() {
		t.Error("pending should not be terminal")
	}
	if !TaskItemStatusSuccess.IsTerminal() || !TaskItemStatusError.IsTerminal() {
		t.Error("success and error should be terminal")
	}
}

func TestParseTaskItemStatus(t *testing.T) {
	cases := map[string]TaskItemStatus{
		"success": TaskItemStatusSuccess,
		"error":   TaskItemStatusError,
		"pending": TaskItemStatusPending,
		"unknown": TaskItemStatusPending,
	}
	for in, want := range cases {
		if got := ParseTaskItemStatus(in); got != want {
			t.Errorf("ParseTaskItemStatus(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestTask_HasCapacity(t *testing.T) {
	task := NewTask[string, int]("group", "name", "", false)
	if !task.HasCapacity() {
		t.Fatal("empty chunk should have capacity")
	}

	task.Items = make([]TaskItem[string, int], ChunkCapacity-1)
	if !task.HasCapacity() {
		t.Error("chunk with 199 items should have capacity")
	}

	task.Items = append(task.Items, TaskItem[string, int]{})
	if task.HasCapacity() {
		t.Error("chunk with 200 items should be full")
	}
}

func TestNewTaskItem(t *testing.T) {
	item := NewTaskItem("in", 42, false, "bad input")
	if item.Status != TaskItemStatusError {
		t.Errorf("expected error status, got %s", item.Status)
	}
	if item.Remark != "bad input" {
		t.Errorf("expected remark, got %q", item.Remark)
	}
	if item.InputData != "in" || item.TransformedData != 42 {
		t.Error("input and transformed data should be kept")
	}
}

type remarked struct{ text string }

func (r remarked) Remark() string { return r.text }

func TestRemarkOf(t *testing.T) {
	if got := RemarkOf(remarked{text: "note"}); got != "note" {
		t.Errorf("expected note, got %q", got)
	}
	if got := RemarkOf(42); got != "" {
		t.Errorf("expected empty remark, got %q", got)
	}
}

func TestMergeItems(t *testing.T) {
	chunks := []Task[int, int]{
		{Items: []TaskItem[int, int]{{InputData: 1}, {InputData: 2}}},
		{Items: []TaskItem[int, int]{{InputData: 3}}},
		{},
	}

	items := MergeItems(chunks)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, item := range items {
		if item.InputData != i+1 {
			t.Errorf("item %d: expected input %d, got %d", i, i+1, item.InputData)
		}
	}
}

func TestCountByStatus(t *testing.T) {
	chunks := []Task[int, int]{
		{Items: []TaskItem[int, int]{{Status: TaskItemStatusSuccess}, {Status: TaskItemStatusError}}},
		{Items: []TaskItem[int, int]{{Status: TaskItemStatusSuccess}}},
	}

	counts := CountByStatus(chunks)
	if counts[TaskItemStatusSuccess] != 2 {
		t.Errorf("expected 2 success, got %d", counts[TaskItemStatusSuccess])
	}
	if counts[TaskItemStatusError] != 1 {
		t.Errorf("expected 1 error, got %d", counts[TaskItemStatusError])
	}
}
