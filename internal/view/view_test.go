package view

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"smartodo/internal/task"
)

func ms(v int64) *int64 { return &v }

func TestTextFilter(t *testing.T) {
	seq := []task.Task{
		{ID: "1", Title: "Buy milk"},
		{ID: "2", Title: "Call mom"},
	}

	s := NewState()
	s.Query = "milk"

	got := Derive(seq, s)
	if len(got.Items) != 1 || got.Items[0].ID != "1" {
		t.Errorf("query %q matched %v", s.Query, got.Items)
	}
}

func TestTextFilterCaseInsensitiveOverNotes(t *testing.T) {
	seq := []task.Task{
		{ID: "1", Title: "Groceries", Notes: "Buy MILK and eggs"},
		{ID: "2", Title: "Call mom"},
		{ID: "3", Title: "MILKshake run"},
	}

	s := NewState()
	s.Query = "milk"

	got := Derive(seq, s)
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got.Items))
	}
	if got.Items[0].ID != "1" || got.Items[1].ID != "3" {
		t.Errorf("matches = %v, want ids 1 and 3 in canonical order", got.Items)
	}
}

func TestCategoryFilterExactMatch(t *testing.T) {
	seq := []task.Task{
		{ID: "1", Title: "a", Category: "cat-work"},
		{ID: "2", Title: "b", Category: "cat-work-extra"},
		{ID: "3", Title: "c", Category: ""},
	}

	s := NewState()
	s.CategoryFilter = "cat-work"

	got := Derive(seq, s)
	if len(got.Items) != 1 || got.Items[0].ID != "1" {
		t.Errorf("exact category filter matched %v", got.Items)
	}

	s.CategoryFilter = CategoryAll
	if got := Derive(seq, s); len(got.Items) != 3 {
		t.Errorf("All filter dropped tasks: %v", got.Items)
	}
}

func TestSortDueMissingLast(t *testing.T) {
	seq := []task.Task{
		{ID: "none", Title: "a"},
		{ID: "jan2", Title: "b", Due: ms(1704067200000)},
		{ID: "jan1", Title: "c", Due: ms(1703980800000)},
	}

	s := NewState()
	s.Sort = SortDue

	got := Derive(seq, s)
	want := []string{"jan1", "jan2", "none"}
	for i, id := range want {
		if got.Items[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got.Items[i].ID, id)
		}
	}
}

func TestSortPriorityStable(t *testing.T) {
	seq := []task.Task{
		{ID: "low1", Title: "a", Priority: task.PriorityLow},
		{ID: "high1", Title: "b", Priority: task.PriorityHigh},
		{ID: "med1", Title: "c", Priority: task.PriorityMedium},
		{ID: "high2", Title: "d", Priority: task.PriorityHigh},
		{ID: "med2", Title: "e", Priority: task.PriorityMedium},
	}

	s := NewState()
	s.Sort = SortPriority

	got := Derive(seq, s)
	want := []string{"high1", "high2", "med1", "med2", "low1"}
	for i, id := range want {
		if got.Items[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got.Items[i].ID, id)
		}
	}
}

func TestManualSortPreservesCanonicalOrder(t *testing.T) {
	seq := []task.Task{
		{ID: "3", Title: "c", CreatedAt: 3},
		{ID: "1", Title: "a", CreatedAt: 1},
		{ID: "2", Title: "b", CreatedAt: 2},
	}

	got := Derive(seq, NewState())
	for i, id := range []string{"3", "1", "2"} {
		if got.Items[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got.Items[i].ID, id)
		}
	}
}

func TestDeriveDoesNotMutateInput(t *testing.T) {
	seq := []task.Task{
		{ID: "b", Title: "b", Priority: task.PriorityLow},
		{ID: "a", Title: "a", Priority: task.PriorityHigh},
	}
	orig := make([]task.Task, len(seq))
	copy(orig, seq)

	s := NewState()
	s.Sort = SortPriority
	Derive(seq, s)

	if diff := cmp.Diff(orig, seq); diff != "" {
		t.Errorf("Derive mutated input (-want +got):\n%s", diff)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	seq := make([]task.Task, 20)
	for i := range seq {
		seq[i] = task.Task{
			ID:        fmt.Sprintf("t%d", i),
			Title:     fmt.Sprintf("task %d", i),
			Priority:  task.PriorityMedium,
			Completed: i%3 == 0,
		}
	}

	s := NewState()
	s.Sort = SortPriority
	s.Query = "task"

	first := Derive(seq, s)
	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(first, Derive(seq, s)); diff != "" {
			t.Fatalf("derivation not deterministic (-first +later):\n%s", diff)
		}
	}
}

func TestTabPartition(t *testing.T) {
	seq := []task.Task{
		{ID: "1", Title: "a", Completed: false},
		{ID: "2", Title: "b", Completed: true},
		{ID: "3", Title: "c", Completed: false},
	}

	s := NewState()
	got := Derive(seq, s)
	if got.Counts.Incompleted != 2 || got.Counts.Completed != 1 {
		t.Errorf("counts = %+v", got.Counts)
	}
	if len(got.Items) != 2 {
		t.Errorf("incompleted tab has %d items", len(got.Items))
	}

	s.Tab = TabCompleted
	got = Derive(seq, s)
	if len(got.Items) != 1 || got.Items[0].ID != "2" {
		t.Errorf("completed tab = %v", got.Items)
	}
	// Counts are the same regardless of the selected tab.
	if got.Counts.Incompleted != 2 || got.Counts.Completed != 1 {
		t.Errorf("counts on completed tab = %+v", got.Counts)
	}
}

func TestPagination(t *testing.T) {
	seq := make([]task.Task, 12)
	for i := range seq {
		seq[i] = task.Task{ID: fmt.Sprintf("t%d", i), Title: "x"}
	}

	s := NewState()
	s.PageSize = 5

	got := Derive(seq, s)
	if got.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", got.TotalPages)
	}
	if len(got.Items) != 5 || got.Items[0].ID != "t0" {
		t.Errorf("page 1 = %v", got.Items)
	}

	s.SetPage(2)
	got = Derive(seq, s)
	want := []string{"t5", "t6", "t7", "t8", "t9"}
	if len(got.Items) != 5 {
		t.Fatalf("page 2 has %d items", len(got.Items))
	}
	for i, id := range want {
		if got.Items[i].ID != id {
			t.Errorf("page 2 position %d = %s, want %s", i, got.Items[i].ID, id)
		}
	}

	s.SetPage(3)
	got = Derive(seq, s)
	if len(got.Items) != 2 {
		t.Errorf("last page has %d items, want 2", len(got.Items))
	}
}

func TestPaginationLastPageExactlyFull(t *testing.T) {
	seq := make([]task.Task, 10)
	for i := range seq {
		seq[i] = task.Task{ID: fmt.Sprintf("t%d", i), Title: "x"}
	}

	s := NewState()
	s.PageSize = 5
	s.SetPage(2)

	got := Derive(seq, s)
	if got.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", got.TotalPages)
	}
	if len(got.Items) != 5 {
		t.Errorf("last page has %d items, want pageSize", len(got.Items))
	}
}

func TestEmptyFilteredResult(t *testing.T) {
	seq := []task.Task{{ID: "1", Title: "Buy milk"}}

	s := NewState()
	s.Query = "no such task"

	got := Derive(seq, s)
	if got.TotalPages != 0 {
		t.Errorf("TotalPages = %d, want 0", got.TotalPages)
	}
	if len(got.Items) != 0 {
		t.Errorf("Items = %v, want empty", got.Items)
	}
}

func TestPageBeyondTotalNotClamped(t *testing.T) {
	seq := []task.Task{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}

	s := NewState()
	s.SetPage(7)

	got := Derive(seq, s)
	if len(got.Items) != 0 {
		t.Errorf("out-of-range page returned items: %v", got.Items)
	}
	if got.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", got.TotalPages)
	}
}

func TestPerTabPageState(t *testing.T) {
	s := NewState()
	s.SetPage(3)

	s.Tab = TabCompleted
	if s.Page() != 1 {
		t.Errorf("completed tab page = %d, want 1", s.Page())
	}
	s.SetPage(2)

	s.Tab = TabIncompleted
	if s.Page() != 3 {
		t.Errorf("incompleted tab page lost: %d, want 3", s.Page())
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{5, 3, 3},
		{0, 3, 1},
		{2, 3, 2},
		{2, 0, 1},
		{-1, 0, 1},
	}
	for _, tt := range tests {
		if got := ClampPage(tt.page, tt.total); got != tt.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tt.page, tt.total, got, tt.want)
		}
	}
}
